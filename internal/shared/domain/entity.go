package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity gives an entity its identity and creation time. Creation times
// are kept at millisecond precision, the precision the stores persist.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
}

// NewBaseEntity creates a new entity with a generated ID.
func NewBaseEntity() BaseEntity {
	return NewBaseEntityWithID(uuid.New())
}

// NewBaseEntityWithID creates a new entity with a specific ID.
func NewBaseEntityWithID(id uuid.UUID) BaseEntity {
	return RehydrateBaseEntity(id, time.Now())
}

// RehydrateBaseEntity recreates an entity from persisted state.
func RehydrateBaseEntity(id uuid.UUID, createdAt time.Time) BaseEntity {
	return BaseEntity{
		id:        id,
		createdAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
