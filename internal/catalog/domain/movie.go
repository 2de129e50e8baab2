package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/cinema/internal/shared/domain"
	"github.com/google/uuid"
)

// Movie is a catalog entry shows are scheduled for. Movies are looked up by
// name, which is unique across the catalog.
type Movie struct {
	sharedDomain.BaseEntity
	name                          string
	durationMinutes               int
	threeDimensionalGlassesNeeded bool
}

// NewMovie creates a movie with a generated id.
func NewMovie(name string, durationMinutes int, glassesNeeded bool) (*Movie, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	return &Movie{
		BaseEntity:                    sharedDomain.NewBaseEntity(),
		name:                          name,
		durationMinutes:               durationMinutes,
		threeDimensionalGlassesNeeded: glassesNeeded,
	}, nil
}

// RehydrateMovie recreates a movie from persisted state.
func RehydrateMovie(id uuid.UUID, name string, durationMinutes int, glassesNeeded bool, createdAt time.Time) *Movie {
	return &Movie{
		BaseEntity:                    sharedDomain.RehydrateBaseEntity(id, createdAt),
		name:                          name,
		durationMinutes:               durationMinutes,
		threeDimensionalGlassesNeeded: glassesNeeded,
	}
}

func (m *Movie) Name() string                        { return m.name }
func (m *Movie) DurationMinutes() int                { return m.durationMinutes }
func (m *Movie) ThreeDimensionalGlassesNeeded() bool { return m.threeDimensionalGlassesNeeded }
