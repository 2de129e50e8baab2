package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	AggregateType() string
	RoutingKey() string
}

// EventMetadata contains tracing and context information for events.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
	Actor         string    `json:"actor,omitempty"`
}

// Envelope carries a domain event together with the identity and tracing
// data assigned when the event leaves its aggregate. Events themselves stay
// plain values so that replaying a stream is deterministic.
type Envelope struct {
	EventID     uuid.UUID
	AggregateID string
	OccurredAt  time.Time
	Metadata    EventMetadata
	Event       DomainEvent
}

// NewEnvelope wraps an event emitted by the aggregate instance aggregateID.
func NewEnvelope(aggregateID string, event DomainEvent) Envelope {
	return Envelope{
		EventID:     uuid.New(),
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Event:       event,
	}
}

// WithMetadata returns a copy of the envelope carrying metadata.
func (e Envelope) WithMetadata(metadata EventMetadata) Envelope {
	e.Metadata = metadata
	return e
}

func (e Envelope) AggregateType() string { return e.Event.AggregateType() }
func (e Envelope) RoutingKey() string    { return e.Event.RoutingKey() }
