package application

import (
	"context"

	"github.com/felixgeelhaar/cinema/internal/shared/domain"
	"github.com/felixgeelhaar/cinema/pkg/observability"
	"github.com/google/uuid"
)

// NewEventMetadata creates command-scoped metadata for domain events.
func NewEventMetadata(actor string) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		Actor:         actor,
	}
}

// EnvelopeEvents wraps the events emitted by one command. All envelopes share
// the same metadata so consumers can group them by correlation id.
func EnvelopeEvents[E domain.DomainEvent](aggregateID string, events []E, metadata domain.EventMetadata) []domain.Envelope {
	envelopes := make([]domain.Envelope, 0, len(events))
	for _, event := range events {
		envelopes = append(envelopes, domain.NewEnvelope(aggregateID, event).WithMetadata(metadata))
	}
	return envelopes
}

// EventMetadataFromContext reuses the request's correlation id and actor
// when the context carries them.
func EventMetadataFromContext(ctx context.Context) domain.EventMetadata {
	metadata := NewEventMetadata(observability.ActorFromContext(ctx))
	if id, err := uuid.Parse(observability.CorrelationIDFromContext(ctx)); err == nil {
		metadata.CorrelationID = id
	}
	return metadata
}
