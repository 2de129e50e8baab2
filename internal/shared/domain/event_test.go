package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/cinema/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	Data string
}

func (testEvent) AggregateType() string { return "TestAggregate" }
func (testEvent) RoutingKey() string    { return "test.event.created" }

func TestNewEnvelope(t *testing.T) {
	before := time.Now().UTC()

	envelope := domain.NewEnvelope("aggregate-1", testEvent{Data: "x"})

	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, envelope.EventID)
	assert.Equal(t, "aggregate-1", envelope.AggregateID)
	assert.Equal(t, "TestAggregate", envelope.AggregateType())
	assert.Equal(t, "test.event.created", envelope.RoutingKey())
	assert.Equal(t, testEvent{Data: "x"}, envelope.Event)
	assert.False(t, envelope.OccurredAt.Before(before))
	assert.False(t, envelope.OccurredAt.After(after))
}

func TestEnvelope_WithMetadata(t *testing.T) {
	correlationID := uuid.New()
	causationID := uuid.New()

	original := domain.NewEnvelope("aggregate-1", testEvent{})
	withMeta := original.WithMetadata(domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   causationID,
		Actor:         "cli",
	})

	assert.Equal(t, correlationID, withMeta.Metadata.CorrelationID)
	assert.Equal(t, causationID, withMeta.Metadata.CausationID)
	assert.Equal(t, "cli", withMeta.Metadata.Actor)
	assert.Equal(t, uuid.Nil, original.Metadata.CorrelationID, "original envelope is untouched")
	assert.Equal(t, original.EventID, withMeta.EventID)
}

func TestNewEnvelope_UniqueIDs(t *testing.T) {
	first := domain.NewEnvelope("a", testEvent{})
	second := domain.NewEnvelope("a", testEvent{})

	assert.NotEqual(t, first.EventID, second.EventID)
}
