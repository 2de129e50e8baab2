package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cinema/internal/shared/domain"
	"github.com/google/uuid"
)

// Message is a domain event waiting in the outbox table to be published.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      string
	EventType        string
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage creates an outbox message from an envelope and the encoded event.
func NewMessage(envelope domain.Envelope, payload json.RawMessage) (*Message, error) {
	metadata, err := json.Marshal(envelope.Metadata)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       envelope.EventID,
		AggregateType: envelope.AggregateType(),
		AggregateID:   envelope.AggregateID,
		EventType:     envelope.RoutingKey(),
		RoutingKey:    envelope.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     envelope.OccurredAt,
	}, nil
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// IsDead returns true once the message stopped being retried.
func (m *Message) IsDead() bool {
	return m.DeadLetteredAt != nil
}

// Delivery is the body sent to the broker.
type Delivery struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// Body returns the broker body: the event payload wrapped with its identity
// and tracing metadata.
func (m *Message) Body() ([]byte, error) {
	return json.Marshal(Delivery{
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		OccurredAt:    m.CreatedAt.UTC(),
		Metadata:      m.Metadata,
		Data:          m.Payload,
	})
}

// ParseBody decodes a broker body produced by Message.Body.
func ParseBody(body []byte) (Delivery, error) {
	var d Delivery
	if err := json.Unmarshal(body, &d); err != nil {
		return Delivery{}, fmt.Errorf("failed to decode outbox body: %w", err)
	}
	return d, nil
}
