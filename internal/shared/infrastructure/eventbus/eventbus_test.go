package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/eventbus"
)

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		pattern  string
		key      string
		expected bool
	}{
		{"scheduling.room_event.added", "scheduling.room_event.added", true},
		{"scheduling.room_event.*", "scheduling.room_event.cancelled", true},
		{"scheduling.*", "scheduling.room_event.added", false},
		{"scheduling.#", "scheduling.room_event.added", true},
		{"#", "catalog.movie.added", true},
		{"#.added", "scheduling.room_event.added", true},
		{"scheduling.#.added", "scheduling.added", true},
		{"scheduling.room_event.added", "scheduling.room_event", false},
		{"catalog.#", "scheduling.room_event.added", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, eventbus.MatchTopic(tt.pattern, tt.key))
		})
	}
}

func TestInProcessBus_Publish(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.NewInProcessBus(nil)

	var mu sync.Mutex
	var received []string
	record := func(name string) eventbus.Handler {
		return func(_ context.Context, routingKey string, payload []byte) error {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, name+":"+routingKey+":"+string(payload))
			return nil
		}
	}

	bus.Subscribe("all", "scheduling.#", record("all"))
	bus.Subscribe("added", "scheduling.room_event.added", record("added"))

	require.NoError(t, bus.Publish(ctx, "scheduling.room_event.cancelled", []byte(`1`)))
	require.NoError(t, bus.Publish(ctx, "scheduling.room_event.added", []byte(`2`)))

	assert.Equal(t, []string{
		"all:scheduling.room_event.cancelled:1",
		"all:scheduling.room_event.added:2",
		"added:scheduling.room_event.added:2",
	}, received)
}

func TestInProcessBus_HandlerErrorsAreReturned(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	failure := errors.New("calendar offline")
	called := false

	bus.Subscribe("failing", "#", func(context.Context, string, []byte) error { return failure })
	bus.Subscribe("next", "#", func(context.Context, string, []byte) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), "scheduling.room_event.added", nil)

	assert.ErrorIs(t, err, failure)
	assert.True(t, called, "later handlers still run")
}

type flakyPublisher struct {
	calls int
	err   error
}

func (p *flakyPublisher) Publish(context.Context, string, []byte) error {
	p.calls++
	return p.err
}

func (p *flakyPublisher) Close() error { return nil }

func TestBreakerPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through while healthy", func(t *testing.T) {
		next := &flakyPublisher{}
		publisher := eventbus.NewBreakerPublisher(next, eventbus.DefaultBreakerConfig(), nil)

		require.NoError(t, publisher.Publish(ctx, "scheduling.room_event.added", []byte(`{}`)))
		assert.Equal(t, 1, next.calls)
		assert.Equal(t, "closed", publisher.State())
	})

	t.Run("opens after consecutive failures", func(t *testing.T) {
		next := &flakyPublisher{err: errors.New("connection reset")}
		publisher := eventbus.NewBreakerPublisher(next, eventbus.BreakerConfig{
			FailureThreshold: 2,
			Timeout:          time.Minute,
		}, nil)

		assert.EqualError(t, publisher.Publish(ctx, "k", nil), "connection reset")
		assert.EqualError(t, publisher.Publish(ctx, "k", nil), "connection reset")
		assert.ErrorIs(t, publisher.Publish(ctx, "k", nil), eventbus.ErrBrokerUnavailable)

		assert.Equal(t, 2, next.calls)
		assert.Equal(t, "open", publisher.State())
	})
}

func TestNoopPublisher(t *testing.T) {
	publisher := eventbus.NewNoopPublisher(nil)

	assert.NoError(t, publisher.Publish(context.Background(), "scheduling.room_event.added", []byte(`{}`)))
	assert.NoError(t, publisher.Close())
}
