package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Handler consumes one message delivered by the in-process bus.
type Handler func(ctx context.Context, routingKey string, payload []byte) error

type subscription struct {
	name    string
	pattern string
	handler Handler
}

// InProcessBus is a Publisher that dispatches synchronously to handlers
// subscribed with AMQP topic patterns (* matches one word, # any number).
// It stands in for RabbitMQ in local mode and in tests.
type InProcessBus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewInProcessBus creates a new in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{logger: logger}
}

// Subscribe registers handler for routing keys matching pattern.
func (b *InProcessBus) Subscribe(name, pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{name: name, pattern: pattern, handler: handler})
}

// Publish delivers the message to every matching handler in subscription
// order. Handler errors are joined and returned so the outbox retries.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if !MatchTopic(sub.pattern, routingKey) {
			continue
		}
		start := time.Now()
		if err := sub.handler(ctx, routingKey, payload); err != nil {
			b.logger.Error("event handler failed",
				"handler", sub.name,
				"routing_key", routingKey,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		b.logger.Debug("event dispatched",
			"handler", sub.name,
			"routing_key", routingKey,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return errors.Join(errs...)
}

func (b *InProcessBus) Close() error {
	return nil
}

// MatchTopic reports whether routingKey matches an AMQP topic pattern.
func MatchTopic(pattern, routingKey string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(routingKey, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
