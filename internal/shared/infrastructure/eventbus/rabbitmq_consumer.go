package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultConsumerQueue is the durable queue the worker drains when no queue
// name is configured.
const DefaultConsumerQueue = "cinema.calendar"

// ErrConsumerRunning is returned by Run when the consumer is already running.
var ErrConsumerRunning = errors.New("consumer already running")

// RabbitMQConsumer drains a durable queue bound to the schedule exchange and
// hands every delivery to an InProcessBus, so the subscribers registered
// there see the same messages whether the outbox publishes locally or
// through the broker.
type RabbitMQConsumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	exchange string
	bus      *InProcessBus
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRabbitMQConsumer dials url and declares the exchange and queue.
func NewRabbitMQConsumer(url, queue string, bus *InProcessBus, logger *slog.Logger) (*RabbitMQConsumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if queue == "" {
		queue = DefaultConsumerQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger.Info("RabbitMQ consumer connected", "queue", queue, "exchange", ExchangeName)

	return &RabbitMQConsumer{
		conn:     conn,
		channel:  ch,
		queue:    queue,
		exchange: ExchangeName,
		bus:      bus,
		logger:   logger,
	}, nil
}

// Bind routes messages whose key matches pattern into the queue.
func (c *RabbitMQConsumer) Bind(pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.channel.QueueBind(c.queue, pattern, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", pattern, err)
	}
	c.logger.Debug("bound queue", "queue", c.queue, "pattern", pattern)
	return nil
}

// Run consumes until ctx is done. A delivery the bus fails to handle is
// requeued; everything else is acked.
func (c *RabbitMQConsumer) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrConsumerRunning
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	// one delivery at a time keeps room calendar refreshes ordered
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consuming schedule events", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	start := time.Now()
	if err := c.bus.Publish(ctx, d.RoutingKey, d.Body); err != nil {
		c.logger.ErrorContext(ctx, "delivery failed, requeueing",
			"routing_key", d.RoutingKey,
			"redelivered", d.Redelivered,
			"error", err,
		)
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack delivery", "error", nackErr)
		}
		return
	}
	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack delivery", "error", err)
		return
	}
	c.logger.DebugContext(ctx, "delivery handled",
		"routing_key", d.RoutingKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Close closes the channel and the connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
