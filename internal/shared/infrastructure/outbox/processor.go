package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/cinema/internal/shared/domain"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

const (
	metricPublished = "cinema.outbox.published"
	metricFailed    = "cinema.outbox.failed"
	metricDead      = "cinema.outbox.dead"
	metricLag       = "cinema.outbox.lag_seconds"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the settings used when nothing is configured.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     500 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// BatchResult counts what happened to the messages of one batch.
type BatchResult struct {
	Published    int
	Retrying     int
	DeadLettered int
}

// Total is the number of messages the batch touched.
func (r BatchResult) Total() int {
	return r.Published + r.Retrying + r.DeadLettered
}

type outcome int

const (
	outcomePublished outcome = iota
	outcomeRetrying
	outcomeDead
)

// Processor polls the outbox and publishes schedule events to the broker.
// Messages are published in id order, so events leave in version order
// unless one of them is waiting for a retry.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a processor publishing repo's messages to publisher.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		stopChan:  make(chan struct{}),
	}
}

// SetMetrics replaces the metrics sink. Call before Start.
func (p *Processor) SetMetrics(metrics observability.Metrics) {
	if metrics != nil {
		p.metrics = metrics
	}
}

// Start runs the polling loop until ctx is done or Stop is called. Starting
// a running processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})

	p.wg.Add(1)
	go p.loop(ctx, p.stopChan)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"max_retries", p.config.MaxRetries,
	)
	return nil
}

// Stop waits for the batch in flight and stops polling.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the polling loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) loop(ctx context.Context, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessOnce publishes one batch synchronously. Publish failures are
// recorded on the messages and counted in the result, not returned; the
// error reports a repository failure only.
func (p *Processor) ProcessOnce(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.observeError(err)
		return result, err
	}
	p.observeLag(messages)

	for _, msg := range messages {
		switch p.deliver(ctx, msg) {
		case outcomePublished:
			result.Published++
		case outcomeRetrying:
			result.Retrying++
		case outcomeDead:
			result.DeadLettered++
		}
	}

	if result.Total() > 0 {
		p.logger.DebugContext(ctx, "outbox batch processed",
			"published", result.Published,
			"retrying", result.Retrying,
			"dead_lettered", result.DeadLettered,
		)
	}
	return result, nil
}

// deliver publishes msg and records the outcome on it.
func (p *Processor) deliver(ctx context.Context, msg *Message) outcome {
	err := p.publish(ctx, msg)
	if err == nil {
		if markErr := p.repo.MarkPublished(ctx, msg.ID); markErr != nil {
			// the message goes out again on the next poll
			p.logger.Error("failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", markErr,
			)
			return outcomeRetrying
		}
		p.observe(outcomePublished, msg, nil)
		return outcomePublished
	}

	trace := traceOf(msg)
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"retry_count", msg.RetryCount,
		"correlation_id", trace.CorrelationID,
		"causation_id", trace.CausationID,
		"actor", trace.Actor,
		"error", err,
	)

	if p.exhausted(msg) {
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		p.observe(outcomeDead, msg, err)
		return outcomeDead
	}

	nextRetryAt := time.Now().Add(p.backoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), nextRetryAt); markErr != nil {
		p.logger.Error("failed to schedule message retry", "id", msg.ID, "error", markErr)
	}
	p.observe(outcomeRetrying, msg, err)
	return outcomeRetrying
}

func (p *Processor) publish(ctx context.Context, msg *Message) error {
	body, err := msg.Body()
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, msg.RoutingKey, body)
}

func (p *Processor) exhausted(msg *Message) bool {
	return p.config.MaxRetries <= 0 || msg.RetryCount+1 >= p.config.MaxRetries
}

// backoff doubles from RetryBackoffBase per attempt, capped at RetryBackoffMax.
func (p *Processor) backoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	ceiling := p.config.RetryBackoffMax
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	attempt = max(attempt, 1)

	// beyond 2^20 the ceiling always wins
	shift := convert.IntToUintSafe(min(attempt-1, 20))
	if base > ceiling>>shift {
		return ceiling
	}
	return base << shift
}

type trace struct {
	CorrelationID string
	CausationID   string
	Actor         string
}

func traceOf(msg *Message) trace {
	if len(msg.Metadata) == 0 {
		return trace{}
	}
	var metadata domain.EventMetadata
	if err := json.Unmarshal(msg.Metadata, &metadata); err != nil {
		return trace{}
	}
	return trace{
		CorrelationID: metadata.CorrelationID.String(),
		CausationID:   metadata.CausationID.String(),
		Actor:         metadata.Actor,
	}
}

// Cleanup deletes published messages older than retention.
func (p *Processor) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := p.repo.DeleteOld(ctx, retention)
	if err != nil {
		p.observeError(err)
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("outbox cleanup", "deleted", deleted, "retention", retention)
	}
	return deleted, nil
}

// Stats is a snapshot of the processor counters.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// GetStats returns current processor statistics.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	stats := p.stats
	stats.IsRunning = running
	return stats
}

func (p *Processor) observe(o outcome, msg *Message, err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	tag := observability.T("event_type", msg.EventType)
	switch o {
	case outcomePublished:
		p.stats.PublishedCount++
		p.metrics.Counter(metricPublished, 1, tag)
	case outcomeRetrying:
		p.stats.FailedCount++
		p.metrics.Counter(metricFailed, 1, tag)
	case outcomeDead:
		p.stats.DeadCount++
		p.metrics.Counter(metricDead, 1, tag)
	}
	if err != nil {
		p.setLastError(err)
	}
}

func (p *Processor) observeError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.setLastError(err)
}

// setLastError requires statsMu.
func (p *Processor) setLastError(err error) {
	now := time.Now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) observeLag(messages []*Message) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	now := time.Now()
	p.stats.LastProcessedAt = &now
	p.stats.OldestMessageAt = nil
	p.stats.LagSeconds = 0

	for _, msg := range messages {
		if p.stats.OldestMessageAt == nil || msg.CreatedAt.Before(*p.stats.OldestMessageAt) {
			created := msg.CreatedAt
			p.stats.OldestMessageAt = &created
		}
	}
	if p.stats.OldestMessageAt != nil {
		p.stats.LagSeconds = now.Sub(*p.stats.OldestMessageAt).Seconds()
	}
	p.metrics.Gauge(metricLag, p.stats.LagSeconds)
}
