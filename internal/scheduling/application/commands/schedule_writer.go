package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/cinema/internal/shared/application"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

// Outcome labels of the schedule command metric.
const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeNoop     = "noop"
	outcomeFailed   = "failed"
)

// WriteOutcome is what a processed command changed.
type WriteOutcome struct {
	Events  []domain.ScheduleEvent
	Version int64
}

// ScheduleWriter runs read history, process, append as one critical section.
// The cleaning rule spans rooms, so every command holds the same lock. Across
// processes the event store's unique version is the guard.
type ScheduleWriter struct {
	mu      sync.Mutex
	uow     sharedApplication.UnitOfWork
	store   domain.EventStore
	outbox  outbox.Repository
	loader  *services.ScheduleLoader
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewScheduleWriter creates a writer. outboxRepo may be nil when events are
// not published.
func NewScheduleWriter(
	uow sharedApplication.UnitOfWork,
	store domain.EventStore,
	outboxRepo outbox.Repository,
	loader *services.ScheduleLoader,
	metrics observability.Metrics,
	logger *slog.Logger,
) *ScheduleWriter {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleWriter{
		uow:     uow,
		store:   store,
		outbox:  outboxRepo,
		loader:  loader,
		metrics: metrics,
		logger:  logger,
	}
}

// Write processes cmd against the current schedule and records the resulting
// events. A rejection is returned as the domain.RoomOccupied or
// domain.CleaningServiceUnavailable error, an unknown command as
// domain.InvalidCommand.
func (w *ScheduleWriter) Write(ctx context.Context, command string, cmd domain.ScheduleCommand) (WriteOutcome, error) {
	ctx = observability.WithRoomID(ctx, roomOf(cmd))
	w.mu.Lock()
	defer w.mu.Unlock()

	var next *domain.CinemaSchedule
	outcome, err := sharedApplication.WithUnitOfWorkResult(ctx, w.uow, func(txCtx context.Context) (WriteOutcome, error) {
		schedule, err := w.loader.Load(txCtx)
		if err != nil {
			return WriteOutcome{}, fmt.Errorf("failed to load schedule: %w", err)
		}

		result := schedule.Process(cmd)
		if rejection := domain.ResultError(result); rejection != nil {
			return WriteOutcome{}, rejection
		}

		events := result.(domain.Success).Events
		if len(events) == 0 {
			return WriteOutcome{Version: schedule.Version()}, nil
		}

		if err := w.store.AddEvents(txCtx, events); err != nil {
			return WriteOutcome{}, err
		}
		if err := w.enqueue(txCtx, events); err != nil {
			return WriteOutcome{}, err
		}

		updated, err := schedule.ApplyAll(events)
		if err != nil {
			return WriteOutcome{}, err
		}
		next = &updated
		return WriteOutcome{Events: events, Version: updated.Version()}, nil
	})

	w.record(ctx, command, outcome, err)
	if err != nil {
		return WriteOutcome{}, err
	}

	if next != nil {
		w.loader.Refresh(ctx, *next)
	}
	return outcome, nil
}

// enqueue writes the events to the outbox within the caller's transaction.
func (w *ScheduleWriter) enqueue(ctx context.Context, events []domain.ScheduleEvent) error {
	if w.outbox == nil {
		return nil
	}

	envelopes := sharedApplication.EnvelopeEvents(domain.AggregateID, events,
		sharedApplication.EventMetadataFromContext(ctx))

	msgs := make([]*outbox.Message, 0, len(envelopes))
	for i, envelope := range envelopes {
		_, payload, err := persistence.EncodeScheduleEvent(events[i])
		if err != nil {
			return err
		}
		msg, err := outbox.NewMessage(envelope, payload)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return w.outbox.SaveBatch(ctx, msgs)
}

func (w *ScheduleWriter) record(ctx context.Context, command string, outcome WriteOutcome, err error) {
	label := outcomeAccepted
	reason := rejectionReason(err)
	switch {
	case reason != "":
		label = outcomeRejected
		w.metrics.Counter(observability.MetricScheduleRejected, 1,
			observability.T("command", command), observability.T("reason", reason))
		w.logger.InfoContext(ctx, "schedule command rejected", "command", command, "reason", err.Error())
	case err != nil:
		label = outcomeFailed
	case len(outcome.Events) == 0:
		label = outcomeNoop
	default:
		w.metrics.Gauge(observability.MetricScheduleVersion, float64(outcome.Version))
		w.logger.InfoContext(ctx, "schedule updated", "command", command, "version", outcome.Version)
	}
	w.metrics.Counter(observability.MetricScheduleCommands, 1,
		observability.T("command", command), observability.T("outcome", label))
}

// rejectionReason names the domain rejection carried by err, or returns ""
// when err is not one.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomOccupied):
		return "room_occupied"
	case errors.Is(err, domain.ErrCleaningServiceUnavailable):
		return "cleaning_service_unavailable"
	default:
		return ""
	}
}

func roomOf(cmd domain.ScheduleCommand) string {
	switch c := cmd.(type) {
	case domain.ScheduleRoomEvent:
		return c.RoomID
	case domain.CancelRoomEvent:
		return c.RoomID
	}
	return ""
}
