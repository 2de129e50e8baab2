package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

// CancelRoomEventCommand cancels the event starting at StartTime on Date.
type CancelRoomEventCommand struct {
	RoomID    string
	Date      domain.Date
	StartTime domain.Clock
}

// CancelRoomEventResult reports whether an event was cancelled. Cancelling
// nothing is not an error.
type CancelRoomEventResult struct {
	Cancelled bool
	Event     domain.RoomEvent
	Version   int64
}

// CancelRoomEventHandler handles the CancelRoomEventCommand.
type CancelRoomEventHandler struct {
	writer  *ScheduleWriter
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewCancelRoomEventHandler creates a new CancelRoomEventHandler.
func NewCancelRoomEventHandler(writer *ScheduleWriter, metrics observability.Metrics, logger *slog.Logger) *CancelRoomEventHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CancelRoomEventHandler{writer: writer, metrics: metrics, logger: logger}
}

// Handle executes the CancelRoomEventCommand.
func (h *CancelRoomEventHandler) Handle(ctx context.Context, cmd CancelRoomEventCommand) (*CancelRoomEventResult, error) {
	return observability.TimeOperationResult(ctx, h.logger, h.metrics, "schedule.cancel", func() (*CancelRoomEventResult, error) {
		if err := services.ValidateRoomID(cmd.RoomID); err != nil {
			return nil, err
		}

		outcome, err := h.writer.Write(ctx, "cancel_room_event", domain.CancelRoomEvent{
			RoomID:    cmd.RoomID,
			Date:      cmd.Date,
			StartTime: cmd.StartTime,
		})
		if err != nil {
			return nil, err
		}

		result := &CancelRoomEventResult{Version: outcome.Version}
		for _, event := range outcome.Events {
			if cancelled, ok := event.(domain.RoomEventCancelled); ok {
				result.Cancelled = true
				result.Event = cancelled.Event
			}
		}
		return result, nil
	})
}
