package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

// ScheduleUnavailabilityCommand blocks a room, for maintenance for instance.
type ScheduleUnavailabilityCommand struct {
	RoomID    string
	Date      domain.Date
	StartTime domain.Clock
	EndTime   domain.Clock
}

// ScheduleUnavailabilityResult contains the result of blocking a room.
type ScheduleUnavailabilityResult struct {
	RoomID         string
	Unavailability domain.Unavailability
	Version        int64
}

// ScheduleUnavailabilityHandler handles the ScheduleUnavailabilityCommand.
type ScheduleUnavailabilityHandler struct {
	writer  *ScheduleWriter
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewScheduleUnavailabilityHandler creates a new ScheduleUnavailabilityHandler.
func NewScheduleUnavailabilityHandler(writer *ScheduleWriter, metrics observability.Metrics, logger *slog.Logger) *ScheduleUnavailabilityHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleUnavailabilityHandler{writer: writer, metrics: metrics, logger: logger}
}

// Handle executes the ScheduleUnavailabilityCommand.
func (h *ScheduleUnavailabilityHandler) Handle(ctx context.Context, cmd ScheduleUnavailabilityCommand) (*ScheduleUnavailabilityResult, error) {
	return observability.TimeOperationResult(ctx, h.logger, h.metrics, "schedule.block", func() (*ScheduleUnavailabilityResult, error) {
		if err := services.ValidateRoomID(cmd.RoomID); err != nil {
			return nil, err
		}
		if err := services.ValidateUnavailability(cmd.StartTime, cmd.EndTime); err != nil {
			return nil, err
		}

		block := domain.NewUnavailability(cmd.Date, cmd.StartTime, cmd.EndTime)
		outcome, err := h.writer.Write(ctx, "schedule_unavailability", domain.ScheduleRoomEvent{RoomID: cmd.RoomID, Event: block})
		if err != nil {
			return nil, err
		}
		return &ScheduleUnavailabilityResult{RoomID: cmd.RoomID, Unavailability: block, Version: outcome.Version}, nil
	})
}
