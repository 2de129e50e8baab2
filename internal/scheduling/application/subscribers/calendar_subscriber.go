package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/caldav"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
)

// RoomEventPattern matches every room event routing key.
const RoomEventPattern = "scheduling.room_event.#"

// RoomCalendar receives the full schedule of one room.
type RoomCalendar interface {
	PublishRoom(ctx context.Context, roomID string, events []queries.EnrichedRoomEvent) (caldav.PublishResult, error)
}

// CalendarSubscriber republishes a room's schedule to the calendar whenever
// one of its events is added or cancelled.
type CalendarSubscriber struct {
	schedule *queries.GetRoomScheduleHandler
	calendar RoomCalendar
	logger   *slog.Logger
	enabled  bool
}

// NewCalendarSubscriber creates a new calendar subscriber.
func NewCalendarSubscriber(schedule *queries.GetRoomScheduleHandler, calendar RoomCalendar, logger *slog.Logger) *CalendarSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarSubscriber{
		schedule: schedule,
		calendar: calendar,
		logger:   logger,
		enabled:  true,
	}
}

// SetEnabled enables or disables the subscriber.
func (s *CalendarSubscriber) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Handle processes one broker body. It matches eventbus.Handler.
func (s *CalendarSubscriber) Handle(ctx context.Context, routingKey string, body []byte) error {
	if !s.enabled {
		s.logger.DebugContext(ctx, "calendar subscriber disabled, skipping event", "routing_key", routingKey)
		return nil
	}

	delivery, err := outbox.ParseBody(body)
	if err != nil {
		// Redelivery will not fix a body we cannot read.
		s.logger.ErrorContext(ctx, "dropping unreadable event", "routing_key", routingKey, "error", err)
		return nil
	}

	event, err := persistence.DecodeScheduleEvent(delivery.EventType, delivery.Data)
	if err != nil {
		s.logger.ErrorContext(ctx, "dropping undecodable event",
			"routing_key", routingKey,
			"event_id", delivery.EventID,
			"error", err,
		)
		return nil
	}

	return s.PublishRoom(ctx, roomOf(event))
}

// PublishRoom pushes the current schedule of roomID to the calendar.
func (s *CalendarSubscriber) PublishRoom(ctx context.Context, roomID string) error {
	events, err := s.schedule.Handle(ctx, queries.GetRoomScheduleQuery{RoomID: roomID})
	if err != nil {
		return fmt.Errorf("failed to load room %s: %w", roomID, err)
	}

	result, err := s.calendar.PublishRoom(ctx, roomID, events)
	if err != nil {
		return fmt.Errorf("failed to publish room %s: %w", roomID, err)
	}

	s.logger.DebugContext(ctx, "room calendar refreshed",
		"room_id", roomID,
		"events", len(events),
		"failed", result.Failed,
	)
	return nil
}

func roomOf(event domain.ScheduleEvent) string {
	switch e := event.(type) {
	case domain.RoomEventAdded:
		return e.RoomID
	case domain.RoomEventCancelled:
		return e.RoomID
	}
	return ""
}
