package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLEventStore implements domain.EventStore on the schedule_events table.
// The version column is the primary key, so a concurrent writer appending
// the same version fails with domain.ErrVersionConflict.
type SQLEventStore struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLEventStore creates a new SQL event store.
func NewSQLEventStore(conn database.Connection) *SQLEventStore {
	return &SQLEventStore{conn: conn, now: time.Now}
}

func (s *SQLEventStore) executor(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, s.conn)
}

// FindEventsHistory returns every event in ascending version order.
func (s *SQLEventStore) FindEventsHistory(ctx context.Context) ([]domain.ScheduleEvent, error) {
	return s.FindEventsAfter(ctx, 0)
}

// FindEventsAfter returns the events with a version greater than version.
func (s *SQLEventStore) FindEventsAfter(ctx context.Context, version int64) ([]domain.ScheduleEvent, error) {
	rows, err := s.executor(ctx).Query(ctx, `
		SELECT event_type, payload
		FROM schedule_events
		WHERE version > ?
		ORDER BY version`, version)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule events: %w", err)
	}
	defer rows.Close()

	var events []domain.ScheduleEvent
	for rows.Next() {
		var eventType, payload string
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, err
		}
		event, err := DecodeScheduleEvent(eventType, []byte(payload))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// AddEvents appends events in order. Callers wanting all-or-nothing
// semantics run it inside a unit of work.
func (s *SQLEventStore) AddEvents(ctx context.Context, events []domain.ScheduleEvent) error {
	exec := s.executor(ctx)
	recordedAt := s.now().UTC().UnixMilli()

	for _, event := range events {
		eventType, payload, err := EncodeScheduleEvent(event)
		if err != nil {
			return err
		}

		_, err = exec.Exec(ctx, `
			INSERT INTO schedule_events (version, event_id, event_type, room_id, payload, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			event.EventVersion(),
			uuid.NewString(),
			eventType,
			roomIDOf(event),
			string(payload),
			recordedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: version %d", domain.ErrVersionConflict, event.EventVersion())
			}
			return fmt.Errorf("failed to append schedule event %d: %w", event.EventVersion(), err)
		}
	}
	return nil
}

func roomIDOf(event domain.ScheduleEvent) string {
	switch e := event.(type) {
	case domain.RoomEventAdded:
		return e.RoomID
	case domain.RoomEventCancelled:
		return e.RoomID
	default:
		return ""
	}
}
