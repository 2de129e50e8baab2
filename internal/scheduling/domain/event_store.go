package domain

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned when an appended event reuses a version
// that is already stored.
var ErrVersionConflict = errors.New("schedule event version already stored")

// EventStore is the append-only log of schedule events.
type EventStore interface {
	// FindEventsHistory returns every stored event in ascending version order.
	FindEventsHistory(ctx context.Context) ([]ScheduleEvent, error)

	// FindEventsAfter returns events with a version greater than version.
	FindEventsAfter(ctx context.Context, version int64) ([]ScheduleEvent, error)

	// AddEvents appends events in the given order.
	AddEvents(ctx context.Context, events []ScheduleEvent) error
}
