package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// RoomEvent is anything that occupies a room on a given date. It is
// implemented by Show and Unavailability only.
type RoomEvent interface {
	Date() Date
	StartTime() Clock
	// EndTime is the end of the room occupation, including any cleaning slot.
	EndTime() Clock
	isRoomEvent()
}

// Show is a screening followed by a mandatory cleaning slot.
type Show struct {
	movieID                     uuid.UUID
	date                        Date
	startTime                   Clock
	durationMinutes             int
	cleaningSlotDurationMinutes int
}

// NewShow creates a Show. Durations are taken as given.
func NewShow(movieID uuid.UUID, date Date, startTime Clock, durationMinutes, cleaningSlotDurationMinutes int) Show {
	return Show{
		movieID:                     movieID,
		date:                        date,
		startTime:                   startTime,
		durationMinutes:             durationMinutes,
		cleaningSlotDurationMinutes: cleaningSlotDurationMinutes,
	}
}

func (s Show) MovieID() uuid.UUID               { return s.movieID }
func (s Show) Date() Date                       { return s.date }
func (s Show) StartTime() Clock                 { return s.startTime }
func (s Show) DurationMinutes() int             { return s.durationMinutes }
func (s Show) CleaningSlotDurationMinutes() int { return s.cleaningSlotDurationMinutes }

// ShowEnd is when the screening itself ends.
func (s Show) ShowEnd() Clock {
	return s.startTime.Add(s.durationMinutes)
}

func (s Show) CleaningSlotStart() Clock { return s.ShowEnd() }

func (s Show) CleaningSlotEnd() Clock {
	return s.CleaningSlotStart().Add(s.cleaningSlotDurationMinutes)
}

// CleaningSlot is the interval reserved for the shared cleaning crew.
func (s Show) CleaningSlot() ClockRange {
	return ClockRange{Start: s.CleaningSlotStart(), End: s.CleaningSlotEnd()}
}

// EndTime includes the cleaning slot: the room stays occupied until it is clean.
func (s Show) EndTime() Clock { return s.CleaningSlotEnd() }

func (s Show) String() string {
	return fmt.Sprintf("show %s %s %s-%s (cleaning until %s)",
		s.movieID, s.date, s.startTime, s.ShowEnd(), s.CleaningSlotEnd())
}

func (Show) isRoomEvent() {}

// Unavailability blocks a room, for maintenance for instance. It has no
// cleaning slot.
type Unavailability struct {
	date      Date
	startTime Clock
	endTime   Clock
}

// NewUnavailability creates an Unavailability block.
func NewUnavailability(date Date, startTime, endTime Clock) Unavailability {
	return Unavailability{date: date, startTime: startTime, endTime: endTime}
}

func (u Unavailability) Date() Date       { return u.date }
func (u Unavailability) StartTime() Clock { return u.startTime }
func (u Unavailability) EndTime() Clock   { return u.endTime }

func (u Unavailability) String() string {
	return fmt.Sprintf("unavailability %s %s-%s", u.date, u.startTime, u.endTime)
}

func (Unavailability) isRoomEvent() {}

// Occupancy returns the interval during which e holds its room.
func Occupancy(e RoomEvent) ClockRange {
	return ClockRange{Start: e.StartTime(), End: e.EndTime()}
}

// occupiesSameSlot reports whether two events on the same date overlap.
func occupiesSameSlot(a, b RoomEvent) bool {
	return a.Date() == b.Date() && Occupancy(a).Overlaps(Occupancy(b))
}

// compareRoomEvents orders events by date, then start time.
func compareRoomEvents(a, b RoomEvent) int {
	if c := a.Date().Compare(b.Date()); c != 0 {
		return c
	}
	return compareInts(int(a.StartTime()), int(b.StartTime()))
}
