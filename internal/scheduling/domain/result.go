package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRoomOccupied               = errors.New("room is occupied at the requested time")
	ErrCleaningServiceUnavailable = errors.New("cleaning service is unavailable after the show")
	ErrUnknownScheduleCommand     = errors.New("unknown schedule command")
)

// ScheduleResult is the outcome of processing a command. It is implemented
// by Success, RoomOccupied, CleaningServiceUnavailable and InvalidCommand
// only.
type ScheduleResult interface {
	isScheduleResult()
}

// Success carries the events to append. It may be empty.
type Success struct {
	Events []ScheduleEvent
}

// RoomOccupied rejects a booking that overlaps an active event of the room.
type RoomOccupied struct {
	ConflictingEvent RoomEvent
}

func (e RoomOccupied) Error() string {
	return fmt.Sprintf("%s: conflicts with %v", ErrRoomOccupied, e.ConflictingEvent)
}

func (e RoomOccupied) Is(target error) bool { return target == ErrRoomOccupied }

// CleaningServiceUnavailable rejects a show whose cleaning slot collides
// with the cleaning slot of a show in OccupyingRoomID.
type CleaningServiceUnavailable struct {
	OccupyingRoomID     string
	CleaningSlotEndTime Clock
}

func (e CleaningServiceUnavailable) Error() string {
	return fmt.Sprintf("%s: busy in room %s until %s", ErrCleaningServiceUnavailable, e.OccupyingRoomID, e.CleaningSlotEndTime)
}

func (e CleaningServiceUnavailable) Is(target error) bool {
	return target == ErrCleaningServiceUnavailable
}

// InvalidCommand is returned for a nil or unrecognised command. It is a
// caller bug, not a scheduling conflict.
type InvalidCommand struct {
	Command ScheduleCommand
}

func (e InvalidCommand) Error() string {
	return fmt.Sprintf("%s: %T", ErrUnknownScheduleCommand, e.Command)
}

func (e InvalidCommand) Is(target error) bool { return target == ErrUnknownScheduleCommand }

func (Success) isScheduleResult()                    {}
func (RoomOccupied) isScheduleResult()               {}
func (CleaningServiceUnavailable) isScheduleResult() {}
func (InvalidCommand) isScheduleResult()             {}

// ResultError returns nil for a Success and the rejection otherwise.
func ResultError(result ScheduleResult) error {
	switch r := result.(type) {
	case RoomOccupied:
		return r
	case CleaningServiceUnavailable:
		return r
	case InvalidCommand:
		return r
	default:
		return nil
	}
}
