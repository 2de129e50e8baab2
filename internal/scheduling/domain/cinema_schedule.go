package domain

import (
	"errors"
	"fmt"
	"sort"

	sharedDomain "github.com/felixgeelhaar/cinema/internal/shared/domain"
)

var (
	ErrVersionOutOfOrder    = errors.New("event version does not follow the schedule version")
	ErrRoomEventNotFound    = errors.New("cancelled room event is not active")
	ErrUnknownScheduleEvent = errors.New("unknown schedule event")
)

// CinemaSchedule is the event-sourced occupancy of every room of a cinema.
// A value is an immutable snapshot: Apply returns a new schedule and Process
// never changes the receiver. The zero value is not usable, start from
// EmptyCinemaSchedule.
//
// The schedule does no locking. Callers that read history, process a
// command and append the result must serialize those steps themselves.
type CinemaSchedule struct {
	version int64
	rooms   map[string][]RoomEvent
}

// EmptyCinemaSchedule returns the schedule before any event.
func EmptyCinemaSchedule() CinemaSchedule {
	return CinemaSchedule{rooms: make(map[string][]RoomEvent)}
}

// RehydrateCinemaSchedule recreates a schedule from a stored snapshot.
func RehydrateCinemaSchedule(version int64, rooms map[string][]RoomEvent) CinemaSchedule {
	copied := make(map[string][]RoomEvent, len(rooms))
	for roomID, events := range rooms {
		if len(events) == 0 {
			continue
		}
		copied[roomID] = append([]RoomEvent(nil), events...)
	}
	return CinemaSchedule{version: version, rooms: copied}
}

// ReplayCinemaSchedule folds events, sorted by version, into an empty schedule.
func ReplayCinemaSchedule(events []ScheduleEvent) (CinemaSchedule, error) {
	return EmptyCinemaSchedule().ApplyAll(events)
}

// Version is the version of the last applied event, 0 when empty.
func (s CinemaSchedule) Version() int64 {
	return s.version
}

// RoomIDs returns the rooms holding at least one active event, sorted.
func (s CinemaSchedule) RoomIDs() []string {
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rooms returns a copy of the active events per room, in insertion order.
func (s CinemaSchedule) Rooms() map[string][]RoomEvent {
	rooms := make(map[string][]RoomEvent, len(s.rooms))
	for roomID, events := range s.rooms {
		rooms[roomID] = append([]RoomEvent(nil), events...)
	}
	return rooms
}

// ApplyAll folds events, sorted by version, into the schedule.
func (s CinemaSchedule) ApplyAll(events []ScheduleEvent) (CinemaSchedule, error) {
	return sharedDomain.Replay(s, events, CinemaSchedule.Apply)
}

// Apply returns the schedule with event applied. The returned errors signal
// a history that contradicts itself, not a rejected booking.
func (s CinemaSchedule) Apply(event ScheduleEvent) (CinemaSchedule, error) {
	if event == nil {
		return s, ErrUnknownScheduleEvent
	}
	if event.EventVersion() <= s.version {
		return s, fmt.Errorf("%w: event version %d, schedule version %d",
			ErrVersionOutOfOrder, event.EventVersion(), s.version)
	}

	switch e := event.(type) {
	case RoomEventAdded:
		current := s.rooms[e.RoomID]
		events := make([]RoomEvent, 0, len(current)+1)
		events = append(events, current...)
		events = append(events, e.Event)
		return s.withRoom(e.Version, e.RoomID, events), nil

	case RoomEventCancelled:
		current := s.rooms[e.RoomID]
		idx := indexOfRoomEvent(current, e.Event)
		if idx < 0 {
			return s, fmt.Errorf("%w: room %s, %v", ErrRoomEventNotFound, e.RoomID, e.Event)
		}
		events := make([]RoomEvent, 0, len(current)-1)
		events = append(events, current[:idx]...)
		events = append(events, current[idx+1:]...)
		return s.withRoom(e.Version, e.RoomID, events), nil

	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownScheduleEvent, event)
	}
}

// Process validates cmd against the current occupancy and returns the events
// that would record it, or the reason it is rejected. A nil or foreign
// command yields InvalidCommand.
func (s CinemaSchedule) Process(cmd ScheduleCommand) ScheduleResult {
	switch c := cmd.(type) {
	case ScheduleRoomEvent:
		return s.scheduleRoomEvent(c)
	case CancelRoomEvent:
		return s.cancelRoomEvent(c)
	default:
		return InvalidCommand{Command: cmd}
	}
}

// RoomSchedule returns the active events of a room ordered by date and start time.
func (s CinemaSchedule) RoomSchedule(roomID string) []RoomEvent {
	return sortedRoomEvents(s.rooms[roomID], func(RoomEvent) bool { return true })
}

// RoomScheduleOn returns the active events of a room on date, ordered by start time.
func (s CinemaSchedule) RoomScheduleOn(roomID string, date Date) []RoomEvent {
	return sortedRoomEvents(s.rooms[roomID], func(e RoomEvent) bool { return e.Date() == date })
}

func (s CinemaSchedule) scheduleRoomEvent(cmd ScheduleRoomEvent) ScheduleResult {
	if show, ok := cmd.Event.(Show); ok {
		if roomID, conflicting, found := s.findCleaningConflict(show); found {
			return CleaningServiceUnavailable{
				OccupyingRoomID:     roomID,
				CleaningSlotEndTime: conflicting.CleaningSlotEnd(),
			}
		}
	}

	if occupant, found := s.findOccupant(cmd.RoomID, cmd.Event); found {
		return RoomOccupied{ConflictingEvent: occupant}
	}

	return Success{Events: []ScheduleEvent{
		RoomEventAdded{Version: s.version + 1, RoomID: cmd.RoomID, Event: cmd.Event},
	}}
}

func (s CinemaSchedule) cancelRoomEvent(cmd CancelRoomEvent) ScheduleResult {
	for _, event := range s.rooms[cmd.RoomID] {
		if event.Date() == cmd.Date && event.StartTime() == cmd.StartTime {
			return Success{Events: []ScheduleEvent{
				RoomEventCancelled{Version: s.version + 1, RoomID: cmd.RoomID, Event: event},
			}}
		}
	}
	return Success{}
}

// findOccupant returns the first active event of the room overlapping event.
func (s CinemaSchedule) findOccupant(roomID string, event RoomEvent) (RoomEvent, bool) {
	for _, active := range s.rooms[roomID] {
		if occupiesSameSlot(active, event) {
			return active, true
		}
	}
	return nil, false
}

// findCleaningConflict scans the shows of every room, including the target
// room, for a cleaning slot colliding with the one of show. Rooms are
// visited in ascending id order.
func (s CinemaSchedule) findCleaningConflict(show Show) (string, Show, bool) {
	slot := show.CleaningSlot()
	for _, roomID := range s.RoomIDs() {
		for _, active := range s.rooms[roomID] {
			other, ok := active.(Show)
			if !ok || other.Date() != show.Date() {
				continue
			}
			if other.CleaningSlot().Overlaps(slot) {
				return roomID, other, true
			}
		}
	}
	return "", Show{}, false
}

// withRoom returns a copy of s holding events for roomID at version.
// Room lists are never modified in place, so the other rooms can be shared.
func (s CinemaSchedule) withRoom(version int64, roomID string, events []RoomEvent) CinemaSchedule {
	rooms := make(map[string][]RoomEvent, len(s.rooms)+1)
	for id, existing := range s.rooms {
		rooms[id] = existing
	}
	if len(events) == 0 {
		delete(rooms, roomID)
	} else {
		rooms[roomID] = events
	}
	return CinemaSchedule{version: version, rooms: rooms}
}

func indexOfRoomEvent(events []RoomEvent, target RoomEvent) int {
	for i, event := range events {
		if event == target {
			return i
		}
	}
	return -1
}

func sortedRoomEvents(events []RoomEvent, keep func(RoomEvent) bool) []RoomEvent {
	result := make([]RoomEvent, 0, len(events))
	for _, event := range events {
		if keep(event) {
			result = append(result, event)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return compareRoomEvents(result[i], result[j]) < 0
	})
	return result
}
