package domain

// ScheduleCommand is a request to change room occupancy. It is implemented
// by ScheduleRoomEvent and CancelRoomEvent only.
type ScheduleCommand interface {
	isScheduleCommand()
}

// ScheduleRoomEvent asks for event to be booked in a room.
type ScheduleRoomEvent struct {
	RoomID string
	Event  RoomEvent
}

// CancelRoomEvent targets the active event starting at StartTime on Date.
type CancelRoomEvent struct {
	RoomID    string
	Date      Date
	StartTime Clock
}

func (ScheduleRoomEvent) isScheduleCommand() {}
func (CancelRoomEvent) isScheduleCommand()   {}
