package domain

const (
	AggregateType = "CinemaSchedule"

	// AggregateID identifies the single schedule aggregate of a cinema.
	AggregateID = "cinema-schedule"

	RoutingKeyRoomEventAdded     = "scheduling.room_event.added"
	RoutingKeyRoomEventCancelled = "scheduling.room_event.cancelled"
)

// ScheduleEvent is an immutable, versioned fact in the schedule's event
// log. It is implemented by RoomEventAdded and RoomEventCancelled only.
type ScheduleEvent interface {
	EventVersion() int64
	AggregateType() string
	RoutingKey() string
	isScheduleEvent()
}

// RoomEventAdded records that a room event became active.
type RoomEventAdded struct {
	Version int64
	RoomID  string
	Event   RoomEvent
}

func (e RoomEventAdded) EventVersion() int64 { return e.Version }
func (RoomEventAdded) AggregateType() string { return AggregateType }
func (RoomEventAdded) RoutingKey() string    { return RoutingKeyRoomEventAdded }
func (RoomEventAdded) isScheduleEvent()      {}

// RoomEventCancelled records that a previously added room event was cancelled.
type RoomEventCancelled struct {
	Version int64
	RoomID  string
	Event   RoomEvent
}

func (e RoomEventCancelled) EventVersion() int64 { return e.Version }
func (RoomEventCancelled) AggregateType() string { return AggregateType }
func (RoomEventCancelled) RoutingKey() string    { return RoutingKeyRoomEventCancelled }
func (RoomEventCancelled) isScheduleEvent()      {}
