package queries

import (
	"context"

	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
)

// RoomSummaryDTO describes a room with active events.
type RoomSummaryDTO struct {
	RoomID      string `json:"room_id"`
	ActiveCount int    `json:"active_events"`
}

// ListRoomsQuery lists the rooms holding at least one active event.
type ListRoomsQuery struct{}

// ListRoomsHandler handles the ListRoomsQuery.
type ListRoomsHandler struct {
	loader *services.ScheduleLoader
}

// NewListRoomsHandler creates a new ListRoomsHandler.
func NewListRoomsHandler(loader *services.ScheduleLoader) *ListRoomsHandler {
	return &ListRoomsHandler{loader: loader}
}

// Handle returns the rooms sorted by id.
func (h *ListRoomsHandler) Handle(ctx context.Context, _ ListRoomsQuery) ([]RoomSummaryDTO, error) {
	schedule, err := h.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	rooms := schedule.Rooms()
	summaries := make([]RoomSummaryDTO, 0, len(rooms))
	for _, id := range schedule.RoomIDs() {
		summaries = append(summaries, RoomSummaryDTO{RoomID: id, ActiveCount: len(rooms[id])})
	}
	return summaries, nil
}
