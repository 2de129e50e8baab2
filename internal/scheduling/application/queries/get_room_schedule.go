package queries

import (
	"context"
	"errors"
	"fmt"

	catalogQueries "github.com/felixgeelhaar/cinema/internal/catalog/application/queries"
	catalogDomain "github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/google/uuid"
)

// ErrMovieMissing means a scheduled show refers to a movie the catalog no
// longer knows.
var ErrMovieMissing = errors.New("scheduled movie missing from catalog")

const (
	KindShow           = "show"
	KindUnavailability = "unavailability"
)

// EnrichedRoomEvent is a room event with the data needed to display it.
// Shows carry their movie and cleaning slot; EndTime of a show is when the
// screening ends.
type EnrichedRoomEvent struct {
	Kind         string                   `json:"kind"`
	RoomID       string                   `json:"room_id"`
	Date         domain.Date              `json:"date"`
	StartTime    domain.Clock             `json:"start_time"`
	EndTime      domain.Clock             `json:"end_time"`
	Movie        *catalogQueries.MovieDTO `json:"movie,omitempty"`
	CleaningSlot *domain.ClockRange       `json:"cleaning_slot,omitempty"`
}

// GetRoomScheduleQuery selects the events of a room, optionally on one date.
type GetRoomScheduleQuery struct {
	RoomID string
	Date   *domain.Date
}

// GetRoomScheduleHandler handles the GetRoomScheduleQuery.
type GetRoomScheduleHandler struct {
	loader *services.ScheduleLoader
	movies catalogDomain.Repository
}

// NewGetRoomScheduleHandler creates a new GetRoomScheduleHandler.
func NewGetRoomScheduleHandler(loader *services.ScheduleLoader, movies catalogDomain.Repository) *GetRoomScheduleHandler {
	return &GetRoomScheduleHandler{loader: loader, movies: movies}
}

// Handle returns the active events of the room ordered by date and start time.
func (h *GetRoomScheduleHandler) Handle(ctx context.Context, query GetRoomScheduleQuery) ([]EnrichedRoomEvent, error) {
	schedule, err := h.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	var events []domain.RoomEvent
	if query.Date != nil {
		events = schedule.RoomScheduleOn(query.RoomID, *query.Date)
	} else {
		events = schedule.RoomSchedule(query.RoomID)
	}
	if len(events) == 0 {
		return []EnrichedRoomEvent{}, nil
	}

	movies, err := h.moviesByID(ctx)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedRoomEvent, 0, len(events))
	for _, event := range events {
		e, err := enrich(query.RoomID, event, movies)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}

func (h *GetRoomScheduleHandler) moviesByID(ctx context.Context) (map[uuid.UUID]*catalogDomain.Movie, error) {
	movies, err := h.movies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	byID := make(map[uuid.UUID]*catalogDomain.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID()] = m
	}
	return byID, nil
}

func enrich(roomID string, event domain.RoomEvent, movies map[uuid.UUID]*catalogDomain.Movie) (EnrichedRoomEvent, error) {
	show, ok := event.(domain.Show)
	if !ok {
		return EnrichedRoomEvent{
			Kind:      KindUnavailability,
			RoomID:    roomID,
			Date:      event.Date(),
			StartTime: event.StartTime(),
			EndTime:   event.EndTime(),
		}, nil
	}

	movie, found := movies[show.MovieID()]
	if !found {
		return EnrichedRoomEvent{}, fmt.Errorf("%w: %s", ErrMovieMissing, show.MovieID())
	}
	dto := catalogQueries.ToMovieDTO(movie)
	slot := show.CleaningSlot()
	return EnrichedRoomEvent{
		Kind:         KindShow,
		RoomID:       roomID,
		Date:         show.Date(),
		StartTime:    show.StartTime(),
		EndTime:      show.ShowEnd(),
		Movie:        &dto,
		CleaningSlot: &slot,
	}, nil
}
