package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	scheduleCommands "github.com/felixgeelhaar/cinema/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/caldav"
	"github.com/felixgeelhaar/mcp-go"
)

type scheduleShowInput struct {
	RoomID   string `json:"room_id" jsonschema:"required"`
	Movie    string `json:"movie" jsonschema:"required"`
	Date     string `json:"date,omitempty"`
	Start    string `json:"start" jsonschema:"required"`
	Premiere bool   `json:"premiere,omitempty"`
}

type scheduleBlockInput struct {
	RoomID string `json:"room_id" jsonschema:"required"`
	Date   string `json:"date,omitempty"`
	Start  string `json:"start" jsonschema:"required"`
	End    string `json:"end" jsonschema:"required"`
}

type scheduleCancelInput struct {
	RoomID string `json:"room_id" jsonschema:"required"`
	Date   string `json:"date,omitempty"`
	Start  string `json:"start" jsonschema:"required"`
}

type scheduleRoomInput struct {
	RoomID string `json:"room_id" jsonschema:"required"`
	Date   string `json:"date,omitempty"`
}

type scheduleExportInput struct {
	RoomID string `json:"room_id,omitempty"`
}

type bookingOutput struct {
	RoomID       string             `json:"room_id"`
	Date         domain.Date        `json:"date"`
	StartTime    domain.Clock       `json:"start_time"`
	EndTime      domain.Clock       `json:"end_time"`
	Movie        string             `json:"movie,omitempty"`
	CleaningSlot *domain.ClockRange `json:"cleaning_slot,omitempty"`
	Version      int64              `json:"version"`
}

type cancelOutput struct {
	Cancelled bool   `json:"cancelled"`
	Event     string `json:"event,omitempty"`
	Version   int64  `json:"version,omitempty"`
}

func registerScheduleTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("schedule.show").
		Description("Schedule a show of a catalog movie in a room. A cleaning slot follows every show.").
		Handler(func(ctx context.Context, input scheduleShowInput) (*bookingOutput, error) {
			return scheduleShow(ctx, app, input)
		})

	srv.Tool("schedule.block").
		Description("Make a room unavailable for a period").
		Handler(func(ctx context.Context, input scheduleBlockInput) (*bookingOutput, error) {
			return scheduleBlock(ctx, app, input)
		})

	srv.Tool("schedule.cancel").
		Description("Cancel the show or block starting at the given time").
		Handler(func(ctx context.Context, input scheduleCancelInput) (*cancelOutput, error) {
			return scheduleCancel(ctx, app, input)
		})

	srv.Tool("schedule.room").
		Description("Get the active events of a room, optionally on one date").
		Handler(func(ctx context.Context, input scheduleRoomInput) ([]scheduleQueries.EnrichedRoomEvent, error) {
			return roomSchedule(ctx, app, input)
		})

	srv.Tool("schedule.rooms").
		Description("List the rooms holding active events").
		Handler(func(ctx context.Context, input struct{}) ([]scheduleQueries.RoomSummaryDTO, error) {
			if app == nil || app.ListRoomsHandler == nil {
				return nil, errors.New("schedule requires database connection")
			}
			return app.ListRoomsHandler.Handle(ctx, scheduleQueries.ListRoomsQuery{})
		})

	srv.Tool("schedule.export").
		Description("Publish room schedules to the CalDAV calendar").
		Handler(func(ctx context.Context, input scheduleExportInput) (map[string]caldav.PublishResult, error) {
			return exportRooms(ctx, app, input)
		})

	return nil
}

func scheduleShow(ctx context.Context, app *cli.App, input scheduleShowInput) (*bookingOutput, error) {
	if app == nil || app.ScheduleShowHandler == nil {
		return nil, errors.New("schedule requires database connection")
	}
	date, err := parseDate(input.Date, time.Now())
	if err != nil {
		return nil, err
	}
	start, err := parseClock(input.Start)
	if err != nil {
		return nil, err
	}

	result, err := app.ScheduleShowHandler.Handle(ctx, scheduleCommands.ScheduleShowCommand{
		RoomID:     input.RoomID,
		MovieName:  input.Movie,
		Date:       date,
		StartTime:  start,
		IsPremiere: input.Premiere,
	})
	if err != nil {
		return nil, err
	}

	slot := result.Show.CleaningSlot()
	return &bookingOutput{
		RoomID:       result.RoomID,
		Date:         result.Date,
		StartTime:    result.StartTime,
		EndTime:      result.Show.ShowEnd(),
		Movie:        result.Movie.Name(),
		CleaningSlot: &slot,
		Version:      result.Version,
	}, nil
}

func scheduleBlock(ctx context.Context, app *cli.App, input scheduleBlockInput) (*bookingOutput, error) {
	if app == nil || app.ScheduleUnavailabilityHandler == nil {
		return nil, errors.New("schedule requires database connection")
	}
	date, err := parseDate(input.Date, time.Now())
	if err != nil {
		return nil, err
	}
	start, err := parseClock(input.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(input.End)
	if err != nil {
		return nil, err
	}

	result, err := app.ScheduleUnavailabilityHandler.Handle(ctx, scheduleCommands.ScheduleUnavailabilityCommand{
		RoomID:    input.RoomID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return nil, err
	}

	return &bookingOutput{
		RoomID:    result.RoomID,
		Date:      result.Unavailability.Date(),
		StartTime: result.Unavailability.StartTime(),
		EndTime:   result.Unavailability.EndTime(),
		Version:   result.Version,
	}, nil
}

func scheduleCancel(ctx context.Context, app *cli.App, input scheduleCancelInput) (*cancelOutput, error) {
	if app == nil || app.CancelRoomEventHandler == nil {
		return nil, errors.New("schedule requires database connection")
	}
	date, err := parseDate(input.Date, time.Now())
	if err != nil {
		return nil, err
	}
	start, err := parseClock(input.Start)
	if err != nil {
		return nil, err
	}

	result, err := app.CancelRoomEventHandler.Handle(ctx, scheduleCommands.CancelRoomEventCommand{
		RoomID:    input.RoomID,
		Date:      date,
		StartTime: start,
	})
	if err != nil {
		return nil, err
	}
	if !result.Cancelled {
		return &cancelOutput{}, nil
	}
	return &cancelOutput{
		Cancelled: true,
		Event:     fmt.Sprint(result.Event),
		Version:   result.Version,
	}, nil
}

func roomSchedule(ctx context.Context, app *cli.App, input scheduleRoomInput) ([]scheduleQueries.EnrichedRoomEvent, error) {
	if app == nil || app.GetRoomScheduleHandler == nil {
		return nil, errors.New("schedule requires database connection")
	}
	date, err := parseOptionalDate(input.Date)
	if err != nil {
		return nil, err
	}
	return app.GetRoomScheduleHandler.Handle(ctx, scheduleQueries.GetRoomScheduleQuery{
		RoomID: input.RoomID,
		Date:   date,
	})
}

func exportRooms(ctx context.Context, app *cli.App, input scheduleExportInput) (map[string]caldav.PublishResult, error) {
	if app == nil || app.GetRoomScheduleHandler == nil || app.ListRoomsHandler == nil {
		return nil, errors.New("schedule requires database connection")
	}
	if app.CalendarPublisher == nil {
		return nil, errors.New("calendar export requires CALDAV_URL")
	}

	rooms := []string{input.RoomID}
	if input.RoomID == "" {
		summaries, err := app.ListRoomsHandler.Handle(ctx, scheduleQueries.ListRoomsQuery{})
		if err != nil {
			return nil, err
		}
		rooms = rooms[:0]
		for _, s := range summaries {
			rooms = append(rooms, s.RoomID)
		}
	}

	results := make(map[string]caldav.PublishResult, len(rooms))
	for _, room := range rooms {
		events, err := app.GetRoomScheduleHandler.Handle(ctx, scheduleQueries.GetRoomScheduleQuery{RoomID: room})
		if err != nil {
			return nil, err
		}
		result, err := app.CalendarPublisher.PublishRoom(ctx, room, events)
		if err != nil {
			return nil, fmt.Errorf("room %s: %w", room, err)
		}
		results[room] = result
	}
	return results, nil
}
