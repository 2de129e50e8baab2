package mcp

import (
	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.AddMovieHandler,
		container.ListMoviesHandler,
		container.ScheduleShowHandler,
		container.ScheduleUnavailabilityHandler,
		container.CancelRoomEventHandler,
		container.GetRoomScheduleHandler,
		container.ListRoomsHandler,
	)

	if container.CalendarPublisher != nil {
		cliApp.SetCalendarPublisher(container.CalendarPublisher)
	}
	if container.OutboxProcessor != nil {
		cliApp.SetOutbox(container.OutboxProcessor, container.OutboxRepo)
	}

	return cliApp
}
