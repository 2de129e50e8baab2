package cli

import (
	catalogCommands "github.com/felixgeelhaar/cinema/internal/catalog/application/commands"
	catalogQueries "github.com/felixgeelhaar/cinema/internal/catalog/application/queries"
	scheduleCommands "github.com/felixgeelhaar/cinema/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/subscribers"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
)

// App holds the CLI application dependencies.
type App struct {
	// Catalog
	AddMovieHandler   *catalogCommands.AddMovieHandler
	ListMoviesHandler *catalogQueries.ListMoviesHandler

	// Schedule Command Handlers
	ScheduleShowHandler           *scheduleCommands.ScheduleShowHandler
	ScheduleUnavailabilityHandler *scheduleCommands.ScheduleUnavailabilityHandler
	CancelRoomEventHandler        *scheduleCommands.CancelRoomEventHandler

	// Schedule Query Handlers
	GetRoomScheduleHandler *scheduleQueries.GetRoomScheduleHandler
	ListRoomsHandler       *scheduleQueries.ListRoomsHandler

	// Calendar export, nil unless CalDAV is configured
	CalendarPublisher subscribers.RoomCalendar

	// Outbox
	OutboxProcessor *outbox.Processor
	OutboxRepo      outbox.Repository
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	addMovieHandler *catalogCommands.AddMovieHandler,
	listMoviesHandler *catalogQueries.ListMoviesHandler,
	scheduleShowHandler *scheduleCommands.ScheduleShowHandler,
	scheduleUnavailabilityHandler *scheduleCommands.ScheduleUnavailabilityHandler,
	cancelRoomEventHandler *scheduleCommands.CancelRoomEventHandler,
	getRoomScheduleHandler *scheduleQueries.GetRoomScheduleHandler,
	listRoomsHandler *scheduleQueries.ListRoomsHandler,
) *App {
	return &App{
		AddMovieHandler:               addMovieHandler,
		ListMoviesHandler:             listMoviesHandler,
		ScheduleShowHandler:           scheduleShowHandler,
		ScheduleUnavailabilityHandler: scheduleUnavailabilityHandler,
		CancelRoomEventHandler:        cancelRoomEventHandler,
		GetRoomScheduleHandler:        getRoomScheduleHandler,
		ListRoomsHandler:              listRoomsHandler,
	}
}

// SetCalendarPublisher updates the calendar publisher.
func (a *App) SetCalendarPublisher(publisher subscribers.RoomCalendar) {
	a.CalendarPublisher = publisher
}

// SetOutbox updates the outbox processor and the repository it drains.
func (a *App) SetOutbox(processor *outbox.Processor, repo outbox.Repository) {
	a.OutboxProcessor = processor
	a.OutboxRepo = repo
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
