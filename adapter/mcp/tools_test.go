package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	internalApp "github.com/felixgeelhaar/cinema/internal/app"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/caldav"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *cli.App {
	t.Helper()
	container := internalApp.NewInMemoryContainer(nil, nil)
	t.Cleanup(func() { container.Close() })

	return cli.NewApp(
		container.AddMovieHandler,
		container.ListMoviesHandler,
		container.ScheduleShowHandler,
		container.ScheduleUnavailabilityHandler,
		container.CancelRoomEventHandler,
		container.GetRoomScheduleHandler,
		container.ListRoomsHandler,
	)
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	app := &cli.App{}
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: app}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := map[any]bool{}
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, name := range []string{
		"cli.health", "movie.add", "movie.list",
		"schedule.show", "schedule.block", "schedule.cancel",
		"schedule.room", "schedule.rooms", "schedule.export",
	} {
		assert.True(t, names[name], "%s tool should be registered", name)
	}
}

func TestRegisterCLITools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestScheduleTools_Workflow(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	movie, err := addMovie(ctx, app, movieAddInput{Name: "Dune", DurationMinutes: 120})
	require.NoError(t, err)
	assert.Equal(t, "Dune", movie.Name)

	movies, err := listMovies(ctx, app)
	require.NoError(t, err)
	require.Len(t, movies, 1)

	booking, err := scheduleShow(ctx, app, scheduleShowInput{
		RoomID: "1", Movie: "Dune", Date: "2024-05-01", Start: "18:00",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.NewClock(20, 0), booking.EndTime)
	require.NotNil(t, booking.CleaningSlot)
	assert.Equal(t, domain.NewClock(20, 15), booking.CleaningSlot.End)
	assert.Equal(t, int64(1), booking.Version)

	_, err = scheduleShow(ctx, app, scheduleShowInput{
		RoomID: "1", Movie: "Dune", Date: "2024-05-01", Start: "19:00",
	})
	assert.ErrorIs(t, err, domain.ErrRoomOccupied)

	block, err := scheduleBlock(ctx, app, scheduleBlockInput{
		RoomID: "1", Date: "2024-05-01", Start: "09:00", End: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), block.Version)

	events, err := roomSchedule(ctx, app, scheduleRoomInput{RoomID: "1", Date: "2024-05-01"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, queries.KindUnavailability, events[0].Kind)
	assert.Equal(t, queries.KindShow, events[1].Kind)

	cancelled, err := scheduleCancel(ctx, app, scheduleCancelInput{RoomID: "1", Date: "2024-05-01", Start: "18:00"})
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	assert.Equal(t, int64(3), cancelled.Version)

	cancelled, err = scheduleCancel(ctx, app, scheduleCancelInput{RoomID: "1", Date: "2024-05-01", Start: "18:00"})
	require.NoError(t, err)
	assert.False(t, cancelled.Cancelled)
}

func TestScheduleTools_InputErrors(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	_, err := scheduleShow(ctx, app, scheduleShowInput{RoomID: "1", Movie: "Dune", Start: ""})
	assert.ErrorContains(t, err, "time is required")

	_, err = scheduleBlock(ctx, app, scheduleBlockInput{RoomID: "1", Date: "tomorrow", Start: "09:00", End: "10:00"})
	assert.ErrorContains(t, err, "YYYY-MM-DD")

	_, err = roomSchedule(ctx, app, scheduleRoomInput{RoomID: "1", Date: "05/01"})
	assert.ErrorContains(t, err, "YYYY-MM-DD")

	_, err = scheduleShow(ctx, &cli.App{}, scheduleShowInput{})
	assert.ErrorContains(t, err, "database connection")
}

type stubCalendar struct {
	published map[string]int
}

func (s *stubCalendar) PublishRoom(_ context.Context, roomID string, events []queries.EnrichedRoomEvent) (caldav.PublishResult, error) {
	s.published[roomID] = len(events)
	return caldav.PublishResult{Created: len(events)}, nil
}

func TestExportRooms(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	_, err := exportRooms(ctx, app, scheduleExportInput{})
	assert.ErrorContains(t, err, "CALDAV_URL")

	calendar := &stubCalendar{published: map[string]int{}}
	app.SetCalendarPublisher(calendar)

	_, err = addMovie(ctx, app, movieAddInput{Name: "Dune", DurationMinutes: 120})
	require.NoError(t, err)
	_, err = scheduleShow(ctx, app, scheduleShowInput{RoomID: "4", Movie: "Dune", Date: "2024-05-01", Start: "12:00"})
	require.NoError(t, err)

	results, err := exportRooms(ctx, app, scheduleExportInput{})
	require.NoError(t, err)
	assert.Equal(t, caldav.PublishResult{Created: 1}, results["4"])
	assert.Equal(t, map[string]int{"4": 1}, calendar.published)
}

func TestParseDate_Fallback(t *testing.T) {
	now := time.Date(2024, time.June, 3, 22, 0, 0, 0, time.UTC)
	date, err := parseDate("", now)
	require.NoError(t, err)
	assert.Equal(t, domain.NewDate(2024, time.June, 3), date)

	optional, err := parseOptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, optional)
}

func TestPlanRoomDayText(t *testing.T) {
	text := planRoomDayText("3", "2024-05-01", "")
	assert.Contains(t, text, "room 3 on 2024-05-01")
	assert.Contains(t, text, "cinema://rooms/3/schedule")
	assert.Contains(t, text, "any catalog movies that fit")

	assert.Contains(t, planRoomDayText("3", "2024-05-01", "Dune, Alien"), "Dune, Alien")
}
