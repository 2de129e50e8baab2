package persistence_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/cinema/internal/shared/application"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/migrations"
)

func openSQLite(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "schedule.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func eventStores(t *testing.T) map[string]domain.EventStore {
	return map[string]domain.EventStore{
		"memory": persistence.NewInMemoryEventStore(),
		"sqlite": persistence.NewSQLEventStore(openSQLite(t)),
	}
}

var day = domain.NewDate(2024, time.May, 1)

func added(version int64, room string, start domain.Clock) domain.ScheduleEvent {
	return domain.RoomEventAdded{
		Version: version,
		RoomID:  room,
		Event:   domain.NewShow(movieID, day, start, 90, 15),
	}
}

func TestEventStore_AppendAndRead(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			history, err := store.FindEventsHistory(ctx)
			require.NoError(t, err)
			assert.Empty(t, history)

			first := added(1, "1", domain.NewClock(10, 0))
			second := added(2, "2", domain.NewClock(13, 0))
			cancel := domain.RoomEventCancelled{Version: 3, RoomID: "1", Event: first.(domain.RoomEventAdded).Event}

			require.NoError(t, store.AddEvents(ctx, []domain.ScheduleEvent{first, second}))
			require.NoError(t, store.AddEvents(ctx, []domain.ScheduleEvent{cancel}))

			history, err = store.FindEventsHistory(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.ScheduleEvent{first, second, cancel}, history)

			after, err := store.FindEventsAfter(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, []domain.ScheduleEvent{second, cancel}, after)

			none, err := store.FindEventsAfter(ctx, 3)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestEventStore_VersionConflict(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.AddEvents(ctx, []domain.ScheduleEvent{added(1, "1", domain.NewClock(10, 0))}))

			err := store.AddEvents(ctx, []domain.ScheduleEvent{added(1, "2", domain.NewClock(12, 0))})
			assert.ErrorIs(t, err, domain.ErrVersionConflict)

			history, err := store.FindEventsHistory(ctx)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, "1", history[0].(domain.RoomEventAdded).RoomID)
		})
	}
}

func TestEventStore_HistoryReplaysToSchedule(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			schedule := domain.EmptyCinemaSchedule()

			for _, cmd := range []domain.ScheduleCommand{
				domain.ScheduleRoomEvent{RoomID: "1", Event: domain.NewShow(movieID, day, domain.NewClock(10, 0), 90, 15)},
				domain.ScheduleRoomEvent{RoomID: "2", Event: domain.NewUnavailability(day, domain.NewClock(9, 0), domain.NewClock(12, 0))},
				domain.CancelRoomEvent{RoomID: "1", Date: day, StartTime: domain.NewClock(10, 0)},
			} {
				success, ok := schedule.Process(cmd).(domain.Success)
				require.True(t, ok)
				require.NoError(t, store.AddEvents(ctx, success.Events))
				var err error
				schedule, err = schedule.ApplyAll(success.Events)
				require.NoError(t, err)
			}

			history, err := store.FindEventsHistory(ctx)
			require.NoError(t, err)
			replayed, err := domain.ReplayCinemaSchedule(history)
			require.NoError(t, err)

			assert.Equal(t, schedule.Version(), replayed.Version())
			assert.Equal(t, schedule.Rooms(), replayed.Rooms())
		})
	}
}

func TestSQLEventStore_RollbackDiscardsBatch(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	store := persistence.NewSQLEventStore(conn)
	uow := database.NewUnitOfWork(conn)

	require.NoError(t, store.AddEvents(ctx, []domain.ScheduleEvent{added(1, "1", domain.NewClock(10, 0))}))

	err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		return store.AddEvents(txCtx, []domain.ScheduleEvent{
			added(2, "2", domain.NewClock(10, 0)),
			added(1, "3", domain.NewClock(10, 0)),
		})
	})
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	history, err := store.FindEventsHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
