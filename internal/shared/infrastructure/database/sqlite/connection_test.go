package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedApplication "github.com/felixgeelhaar/cinema/internal/shared/application"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database"
)

func openTestConnection(t *testing.T) database.Connection {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "cinema-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	conn, err := database.NewConnection(context.Background(), database.Config{
		URL: "sqlite://" + filepath.Join(tmpDir, "nested", "schedule.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(context.Background(), `CREATE TABLE rooms (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	return conn
}

func countRooms(t *testing.T, conn database.Connection) int {
	t.Helper()
	var count int
	require.NoError(t, conn.QueryRow(context.Background(), `SELECT COUNT(*) FROM rooms`).Scan(&count))
	return count
}

func TestNewConnection(t *testing.T) {
	conn := openTestConnection(t)

	assert.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)

	result, err := conn.Exec(ctx, `INSERT INTO rooms (id, name) VALUES (?, ?)`, "1", "Blue")
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = conn.Exec(ctx, `INSERT INTO rooms (id, name) VALUES (?, ?)`, "2", "Red")
	require.NoError(t, err)

	rows, err := conn.Query(ctx, `SELECT name FROM rooms ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Blue", "Red"}, names)

	_, err = conn.Exec(ctx, `INSERT INTO rooms (id, name) VALUES (?, ?)`, "1", "Green")
	assert.True(t, database.IsUniqueViolation(err))
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("commits", func(t *testing.T) {
		conn := openTestConnection(t)
		uow := database.NewUnitOfWork(conn)

		err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
			_, err := database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO rooms (id, name) VALUES (?, ?)`, "1", "Blue")
			return err
		})

		require.NoError(t, err)
		assert.Equal(t, 1, countRooms(t, conn))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		conn := openTestConnection(t)
		uow := database.NewUnitOfWork(conn)
		failure := errors.New("rejected")

		err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
			_, err := database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO rooms (id, name) VALUES (?, ?)`, "1", "Blue")
			require.NoError(t, err)
			return failure
		})

		assert.ErrorIs(t, err, failure)
		assert.Equal(t, 0, countRooms(t, conn))
	})

	t.Run("nested unit joins outer transaction", func(t *testing.T) {
		conn := openTestConnection(t)
		uow := database.NewUnitOfWork(conn)

		err := sharedApplication.WithUnitOfWork(ctx, uow, func(outer context.Context) error {
			return sharedApplication.WithUnitOfWork(outer, uow, func(inner context.Context) error {
				info, ok := database.TxInfoFromContext(inner)
				require.True(t, ok)
				assert.False(t, info.Owned)
				_, err := database.ExecutorFromContext(inner, conn).Exec(inner, `INSERT INTO rooms (id, name) VALUES (?, ?)`, "1", "Blue")
				return err
			})
		})

		require.NoError(t, err)
		assert.Equal(t, 1, countRooms(t, conn))
	})

	t.Run("commit without begin", func(t *testing.T) {
		uow := database.NewUnitOfWork(openTestConnection(t))

		assert.ErrorIs(t, uow.Commit(ctx), database.ErrNoTransaction)
	})
}
