package persistence_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/felixgeelhaar/cinema/internal/catalog/infrastructure/persistence"
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
		SQLitePath: filepath.Join(t.TempDir(), "catalog.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func repositories(t *testing.T) map[string]domain.Repository {
	return map[string]domain.Repository{
		"memory": persistence.NewInMemoryMovieRepository(),
		"sqlite": persistence.NewSQLMovieRepository(openSQLite(t)),
	}
}

func mustMovie(t *testing.T, name string, duration int) *domain.Movie {
	t.Helper()
	movie, err := domain.NewMovie(name, duration, false)
	require.NoError(t, err)
	return movie
}

func TestMovieRepository_AddAndFind(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			dune, err := domain.NewMovie("Dune", 155, true)
			require.NoError(t, err)
			require.NoError(t, repo.Add(ctx, dune))

			byName, err := repo.FindByName(ctx, "Dune")
			require.NoError(t, err)
			require.NotNil(t, byName)
			assert.Equal(t, dune.ID(), byName.ID())
			assert.Equal(t, 155, byName.DurationMinutes())
			assert.True(t, byName.ThreeDimensionalGlassesNeeded())

			byID, err := repo.FindByID(ctx, dune.ID())
			require.NoError(t, err)
			assert.Equal(t, "Dune", byID.Name())
			assert.Equal(t, dune.CreatedAt(), byID.CreatedAt())
		})
	}
}

func TestMovieRepository_Missing(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			movie, err := repo.FindByName(ctx, "Nope")
			require.NoError(t, err)
			assert.Nil(t, movie)

			_, err = repo.FindByID(ctx, uuid.New())
			assert.ErrorIs(t, err, domain.ErrMovieNotFound)
		})
	}
}

func TestMovieRepository_DuplicateName(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Add(ctx, mustMovie(t, "Heat", 170)))

			err := repo.Add(ctx, mustMovie(t, "Heat", 120))
			assert.ErrorIs(t, err, domain.ErrDuplicateMovieName)

			movies, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, movies, 1)
		})
	}
}

func TestMovieRepository_ListKeepsInsertionOrder(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, title := range []string{"Zodiac", "Alien", "Memento"} {
				movie := domain.RehydrateMovie(uuid.New(), title, 100,
					false, time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC))
				require.NoError(t, repo.Add(ctx, movie))
			}

			movies, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, movies, 3)
			assert.Equal(t, "Zodiac", movies[0].Name())
			assert.Equal(t, "Alien", movies[1].Name())
			assert.Equal(t, "Memento", movies[2].Name())
		})
	}
}

func TestSQLMovieRepository_RollbackDiscardsMovie(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	repo := persistence.NewSQLMovieRepository(conn)
	uow := database.NewUnitOfWork(conn)

	err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		if err := repo.Add(txCtx, mustMovie(t, "Tenet", 150)); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	movie, err := repo.FindByName(ctx, "Tenet")
	require.NoError(t, err)
	assert.Nil(t, movie)
}
