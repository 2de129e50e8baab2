package movie

import (
	"bytes"
	"context"
	"testing"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	internalApp "github.com/felixgeelhaar/cinema/internal/app"
	catalogDomain "github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *cli.App {
	t.Helper()

	container := internalApp.NewInMemoryContainer(nil, nil)
	t.Cleanup(func() { container.Close() })

	app := cli.NewApp(
		container.AddMovieHandler,
		container.ListMoviesHandler,
		container.ScheduleShowHandler,
		container.ScheduleUnavailabilityHandler,
		container.CancelRoomEventHandler,
		container.GetRoomScheduleHandler,
		container.ListRoomsHandler,
	)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

func runAdd(t *testing.T, name string, duration int, glasses bool) (string, error) {
	t.Helper()
	addName, addDuration, add3D = name, duration, glasses

	var out bytes.Buffer
	addCmd.SetOut(&out)
	addCmd.SetContext(context.Background())
	err := addCmd.RunE(addCmd, nil)
	return out.String(), err
}

func TestAddCmd(t *testing.T) {
	setupTestApp(t)

	out, err := runAdd(t, "Dune", 155, false)
	require.NoError(t, err)
	assert.Contains(t, out, `Added movie "Dune" (155m)`)
}

func TestAddCmd_DuplicateName(t *testing.T) {
	setupTestApp(t)

	_, err := runAdd(t, "Dune", 155, false)
	require.NoError(t, err)

	_, err = runAdd(t, "Dune", 120, false)
	assert.ErrorIs(t, err, catalogDomain.ErrDuplicateMovieName)
}

func TestAddCmd_InvalidDuration(t *testing.T) {
	setupTestApp(t)

	_, err := runAdd(t, "Dune", 0, false)
	assert.ErrorIs(t, err, catalogDomain.ErrInvalidDuration)
}

func TestListCmd(t *testing.T) {
	setupTestApp(t)

	var out bytes.Buffer
	listCmd.SetOut(&out)
	listCmd.SetContext(context.Background())
	require.NoError(t, listCmd.RunE(listCmd, nil))
	assert.Contains(t, out.String(), "No movies in the catalog.")

	_, err := runAdd(t, "Avatar", 162, true)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, listCmd.RunE(listCmd, nil))
	assert.Contains(t, out.String(), "Avatar")
	assert.Contains(t, out.String(), "162m")
	assert.Contains(t, out.String(), "yes")
	assert.Contains(t, out.String(), "1 movies")
}

func TestCommands_RequireApp(t *testing.T) {
	cli.SetApp(nil)

	listCmd.SetContext(context.Background())
	assert.Error(t, listCmd.RunE(listCmd, nil))
	addCmd.SetContext(context.Background())
	assert.Error(t, addCmd.RunE(addCmd, nil))
}
