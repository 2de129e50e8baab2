package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestApp_Health(t *testing.T) {
	ctx := context.Background()
	app := &App{}

	report, err := app.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, HealthReport{Status: "ok"}, report)

	repo := outbox.NewInMemoryRepository()
	require.NoError(t, repo.Save(ctx, &outbox.Message{EventType: "scheduling.room_event.added"}))
	app.SetOutbox(nil, repo)

	report, err = app.Health(ctx)
	require.NoError(t, err)
	assert.True(t, report.Outbox)
	assert.False(t, report.Calendar)
	assert.Equal(t, int64(1), report.OutboxPending)
}

func TestHealthCommand(t *testing.T) {
	SetApp(&App{OutboxRepo: outbox.NewInMemoryRepository()})
	t.Cleanup(func() { SetApp(nil) })

	out, err := runRoot(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "calendar: disabled")
	assert.Contains(t, out, "outbox:   0 pending")
}

func TestHealthCommand_RequiresApp(t *testing.T) {
	SetApp(nil)

	_, err := runRoot(t, "health")
	assert.ErrorContains(t, err, "app not initialized")
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cinema "+Version)
	assert.Contains(t, out, "commit: "+Commit)
}
