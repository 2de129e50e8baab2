package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cinema/internal/app"
	"github.com/felixgeelhaar/cinema/pkg/config"
)

func newContainer(t *testing.T) *app.Container {
	t.Helper()
	cfg := &config.Config{
		AppEnv:              "test",
		LocalMode:           true,
		DatabaseDriver:      "sqlite",
		SQLitePath:          filepath.Join(t.TempDir(), "cinema.db"),
		CleaningSlotMinutes: 15,
		ShowStartWindow:     config.Window{From: 9 * 60, To: 23 * 60},
		PremiereStartWindow: config.Window{From: 18 * 60, To: 21 * 60},
		OutboxBatchSize:     10,
		OutboxMaxRetries:    3,
	}
	c, err := app.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHealthMux_Healthz(t *testing.T) {
	c := newContainer(t)
	mux := healthMux(c)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, c.OutboxProcessor.Start(context.Background()))
	t.Cleanup(c.OutboxProcessor.Stop)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status processorStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.True(t, status.Running)
}

func TestHealthMux_ReadyAndMetrics(t *testing.T) {
	mux := healthMux(newContainer(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "database")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEvery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		every(ctx, time.Millisecond, func() {
			if calls.Add(1) == 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("every did not stop after cancel")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(3))

	// disabled interval returns immediately
	every(context.Background(), 0, func() { t.Fatal("unexpected tick") })
}
