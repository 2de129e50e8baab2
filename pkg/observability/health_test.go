package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingOK(context.Context) error   { return nil }
func pingDown(context.Context) error { return errors.New("connection refused") }

func TestHealthRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy with no checks", func(t *testing.T) {
		registry := NewHealthRegistry()

		assert.Equal(t, HealthStatusHealthy, registry.GetOverallHealth(ctx).Status)
	})

	t.Run("optional dependency degrades", func(t *testing.T) {
		registry := NewHealthRegistry()
		registry.Register("database", DatabaseHealthChecker(pingOK))
		registry.Register("redis", RedisHealthChecker(pingDown))

		health := registry.GetOverallHealth(ctx)

		assert.Equal(t, HealthStatusDegraded, health.Status)
		assert.Equal(t, HealthStatusHealthy, health.Checks["database"].Status)
		assert.Contains(t, health.Checks["redis"].Message, "connection refused")
	})

	t.Run("required dependency fails", func(t *testing.T) {
		registry := NewHealthRegistry()
		registry.Register("database", DatabaseHealthChecker(pingDown))
		registry.Register("rabbitmq", RabbitMQHealthChecker(pingOK))

		assert.Equal(t, HealthStatusUnhealthy, registry.GetOverallHealth(ctx).Status)
	})

	t.Run("check one and unregister", func(t *testing.T) {
		registry := NewHealthRegistry()
		registry.Register("redis", RedisHealthChecker(pingOK))

		result, found := registry.CheckOne(ctx, "redis")
		require.True(t, found)
		assert.Equal(t, HealthStatusHealthy, result.Status)

		registry.Unregister("redis")
		_, found = registry.CheckOne(ctx, "redis")
		assert.False(t, found)
	})
}

func TestHealthRegistry_Handler(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("database", DatabaseHealthChecker(pingDown))

	rec := httptest.NewRecorder()
	registry.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body OverallHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthStatusUnhealthy, body.Status)
}

func TestOutboxBacklogChecker(t *testing.T) {
	ctx := context.Background()
	count := func(n int64, err error) func(context.Context) (int64, error) {
		return func(context.Context) (int64, error) { return n, err }
	}

	assert.Equal(t, HealthStatusHealthy, OutboxBacklogChecker(10, count(10, nil))(ctx).Status)
	assert.Equal(t, HealthStatusDegraded, OutboxBacklogChecker(10, count(11, nil))(ctx).Status)
	assert.Equal(t, HealthStatusHealthy, OutboxBacklogChecker(0, count(5000, nil))(ctx).Status)

	failed := OutboxBacklogChecker(10, count(0, errors.New("no such table")))(ctx)
	assert.Equal(t, HealthStatusDegraded, failed.Status)
	assert.Contains(t, failed.Message, "no such table")
}
