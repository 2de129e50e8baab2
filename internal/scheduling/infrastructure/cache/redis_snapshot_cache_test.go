package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/cache"
)

func newTestCache(t *testing.T) *cache.RedisSnapshotCache {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedisSnapshotCache(client, time.Minute).WithKey("cinema:test:" + uuid.NewString())
	t.Cleanup(func() { _ = c.Invalidate(context.Background()) })
	return c
}

func TestRedisSnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	empty, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	day := domain.NewDate(2024, time.May, 1)
	snapshot := services.Snapshot{
		Version: 4,
		Rooms: map[string][]domain.RoomEvent{
			"1": {domain.NewShow(uuid.New(), day, domain.NewClock(18, 0), 120, 15)},
			"2": {domain.NewUnavailability(day, domain.NewClock(9, 0), domain.NewClock(11, 0))},
		},
	}
	require.NoError(t, c.Store(ctx, snapshot))

	loaded, err := c.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snapshot, *loaded)
}

func TestRedisSnapshotCache_KeepsNewerSnapshot(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	require.NoError(t, c.Store(ctx, services.Snapshot{Version: 7, Rooms: map[string][]domain.RoomEvent{}}))
	require.NoError(t, c.Store(ctx, services.Snapshot{Version: 3, Rooms: map[string][]domain.RoomEvent{}}))

	loaded, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.Version)
}
