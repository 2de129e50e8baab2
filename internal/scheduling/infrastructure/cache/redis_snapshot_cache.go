package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/persistence"
)

// SnapshotKey is the Redis key holding the schedule snapshot.
const SnapshotKey = "cinema:schedule:snapshot"

// DefaultSnapshotTTL bounds how long an unused snapshot stays in Redis.
const DefaultSnapshotTTL = time.Hour

type snapshotRecord struct {
	Version int64                                    `json:"version"`
	Rooms   map[string][]persistence.RoomEventRecord `json:"rooms"`
}

// RedisSnapshotCache implements services.SnapshotCache with a single JSON
// value in Redis.
type RedisSnapshotCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisSnapshotCache creates a snapshot cache. A non-positive ttl uses
// DefaultSnapshotTTL.
func NewRedisSnapshotCache(client redis.UniversalClient, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotCache{client: client, key: SnapshotKey, ttl: ttl}
}

// WithKey returns a cache using key, so several cinemas can share a Redis.
func (c *RedisSnapshotCache) WithKey(key string) *RedisSnapshotCache {
	copied := *c
	copied.key = key
	return &copied
}

// Load returns the cached snapshot, or nil when there is none.
func (c *RedisSnapshotCache) Load(ctx context.Context) (*services.Snapshot, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var record snapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	rooms := make(map[string][]domain.RoomEvent, len(record.Rooms))
	for roomID, records := range record.Rooms {
		events := make([]domain.RoomEvent, 0, len(records))
		for _, r := range records {
			event, err := persistence.DecodeRoomEvent(r)
			if err != nil {
				return nil, fmt.Errorf("failed to decode snapshot of room %s: %w", roomID, err)
			}
			events = append(events, event)
		}
		rooms[roomID] = events
	}
	return &services.Snapshot{Version: record.Version, Rooms: rooms}, nil
}

// Store replaces the cached snapshot unless a newer one is already stored.
func (c *RedisSnapshotCache) Store(ctx context.Context, snapshot services.Snapshot) error {
	record := snapshotRecord{
		Version: snapshot.Version,
		Rooms:   make(map[string][]persistence.RoomEventRecord, len(snapshot.Rooms)),
	}
	for roomID, events := range snapshot.Rooms {
		records := make([]persistence.RoomEventRecord, 0, len(events))
		for _, event := range events {
			records = append(records, persistence.EncodeRoomEvent(event))
		}
		record.Rooms[roomID] = records
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var stored struct {
				Version int64 `json:"version"`
			}
			if json.Unmarshal(current, &stored) == nil && stored.Version > snapshot.Version {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, data, c.ttl)
			return nil
		})
		return err
	}, c.key)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			// Another writer stored a snapshot concurrently.
			return nil
		}
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
