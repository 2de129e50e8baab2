package services

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

// Snapshot is a folded schedule at Version.
type Snapshot struct {
	Version int64
	Rooms   map[string][]domain.RoomEvent
}

// SnapshotOf captures schedule.
func SnapshotOf(schedule domain.CinemaSchedule) Snapshot {
	return Snapshot{Version: schedule.Version(), Rooms: schedule.Rooms()}
}

// SnapshotCache stores the latest folded schedule so readers can skip most
// of the replay.
type SnapshotCache interface {
	// Load returns nil and no error when nothing is cached.
	Load(ctx context.Context) (*Snapshot, error)
	Store(ctx context.Context, snapshot Snapshot) error
	// Invalidate drops the cached snapshot. Store keeps a newer snapshot, so
	// one that disagrees with the log has to be removed explicitly.
	Invalidate(ctx context.Context) error
}

// ScheduleLoader rebuilds the cinema schedule from the event store, starting
// from the cached snapshot when there is one. The result always equals a
// full replay of the history.
type ScheduleLoader struct {
	store   domain.EventStore
	cache   SnapshotCache
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewScheduleLoader creates a loader. cache may be nil.
func NewScheduleLoader(store domain.EventStore, cache SnapshotCache, metrics observability.Metrics, logger *slog.Logger) *ScheduleLoader {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleLoader{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Load returns the current schedule.
//
// A snapshot is only trusted when the event carrying its version is still
// in the log. Otherwise the snapshot outlived the log it was folded from
// (a reset or restored database) and the full history is replayed.
func (l *ScheduleLoader) Load(ctx context.Context) (domain.CinemaSchedule, error) {
	base := domain.EmptyCinemaSchedule()
	if snapshot := l.cachedSnapshot(ctx); snapshot != nil && snapshot.Version > 0 {
		base = domain.RehydrateCinemaSchedule(snapshot.Version, snapshot.Rooms)
	}

	from := max(base.Version()-1, 0)
	events, err := l.store.FindEventsAfter(ctx, from)
	if err != nil {
		return domain.CinemaSchedule{}, err
	}
	if base.Version() > 0 {
		if len(events) == 0 || events[0].EventVersion() != base.Version() {
			return l.discard(ctx, base.Version(), "snapshot ahead of event log", nil)
		}
		events = events[1:]
	}

	schedule, err := base.ApplyAll(events)
	if err != nil {
		if base.Version() == 0 {
			return domain.CinemaSchedule{}, err
		}
		return l.discard(ctx, base.Version(), "snapshot inconsistent with event log", err)
	}
	l.metrics.Histogram(observability.MetricReplayedEvents, float64(len(events)))

	if len(events) > 0 {
		l.Refresh(ctx, schedule)
	}
	l.metrics.Gauge(observability.MetricScheduleVersion, float64(schedule.Version()))
	return schedule, nil
}

// discard drops a snapshot that disagrees with the log and replays the full
// history instead.
func (l *ScheduleLoader) discard(ctx context.Context, version int64, reason string, cause error) (domain.CinemaSchedule, error) {
	attrs := []any{"snapshot_version", version}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	l.logger.WarnContext(ctx, reason+", replaying full history", attrs...)

	if err := l.cache.Invalidate(ctx); err != nil {
		l.logger.WarnContext(ctx, "failed to invalidate schedule snapshot", "error", err)
	}
	return l.replay(ctx)
}

// Refresh caches schedule. Cache failures are logged, not returned.
func (l *ScheduleLoader) Refresh(ctx context.Context, schedule domain.CinemaSchedule) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Store(ctx, SnapshotOf(schedule)); err != nil {
		l.logger.WarnContext(ctx, "failed to store schedule snapshot",
			"version", schedule.Version(),
			"error", err,
		)
	}
}

func (l *ScheduleLoader) cachedSnapshot(ctx context.Context) *Snapshot {
	if l.cache == nil {
		return nil
	}
	snapshot, err := l.cache.Load(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "failed to load schedule snapshot, replaying full history", "error", err)
		l.metrics.Counter(observability.MetricSnapshotMisses, 1)
		return nil
	}
	if snapshot == nil {
		l.metrics.Counter(observability.MetricSnapshotMisses, 1)
		return nil
	}
	l.metrics.Counter(observability.MetricSnapshotHits, 1)
	return snapshot
}

func (l *ScheduleLoader) replay(ctx context.Context) (domain.CinemaSchedule, error) {
	events, err := l.store.FindEventsHistory(ctx)
	if err != nil {
		return domain.CinemaSchedule{}, err
	}
	l.metrics.Histogram(observability.MetricReplayedEvents, float64(len(events)))
	schedule, err := domain.ReplayCinemaSchedule(events)
	if err != nil {
		return domain.CinemaSchedule{}, err
	}
	l.Refresh(ctx, schedule)
	l.metrics.Gauge(observability.MetricScheduleVersion, float64(schedule.Version()))
	return schedule, nil
}
