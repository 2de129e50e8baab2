package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
)

// InMemoryEventStore keeps the event log in memory.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events []domain.ScheduleEvent
	stored map[int64]struct{}
}

// NewInMemoryEventStore creates an empty event store.
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{stored: make(map[int64]struct{})}
}

func (s *InMemoryEventStore) FindEventsHistory(ctx context.Context) ([]domain.ScheduleEvent, error) {
	return s.FindEventsAfter(ctx, 0)
}

func (s *InMemoryEventStore) FindEventsAfter(_ context.Context, version int64) ([]domain.ScheduleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []domain.ScheduleEvent
	for _, event := range s.events {
		if event.EventVersion() > version {
			events = append(events, event)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventVersion() < events[j].EventVersion()
	})
	return events, nil
}

// AddEvents appends events. Nothing is stored when one of them reuses a
// version.
func (s *InMemoryEventStore) AddEvents(_ context.Context, events []domain.ScheduleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[int64]struct{}, len(events))
	for _, event := range events {
		v := event.EventVersion()
		_, stored := s.stored[v]
		_, repeated := batch[v]
		if stored || repeated {
			return fmt.Errorf("%w: version %d", domain.ErrVersionConflict, v)
		}
		batch[v] = struct{}{}
	}

	for _, event := range events {
		s.events = append(s.events, event)
		s.stored[event.EventVersion()] = struct{}{}
	}
	return nil
}

// Len returns the number of stored events.
func (s *InMemoryEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
