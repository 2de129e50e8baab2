package domain

import "sort"

// Versioned is implemented by events that know their position in an
// aggregate's event stream.
type Versioned interface {
	EventVersion() int64
}

// SortByVersion returns a copy of events ordered by ascending version.
// Events sharing a version keep their relative order.
func SortByVersion[E Versioned](events []E) []E {
	sorted := make([]E, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EventVersion() < sorted[j].EventVersion()
	})
	return sorted
}

// Replay rebuilds aggregate state by folding events, in ascending version
// order, into initial. The first apply error aborts the replay.
func Replay[S any, E Versioned](initial S, events []E, apply func(S, E) (S, error)) (S, error) {
	state := initial
	for _, event := range SortByVersion(events) {
		next, err := apply(state, event)
		if err != nil {
			return initial, err
		}
		state = next
	}
	return state, nil
}
