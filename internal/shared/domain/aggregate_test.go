package domain_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/cinema/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterEvent struct {
	version int64
	delta   int
}

func (e counterEvent) EventVersion() int64 { return e.version }

func applyCounter(state []int, e counterEvent) ([]int, error) {
	if e.delta < 0 {
		return nil, errors.New("negative delta")
	}
	next := append(append([]int(nil), state...), e.delta)
	return next, nil
}

func TestSortByVersion(t *testing.T) {
	events := []counterEvent{{version: 3, delta: 3}, {version: 1, delta: 1}, {version: 2, delta: 2}}

	sorted := domain.SortByVersion(events)

	assert.Equal(t, []counterEvent{{1, 1}, {2, 2}, {3, 3}}, sorted)
	assert.Equal(t, int64(3), events[0].version, "input slice is not reordered")
}

func TestSortByVersion_Stable(t *testing.T) {
	events := []counterEvent{{version: 2, delta: 20}, {version: 1, delta: 1}, {version: 2, delta: 21}}

	sorted := domain.SortByVersion(events)

	assert.Equal(t, []counterEvent{{1, 1}, {2, 20}, {2, 21}}, sorted)
}

func TestReplay(t *testing.T) {
	t.Run("folds in version order", func(t *testing.T) {
		events := []counterEvent{{version: 2, delta: 20}, {version: 1, delta: 10}}

		state, err := domain.Replay([]int{}, events, applyCounter)

		require.NoError(t, err)
		assert.Equal(t, []int{10, 20}, state)
	})

	t.Run("empty history returns initial state", func(t *testing.T) {
		state, err := domain.Replay([]int{7}, nil, applyCounter)

		require.NoError(t, err)
		assert.Equal(t, []int{7}, state)
	})

	t.Run("stops at first error", func(t *testing.T) {
		events := []counterEvent{{version: 1, delta: 1}, {version: 2, delta: -1}}

		state, err := domain.Replay([]int{}, events, applyCounter)

		require.Error(t, err)
		assert.Equal(t, []int{}, state)
	})
}
