package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOperation(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		metrics := NewInMemoryMetrics()

		err := TimeOperation(context.Background(), nil, metrics, "schedule.show", func() error { return nil })

		require.NoError(t, err)
		tag := T(OperationKey, "schedule.show")
		assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, tag))
		assert.Zero(t, metrics.GetCounter(MetricOperationErrors, tag))
		assert.Len(t, metrics.GetTimings(MetricOperationDuration, tag), 1)
	})

	t.Run("records and logs failure", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})
		metrics := NewInMemoryMetrics()
		ctx := WithCorrelationID(context.Background(), "corr-1")
		failure := errors.New("room occupied")

		value, err := TimeOperationResult(ctx, logger, metrics, "schedule.show", func() (int, error) {
			return 0, failure
		})

		assert.ErrorIs(t, err, failure)
		assert.Zero(t, value)
		assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, T(OperationKey, "schedule.show")))
		assert.Contains(t, buf.String(), "operation failed")
		assert.Contains(t, buf.String(), "corr-1")
	})
}

func TestTimer_TagsAreNotShared(t *testing.T) {
	metrics := NewInMemoryMetrics()
	timer := StartTimer("op").WithMetrics(metrics).WithTags(T("room", "1"))

	timer.Stop()
	timer.Stop()

	assert.Equal(t, int64(2), metrics.GetCounter(MetricOperationTotal, T("room", "1"), T(OperationKey, "op")))
	assert.GreaterOrEqual(t, int64(timer.Elapsed()), int64(0))
}
