package planmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg, "vecflow")
	require.NoError(t, err)

	cb := rec.Callback()
	cb(&ExecutionSummaryCounts{IOPS: 2, BytesRead: 10})
	cb(&ExecutionSummaryCounts{IOPS: 3, IndexComparisons: 4})

	assert.Equal(t, float64(2), testutil.ToFloat64(rec.runs))
	assert.Equal(t, float64(5), testutil.ToFloat64(rec.iops))
	assert.Equal(t, float64(10), testutil.ToFloat64(rec.bytesRead))
	assert.Equal(t, float64(4), testutil.ToFloat64(rec.indexComparisons))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	// A second recorder on the same registry collides.
	_, err = NewPrometheusRecorder(reg, "vecflow")
	assert.Error(t, err)
}
