package planmetrics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecflow/physical"
	"github.com/hupe1980/vecflow/testutil"
)

func TestVisit_SumsWholeTree(t *testing.T) {
	c := testutil.NewMockExec("C").WithCount(physical.MetricIOPS, 5).WithCount(physical.MetricBytesRead, 100)
	b := testutil.NewMockExec("B", c).WithCount(physical.MetricIOPS, 3).WithCount(physical.MetricIndexComparisons, 7)
	a := testutil.NewMockExec("A", b, testutil.NewMockExec("no-metrics")).WithCount(physical.MetricIOPS, 2)

	var counts ExecutionSummaryCounts
	Visit(a, &counts)

	assert.Equal(t, ExecutionSummaryCounts{
		IOPS:             10,
		BytesRead:        100,
		IndexComparisons: 7,
	}, counts)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	root := testutil.NewMockExec("root", testutil.NewMockExec("leaf").WithCount(physical.MetricRequests, 2)).
		WithCount(physical.MetricOutputRows, 9).
		WithCount(physical.MetricPartsLoaded, 1)

	var got []*ExecutionSummaryCounts
	Report(context.Background(), logger, root, func(c *ExecutionSummaryCounts) {
		got = append(got, c)
	})

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Requests)
	assert.Equal(t, 1, got[0].PartsLoaded)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var event map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &event))
	assert.Equal(t, TraceExecution, event["target"])
	assert.Equal(t, EventPlanRun, event["type"])
	assert.Equal(t, float64(9), event["output_rows"])
	assert.Equal(t, float64(2), event["requests"])
	assert.Equal(t, float64(0), event["iops"])
}

func TestReport_UnknownOutputRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	Report(context.Background(), logger, testutil.NewMockExec("root"), nil)

	var event map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &event))
	assert.Equal(t, float64(0), event["output_rows"])
}
