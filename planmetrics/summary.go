// Package planmetrics aggregates the counters of a realized plan tree into
// one summary per execution.
package planmetrics

import (
	"context"
	"log/slog"

	"github.com/hupe1980/vecflow/physical"
)

const (
	// TraceExecution is the trace channel of execution summaries.
	TraceExecution = "vecflow::execution"

	// EventPlanRun is the event type of an execution summary.
	EventPlanRun = "plan_run"
)

// ExecutionSummaryCounts are the I/O and index counters summed over a plan tree.
type ExecutionSummaryCounts struct {
	IOPS             int
	Requests         int
	BytesRead        int
	IndicesLoaded    int
	PartsLoaded      int
	IndexComparisons int
}

// StatsCallback receives the summary of a finished execution.
type StatsCallback func(counts *ExecutionSummaryCounts)

// Visit adds the counters of node and of all its descendants to counts,
// depth-first, pre-order. Missing counters contribute 0. The tree must be
// acyclic.
func Visit(node physical.ExecutionPlan, counts *ExecutionSummaryCounts) {
	if m := node.Metrics(); m != nil {
		counts.IOPS += countOf(m, physical.MetricIOPS)
		counts.Requests += countOf(m, physical.MetricRequests)
		counts.BytesRead += countOf(m, physical.MetricBytesRead)
		counts.IndicesLoaded += countOf(m, physical.MetricIndicesLoaded)
		counts.PartsLoaded += countOf(m, physical.MetricPartsLoaded)
		counts.IndexComparisons += countOf(m, physical.MetricIndexComparisons)
	}
	for _, child := range node.Children() {
		Visit(child, counts)
	}
}

func countOf(m *physical.MetricsSet, name string) int {
	if c, ok := m.FindCount(name); ok {
		return c.Value()
	}
	return 0
}

// Report summarizes plan, emits one execution event on logger and then
// invokes callback, if any, with the same counts.
func Report(ctx context.Context, logger *slog.Logger, plan physical.ExecutionPlan, callback StatsCallback) {
	if logger == nil {
		logger = slog.Default()
	}

	outputRows, _ := plan.Metrics().OutputRows()

	var counts ExecutionSummaryCounts
	Visit(plan, &counts)

	logger.LogAttrs(ctx, slog.LevelInfo, "Execution plan run",
		slog.String("target", TraceExecution),
		slog.String("type", EventPlanRun),
		slog.Int("output_rows", outputRows),
		slog.Int("iops", counts.IOPS),
		slog.Int("requests", counts.Requests),
		slog.Int("bytes_read", counts.BytesRead),
		slog.Int("indices_loaded", counts.IndicesLoaded),
		slog.Int("parts_loaded", counts.PartsLoaded),
		slog.Int("index_comparisons", counts.IndexComparisons),
	)

	if callback != nil {
		callback(&counts)
	}
}
