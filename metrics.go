package vecflow

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/vecflow/planmetrics"
)

// StatsCollector defines an interface for collecting execution statistics.
// Implement this interface to integrate with monitoring systems; see
// planmetrics.PrometheusRecorder for a Prometheus export of the summaries.
type StatsCollector interface {
	// RecordExecution is called once per executed plan with its summary.
	RecordExecution(counts *planmetrics.ExecutionSummaryCounts)

	// RecordAnalyze is called after each analyze run.
	// duration is the total time taken, err is nil if successful.
	RecordAnalyze(duration time.Duration, err error)
}

// NoopStatsCollector is a no-op implementation of StatsCollector.
// Use this when statistics collection is not needed.
type NoopStatsCollector struct{}

func (NoopStatsCollector) RecordExecution(*planmetrics.ExecutionSummaryCounts) {}
func (NoopStatsCollector) RecordAnalyze(time.Duration, error)                  {}

// BasicStatsCollector provides simple in-memory statistics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicStatsCollector struct {
	Executions       atomic.Int64
	IOPS             atomic.Int64
	Requests         atomic.Int64
	BytesRead        atomic.Int64
	IndicesLoaded    atomic.Int64
	PartsLoaded      atomic.Int64
	IndexComparisons atomic.Int64
	AnalyzeCount     atomic.Int64
	AnalyzeErrors    atomic.Int64
	AnalyzeNanos     atomic.Int64
}

// RecordExecution implements StatsCollector.
func (b *BasicStatsCollector) RecordExecution(c *planmetrics.ExecutionSummaryCounts) {
	b.Executions.Add(1)
	b.IOPS.Add(int64(c.IOPS))
	b.Requests.Add(int64(c.Requests))
	b.BytesRead.Add(int64(c.BytesRead))
	b.IndicesLoaded.Add(int64(c.IndicesLoaded))
	b.PartsLoaded.Add(int64(c.PartsLoaded))
	b.IndexComparisons.Add(int64(c.IndexComparisons))
}

// RecordAnalyze implements StatsCollector.
func (b *BasicStatsCollector) RecordAnalyze(duration time.Duration, err error) {
	b.AnalyzeCount.Add(1)
	b.AnalyzeNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AnalyzeErrors.Add(1)
	}
}

// GetStats returns a snapshot of current statistics.
func (b *BasicStatsCollector) GetStats() BasicStats {
	s := BasicStats{
		Executions:       b.Executions.Load(),
		IOPS:             b.IOPS.Load(),
		Requests:         b.Requests.Load(),
		BytesRead:        b.BytesRead.Load(),
		IndicesLoaded:    b.IndicesLoaded.Load(),
		PartsLoaded:      b.PartsLoaded.Load(),
		IndexComparisons: b.IndexComparisons.Load(),
		AnalyzeCount:     b.AnalyzeCount.Load(),
		AnalyzeErrors:    b.AnalyzeErrors.Load(),
	}
	if s.AnalyzeCount > 0 {
		s.AnalyzeAvgNanos = b.AnalyzeNanos.Load() / s.AnalyzeCount
	}
	return s
}

// BasicStats is a snapshot of BasicStatsCollector.
type BasicStats struct {
	Executions       int64
	IOPS             int64
	Requests         int64
	BytesRead        int64
	IndicesLoaded    int64
	PartsLoaded      int64
	IndexComparisons int64
	AnalyzeCount     int64
	AnalyzeErrors    int64
	AnalyzeAvgNanos  int64
}
