package physical

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// Well-known metric names.
const (
	MetricOutputRows       = "output_rows"
	MetricElapsedCompute   = "elapsed_compute"
	MetricIOPS             = "iops"
	MetricRequests         = "requests"
	MetricBytesRead        = "bytes_read"
	MetricIndicesLoaded    = "indices_loaded"
	MetricPartsLoaded      = "parts_loaded"
	MetricIndexComparisons = "index_comparisons"
)

// Count is a monotonically increasing counter.
type Count struct {
	v atomic.Int64
}

// Add increments the counter by n.
func (c *Count) Add(n int) { c.v.Add(int64(n)) }

// Value returns the current value.
func (c *Count) Value() int { return int(c.v.Load()) }

// Time accumulates a duration.
type Time struct {
	ns atomic.Int64
}

// Add adds d.
func (t *Time) Add(d time.Duration) { t.ns.Add(int64(d)) }

// Value returns the accumulated duration.
func (t *Time) Value() time.Duration { return time.Duration(t.ns.Load()) }

// MetricsSet is the set of named metrics of one node.
type MetricsSet struct {
	mu     sync.RWMutex
	counts map[string]*Count
	times  map[string]*Time
	order  []string
}

// NewMetricsSet creates an empty set.
func NewMetricsSet() *MetricsSet {
	return &MetricsSet{
		counts: make(map[string]*Count),
		times:  make(map[string]*Time),
	}
}

// Counter returns the counter called name, creating it if needed.
func (m *MetricsSet) Counter(name string) *Count {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counts[name]; ok {
		return c
	}
	c := &Count{}
	m.counts[name] = c
	m.order = append(m.order, name)
	return c
}

// Timer returns the timer called name, creating it if needed.
func (m *MetricsSet) Timer(name string) *Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.times[name]; ok {
		return t
	}
	t := &Time{}
	m.times[name] = t
	m.order = append(m.order, name)
	return t
}

// FindCount returns the counter called name, if registered.
func (m *MetricsSet) FindCount(name string) (*Count, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.counts[name]
	return c, ok
}

// FindTime returns the timer called name, if registered.
func (m *MetricsSet) FindTime(name string) (*Time, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.times[name]
	return t, ok
}

// OutputRows returns the output_rows counter value, if registered.
func (m *MetricsSet) OutputRows() (int, bool) {
	c, ok := m.FindCount(MetricOutputRows)
	if !ok {
		return 0, false
	}
	return c.Value(), true
}

// String renders the metrics in registration order, e.g. "output_rows=3, elapsed_compute=1ms".
func (m *MetricsSet) String() string {
	if m == nil {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	parts := make([]string, 0, len(m.order))
	for _, name := range m.order {
		if c, ok := m.counts[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", name, c.Value()))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", name, m.times[name].Value()))
		}
	}
	return strings.Join(parts, ", ")
}

// BaselineMetrics are the output_rows and elapsed_compute metrics most nodes record.
type BaselineMetrics struct {
	outputRows     *Count
	elapsedCompute *Time
}

// NewBaselineMetrics registers the baseline metrics in m.
func NewBaselineMetrics(m *MetricsSet) *BaselineMetrics {
	return &BaselineMetrics{
		outputRows:     m.Counter(MetricOutputRows),
		elapsedCompute: m.Timer(MetricElapsedCompute),
	}
}

// RecordOutput adds rows to output_rows.
func (b *BaselineMetrics) RecordOutput(rows int64) { b.outputRows.Add(int(rows)) }

// RecordElapsed adds d to elapsed_compute.
func (b *BaselineMetrics) RecordElapsed(d time.Duration) { b.elapsedCompute.Add(d) }

// ObserveStream wraps s so that every Read is timed and counted.
func (b *BaselineMetrics) ObserveStream(s RecordBatchStream) RecordBatchStream {
	return &observedStream{RecordBatchStream: s, metrics: b}
}

type observedStream struct {
	RecordBatchStream
	metrics *BaselineMetrics
}

func (s *observedStream) Read(ctx context.Context) (arrow.Record, error) {
	start := time.Now()
	rec, err := s.RecordBatchStream.Read(ctx)
	s.metrics.RecordElapsed(time.Since(start))
	if rec != nil {
		s.metrics.RecordOutput(rec.NumRows())
	}
	return rec, err
}
