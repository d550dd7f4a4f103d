package testutil

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hupe1980/vecflow/execution"
	"github.com/hupe1980/vecflow/physical"
)

// MockExec is a configurable plan node for tests.
//
// Executing it returns the configured records (or an empty stream) and
// records output_rows when it has metrics.
type MockExec struct {
	name       string
	schema     *arrow.Schema
	children   []physical.ExecutionPlan
	partitions int
	records    []arrow.Record
	execErr    error
	metrics    *physical.MetricsSet

	Executions int
	Displays   int
	LastTask   *execution.TaskContext
}

// NewMockExec creates a single-partition node with the given children and no metrics.
func NewMockExec(name string, children ...physical.ExecutionPlan) *MockExec {
	return &MockExec{
		name:       name,
		schema:     arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int64}}, nil),
		children:   children,
		partitions: 1,
	}
}

// WithCount adds n to the named counter, creating the metrics set if needed.
func (m *MockExec) WithCount(name string, n int) *MockExec {
	if m.metrics == nil {
		m.metrics = physical.NewMetricsSet()
	}
	m.metrics.Counter(name).Add(n)
	return m
}

// WithPartitions sets the declared partition count.
func (m *MockExec) WithPartitions(n int) *MockExec {
	m.partitions = n
	return m
}

// WithRecords sets the records returned by Execute. The node takes ownership.
func (m *MockExec) WithRecords(recs ...arrow.Record) *MockExec {
	if len(recs) > 0 {
		m.schema = recs[0].Schema()
	}
	m.records = recs
	return m
}

// WithExecuteError makes Execute fail.
func (m *MockExec) WithExecuteError(err error) *MockExec {
	m.execErr = err
	return m
}

func (m *MockExec) Name() string                       { return m.name }
func (m *MockExec) Schema() *arrow.Schema              { return m.schema }
func (m *MockExec) Children() []physical.ExecutionPlan { return m.children }
func (m *MockExec) Metrics() *physical.MetricsSet      { return m.metrics }

func (m *MockExec) Properties() physical.PlanProperties {
	p := physical.SinglePartitionProperties()
	p.Partitions = m.partitions
	return p
}

func (m *MockExec) WithNewChildren(children []physical.ExecutionPlan) (physical.ExecutionPlan, error) {
	c := *m
	c.children = children
	return &c, nil
}

// DisplayAs returns the node name and counts the call.
func (m *MockExec) DisplayAs(physical.DisplayFormat) string {
	m.Displays++
	return m.name
}

func (m *MockExec) Execute(partition int, task *execution.TaskContext) (physical.RecordBatchStream, error) {
	m.Executions++
	m.LastTask = task
	if m.execErr != nil {
		return nil, m.execErr
	}
	if partition < 0 || partition >= m.partitions {
		return nil, fmt.Errorf("%w: partition %d", physical.ErrExecution, partition)
	}

	recs := m.records
	m.records = nil

	s := physical.NewRecordStream(m.schema, recs...)
	if m.metrics != nil {
		s = physical.NewBaselineMetrics(m.metrics).ObserveStream(s)
	}
	return s, nil
}
