package physical

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hupe1980/vecflow/execution"
)

// AnalyzeExec runs its input to completion, discarding the data, and
// produces a single batch describing the input plan annotated with the
// metrics recorded during the run.
type AnalyzeExec struct {
	verbose  bool
	input    ExecutionPlan
	schema   *arrow.Schema
	metrics  *MetricsSet
	baseline *BaselineMetrics
}

// NewAnalyzeExec wraps input.
func NewAnalyzeExec(verbose bool, input ExecutionPlan) *AnalyzeExec {
	m := NewMetricsSet()
	return &AnalyzeExec{
		verbose: verbose,
		input:   input,
		schema: arrow.NewSchema([]arrow.Field{
			{Name: "plan_type", Type: arrow.BinaryTypes.String},
			{Name: "plan", Type: arrow.BinaryTypes.String},
		}, nil),
		metrics:  m,
		baseline: NewBaselineMetrics(m),
	}
}

func (e *AnalyzeExec) Name() string               { return "AnalyzeExec" }
func (e *AnalyzeExec) Schema() *arrow.Schema      { return e.schema }
func (e *AnalyzeExec) Properties() PlanProperties { return SinglePartitionProperties() }
func (e *AnalyzeExec) Children() []ExecutionPlan  { return []ExecutionPlan{e.input} }
func (e *AnalyzeExec) Metrics() *MetricsSet       { return e.metrics }

// Input returns the analyzed plan.
func (e *AnalyzeExec) Input() ExecutionPlan { return e.input }

func (e *AnalyzeExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("%w: AnalyzeExec takes exactly one child, got %d", ErrExecution, len(children))
	}
	return NewAnalyzeExec(e.verbose, children[0]), nil
}

func (e *AnalyzeExec) DisplayAs(DisplayFormat) string {
	return fmt.Sprintf("AnalyzeExec verbose=%t", e.verbose)
}

// Execute returns a stream that drains every input partition on its first Read.
func (e *AnalyzeExec) Execute(partition int, task *execution.TaskContext) (RecordBatchStream, error) {
	if partition != 0 {
		return nil, fmt.Errorf("%w: AnalyzeExec has a single partition, got partition %d", ErrExecution, partition)
	}
	return &analyzeStream{exec: e, task: task}, nil
}

type analyzeStream struct {
	exec *AnalyzeExec
	task *execution.TaskContext
	done bool
}

func (s *analyzeStream) Schema() *arrow.Schema { return s.exec.schema }

func (s *analyzeStream) Read(ctx context.Context) (arrow.Record, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true

	e := s.exec
	start := time.Now()
	for p := 0; p < e.input.Properties().Partitions; p++ {
		stream, err := e.input.Execute(p, s.task)
		if err != nil {
			return nil, err
		}
		rows, err := Drain(ctx, stream)
		e.baseline.RecordOutput(rows)
		if err != nil {
			return nil, err
		}
	}
	e.baseline.RecordElapsed(time.Since(start))

	return e.describe(), nil
}

func (s *analyzeStream) Close() error { return nil }

func (e *AnalyzeExec) describe() arrow.Record {
	b := array.NewRecordBuilder(memory.DefaultAllocator, e.schema)
	defer b.Release()

	planType := b.Field(0).(*array.StringBuilder)
	plan := b.Field(1).(*array.StringBuilder)

	planType.Append("Plan with Metrics")
	plan.Append(Indent(e.input, true))

	if e.verbose {
		rows, _ := e.metrics.OutputRows()
		planType.Append("Output Rows")
		plan.Append(fmt.Sprintf("%d", rows))

		elapsed, _ := e.metrics.FindTime(MetricElapsedCompute)
		planType.Append("Duration")
		plan.Append(elapsed.Value().String())
	}

	return b.NewRecord()
}
