package physical

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hupe1980/vecflow/execution"
)

// PartitionStream produces the stream of one partition of a streaming table.
type PartitionStream interface {
	Schema() *arrow.Schema
	Execute(task *execution.TaskContext) (RecordBatchStream, error)
}

// OneShotPartitionStream is a PartitionStream that can be executed once.
type OneShotPartitionStream struct {
	slot   *SingleUse[RecordBatchStream]
	schema *arrow.Schema
}

// NewOneShotPartitionStream wraps stream.
func NewOneShotPartitionStream(stream RecordBatchStream) *OneShotPartitionStream {
	return &OneShotPartitionStream{
		slot:   NewSingleUse(stream),
		schema: stream.Schema(),
	}
}

func (p *OneShotPartitionStream) Schema() *arrow.Schema { return p.schema }

// Execute hands out the stream, or fails with ErrExhausted.
func (p *OneShotPartitionStream) Execute(*execution.TaskContext) (RecordBatchStream, error) {
	stream, err := p.slot.Take()
	if err != nil {
		return nil, fmt.Errorf("attempt to consume a one shot stream multiple times: %w", err)
	}
	return stream, nil
}

// Exhausted reports whether the stream has been handed out.
func (p *OneShotPartitionStream) Exhausted() bool { return p.slot.Exhausted() }

func (p *OneShotPartitionStream) String() string {
	return fmt.Sprintf("OneShotPartitionStream{exhausted: %t, schema: %s}", p.slot.Exhausted(), p.schema)
}

// StreamingTableExec scans a set of partition streams, one output
// partition per stream, optionally projecting columns.
type StreamingTableExec struct {
	partitions []PartitionStream
	projection []int
	schema     *arrow.Schema
	metrics    *MetricsSet
	baseline   *BaselineMetrics
}

// NewStreamingTableExec creates a scan over partitions. Every partition
// must have schema. A nil projection keeps all columns.
func NewStreamingTableExec(schema *arrow.Schema, partitions []PartitionStream, projection []int) (*StreamingTableExec, error) {
	for i, p := range partitions {
		if !p.Schema().Equal(schema) {
			return nil, fmt.Errorf("%w: partition %d schema %s does not match table schema %s", ErrExecution, i, p.Schema(), schema)
		}
	}

	projected := schema
	if projection != nil {
		fields := make([]arrow.Field, len(projection))
		for i, idx := range projection {
			if idx < 0 || idx >= schema.NumFields() {
				return nil, fmt.Errorf("%w: projection index %d out of range for %d columns", ErrExecution, idx, schema.NumFields())
			}
			fields[i] = schema.Field(idx)
		}
		md := schema.Metadata()
		projected = arrow.NewSchema(fields, &md)
	}

	m := NewMetricsSet()
	return &StreamingTableExec{
		partitions: partitions,
		projection: projection,
		schema:     projected,
		metrics:    m,
		baseline:   NewBaselineMetrics(m),
	}, nil
}

func (e *StreamingTableExec) Name() string              { return "StreamingTableExec" }
func (e *StreamingTableExec) Schema() *arrow.Schema     { return e.schema }
func (e *StreamingTableExec) Children() []ExecutionPlan { return nil }
func (e *StreamingTableExec) Metrics() *MetricsSet      { return e.metrics }

func (e *StreamingTableExec) Properties() PlanProperties {
	return PlanProperties{
		Partitions:   len(e.partitions),
		EmissionType: EmissionIncremental,
		Boundedness:  Bounded,
	}
}

func (e *StreamingTableExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) == 0 {
		return e, nil
	}
	return nil, fmt.Errorf("%w: StreamingTableExec is a leaf", ErrExecution)
}

func (e *StreamingTableExec) Execute(partition int, task *execution.TaskContext) (RecordBatchStream, error) {
	if partition < 0 || partition >= len(e.partitions) {
		return nil, fmt.Errorf("%w: partition %d out of range [0, %d)", ErrExecution, partition, len(e.partitions))
	}

	stream, err := e.partitions[partition].Execute(task)
	if err != nil {
		return nil, err
	}
	if e.projection != nil {
		stream = &projectedStream{RecordBatchStream: stream, schema: e.schema, projection: e.projection}
	}
	return e.baseline.ObserveStream(stream), nil
}

func (e *StreamingTableExec) DisplayAs(DisplayFormat) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "StreamingTableExec: partition_sizes=%d", len(e.partitions))
	if e.projection != nil {
		fmt.Fprintf(&sb, ", projection=[%s]", fieldNames(e.schema))
	}
	return sb.String()
}

type projectedStream struct {
	RecordBatchStream
	schema     *arrow.Schema
	projection []int
}

func (s *projectedStream) Schema() *arrow.Schema { return s.schema }

func (s *projectedStream) Read(ctx context.Context) (arrow.Record, error) {
	rec, err := s.RecordBatchStream.Read(ctx)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	cols := make([]arrow.Array, len(s.projection))
	for i, idx := range s.projection {
		cols[i] = rec.Column(idx)
	}
	return array.NewRecord(s.schema, cols, rec.NumRows()), nil
}
