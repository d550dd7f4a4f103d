package physical

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hupe1980/vecflow/execution"
)

// OneShotExec is a leaf node created from an existing stream.
//
// It can be executed once, which hands out the stream. After that the node
// is exhausted, but its schema and display stay valid. The stream must be
// finite, otherwise the reported properties are wrong.
type OneShotExec struct {
	slot *SingleUse[RecordBatchStream]

	// schema is cached so Schema and display work after the stream is gone.
	schema *arrow.Schema
}

// NewOneShotExec creates a node that will return stream.
func NewOneShotExec(stream RecordBatchStream) *OneShotExec {
	return &OneShotExec{
		slot:   NewSingleUse(stream),
		schema: stream.Schema(),
	}
}

// OneShotExecFromRecord creates a node whose stream yields rec once.
// The node takes ownership of rec.
func OneShotExecFromRecord(rec arrow.Record) *OneShotExec {
	return NewOneShotExec(NewRecordStream(rec.Schema(), rec))
}

func (e *OneShotExec) Name() string               { return "OneShotExec" }
func (e *OneShotExec) Schema() *arrow.Schema      { return e.schema }
func (e *OneShotExec) Properties() PlanProperties { return SinglePartitionProperties() }
func (e *OneShotExec) Children() []ExecutionPlan  { return nil }
func (e *OneShotExec) Metrics() *MetricsSet       { return nil }

// Exhausted reports whether the stream has been handed out.
func (e *OneShotExec) Exhausted() bool { return e.slot.Exhausted() }

// WithNewChildren returns e for an empty child list. OneShotExec is a leaf
// and rejects any children.
func (e *OneShotExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) == 0 {
		return e, nil
	}
	return nil, fmt.Errorf("%w: OneShotExec is a leaf and cannot take %d children", ErrExecution, len(children))
}

// Execute returns the wrapped stream. Only partition 0 exists.
func (e *OneShotExec) Execute(partition int, _ *execution.TaskContext) (RecordBatchStream, error) {
	if partition != 0 {
		return nil, fmt.Errorf("%w: OneShotExec has a single partition, got partition %d", ErrExecution, partition)
	}
	stream, err := e.slot.Take()
	if err != nil {
		return nil, fmt.Errorf("OneShotExec has already been executed: %w", err)
	}
	return stream, nil
}

// Close releases the stream if it was never executed.
func (e *OneShotExec) Close() error {
	stream, err := e.slot.Take()
	if err != nil {
		return nil
	}
	return stream.Close()
}

func (e *OneShotExec) DisplayAs(DisplayFormat) string {
	exhausted := ""
	if e.slot.Exhausted() {
		exhausted = "EXHAUSTED "
	}
	return fmt.Sprintf("OneShotStream: %scolumns=[%s]", exhausted, fieldNames(e.schema))
}

func (e *OneShotExec) String() string {
	return fmt.Sprintf("OneShotExec{exhausted: %t, schema: %s}", e.slot.Exhausted(), e.schema)
}
