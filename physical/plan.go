package physical

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hupe1980/vecflow/execution"
)

// EmissionType describes when a node emits its output.
type EmissionType int

const (
	// EmissionIncremental emits batches as soon as they are produced.
	EmissionIncremental EmissionType = iota
	// EmissionFinal emits only after all input has been consumed.
	EmissionFinal
	// EmissionBoth emits part incrementally and part at the end.
	EmissionBoth
)

// Boundedness describes whether a node's output is finite.
type Boundedness int

const (
	Bounded Boundedness = iota
	Unbounded
)

// PlanProperties are the static execution properties of a node.
type PlanProperties struct {
	// Partitions is the number of output partitions.
	Partitions   int
	EmissionType EmissionType
	Boundedness  Boundedness
}

// SinglePartitionProperties are the properties of a bounded, incremental,
// single-partition node.
func SinglePartitionProperties() PlanProperties {
	return PlanProperties{
		Partitions:   1,
		EmissionType: EmissionIncremental,
		Boundedness:  Bounded,
	}
}

// ExecutionPlan is a node of a physical plan tree.
type ExecutionPlan interface {
	// Name is a short, static name of the node kind.
	Name() string

	// Schema is the schema of every batch the node produces.
	Schema() *arrow.Schema

	// Properties are the node's execution properties.
	Properties() PlanProperties

	// Children returns the node's inputs.
	Children() []ExecutionPlan

	// WithNewChildren returns a copy of the node with its inputs replaced.
	WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error)

	// Execute starts one output partition.
	Execute(partition int, task *execution.TaskContext) (RecordBatchStream, error)

	// Metrics returns the node's metrics, or nil if it records none.
	Metrics() *MetricsSet
}
