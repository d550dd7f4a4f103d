// Package physical defines the pull-based execution plan abstraction and the
// plan nodes this module contributes to it.
//
// An ExecutionPlan is a node of a tree. Executing a partition of a node
// returns a RecordBatchStream; reading the root stream pulls batches up
// from the leaves:
//
//	AnalyzeExec                 analyze.Read()
//	     │                           │
//	StreamingTableExec   ──>    projected.Read()
//	                                 │
//	                         OneShotPartitionStream
//
// Streams end with io.EOF. Every arrow.Record returned by Read is owned by
// the caller, who must Release it. Closing a stream early is how a caller
// cancels.
//
// # Single-use nodes
//
// OneShotExec lets a stream that already exists take part in a plan. It can
// be executed exactly once; later attempts fail with ErrExhausted while
// Schema and display keep working:
//
//	node := physical.NewOneShotExec(stream)
//	s, _ := node.Execute(0, task)   // the original stream
//	_, err := node.Execute(0, task) // errors.Is(err, physical.ErrExhausted)
//
// The take-once slot is the generic SingleUse, shared with
// OneShotPartitionStream.
package physical
