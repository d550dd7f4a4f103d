package vecflow

import (
	"context"
	"time"

	"github.com/hupe1980/vecflow/physical"
	"github.com/hupe1980/vecflow/quantization"
	"github.com/hupe1980/vecflow/runner"
	"github.com/hupe1980/vecflow/session"
)

// ExecutePlan executes a single-partition plan and returns its output
// stream. The caller must read the stream to io.EOF or Close it; the
// execution summary is reported at that point.
//
// ExecutePlan panics if the plan declares more or fewer than one partition.
func ExecutePlan(plan physical.ExecutionPlan, opts ...Option) (physical.RecordBatchStream, error) {
	o := newOptions(opts)
	logger := o.logger.WithPlan(plan.Name())

	stream, err := runner.ExecutePlan(plan, o.executionOptions())
	logger.LogExecution(context.Background(), physical.Describe(plan, physical.DisplayDefault), err)
	if err != nil {
		return nil, translateError(err)
	}
	return stream, nil
}

// AnalyzePlan executes plan to completion and returns the plan tree
// annotated with the metrics of the run.
func AnalyzePlan(ctx context.Context, plan physical.ExecutionPlan, opts ...Option) (string, error) {
	o := newOptions(opts)

	start := time.Now()
	out, err := runner.AnalyzePlan(ctx, plan, o.executionOptions())
	elapsed := time.Since(start)

	o.statsCollector.RecordAnalyze(elapsed, err)
	o.logger.LogAnalyze(ctx, plan.Name(), elapsed, err)
	if err != nil {
		return "", translateError(err)
	}
	return out, nil
}

// ReadOneShot returns a DataFrame over stream from the pooled session
// matching opts. The DataFrame can be executed once; a second execution
// fails with an error matching physical.ErrExhausted.
func ReadOneShot(stream physical.RecordBatchStream, opts ...Option) (*session.DataFrame, error) {
	o := newOptions(opts)

	sc := session.GetSessionContext(o.executionOptions())
	logger := o.logger.WithSessionID(sc.ID())

	df, err := sc.ReadOneShot(stream)
	if err != nil {
		logger.Error("read one-shot stream failed", "error", err)
		return nil, translateError(err)
	}
	logger.Debug("read one-shot stream", "columns", stream.Schema().NumFields())
	return df, nil
}

// DivideToSubvectors splits row-major vectors of the given dimension into
// numSubVectors buffers, the j-th holding the j-th slice of every vector.
//
// A numSubVectors that does not divide dimension returns an
// *ErrInvalidSubvectorCount.
func DivideToSubvectors[T quantization.Element](values []T, dimension, numSubVectors int) ([][]T, error) {
	out, err := quantization.DivideToSubvectors(values, dimension, numSubVectors)
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}
