// Package runner executes physical plans with a pooled session and reports
// the execution summary once the output has been consumed.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/vecflow/physical"
	"github.com/hupe1980/vecflow/planmetrics"
	"github.com/hupe1980/vecflow/session"
)

// ErrIO classifies failures of AnalyzePlan.
var ErrIO = errors.New("io error")

// ExecutePlan executes partition 0 of plan and returns its stream.
//
// The plan must declare exactly one partition; anything else is a wiring
// bug and panics. The execution summary is logged, and passed to
// opts.StatsCallback, exactly once: when the stream reaches io.EOF or when
// it is closed, whichever happens first.
func ExecutePlan(plan physical.ExecutionPlan, opts *session.ExecutionOptions) (physical.RecordBatchStream, error) {
	logger := opts.LoggerOrDefault()
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		logger.Debug("Executing plan", "plan", physical.Indent(plan, false), "options", opts)
	}

	if n := plan.Properties().Partitions; n != 1 {
		panic(fmt.Sprintf("runner: plan %s must have exactly one partition, got %d", plan.Name(), n))
	}

	sc := opts.PoolOrDefault().Get(opts)
	stream, err := plan.Execute(0, session.GetTaskContext(sc, opts))
	if err != nil {
		return nil, err
	}

	var callback planmetrics.StatsCallback
	if opts != nil {
		callback = opts.StatsCallback
	}

	return physical.Finally(stream, func() {
		planmetrics.Report(context.Background(), logger, plan, callback)
	}), nil
}

// AnalyzePlan executes plan to completion and returns it rendered as an
// indented tree annotated with the metrics recorded during the run.
func AnalyzePlan(ctx context.Context, plan physical.ExecutionPlan, opts *session.ExecutionOptions) (string, error) {
	analyze := physical.NewAnalyzeExec(true, plan)

	sc := opts.PoolOrDefault().Get(opts)
	stream, err := analyze.Execute(0, session.GetTaskContext(sc, opts))
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute analyze plan: %w", ErrIO, err)
	}

	if _, err := physical.Drain(ctx, stream); err != nil {
		return "", fmt.Errorf("%w: failed to execute analyze plan: %w", ErrIO, err)
	}

	return physical.Indent(analyze, true), nil
}
