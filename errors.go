package vecflow

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecflow/execution"
	"github.com/hupe1980/vecflow/physical"
	"github.com/hupe1980/vecflow/quantization"
	"github.com/hupe1980/vecflow/runner"
)

var (
	// ErrExhausted is returned when a one-shot stream is executed twice.
	ErrExhausted = errors.New("stream already consumed")

	// ErrInvalidArgument is returned for invalid vector or plan arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIO is returned when analyzing a plan fails.
	ErrIO = errors.New("io error")

	// ErrSpillDisabled is returned when a spill is needed but spilling is off.
	ErrSpillDisabled = errors.New("spilling is disabled")
)

// ErrResourceLimit indicates that a memory reservation was refused.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrResourceLimit struct {
	Consumer  string
	Requested int64
	Available int64
	cause     error
}

func (e *ErrResourceLimit) Error() string {
	return fmt.Sprintf("resource limit: %s requested %d bytes, %d available", e.Consumer, e.Requested, e.Available)
}

func (e *ErrResourceLimit) Unwrap() error { return e.cause }

// ErrInvalidSubvectorCount indicates a sub-vector count that does not
// divide the vector dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidSubvectorCount struct {
	Dimension     int
	NumSubVectors int
	cause         error
}

func (e *ErrInvalidSubvectorCount) Error() string {
	return fmt.Sprintf("invalid sub-vector count: %d does not divide dimension %d", e.NumSubVectors, e.Dimension)
}

func (e *ErrInvalidSubvectorCount) Unwrap() error { return e.cause }

// Is reports ErrInvalidArgument as a match.
func (e *ErrInvalidSubvectorCount) Is(target error) bool { return target == ErrInvalidArgument }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, physical.ErrExhausted) {
		return fmt.Errorf("%w: %w", ErrExhausted, err)
	}
	if errors.Is(err, runner.ErrIO) {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if errors.Is(err, execution.ErrSpillDisabled) {
		return fmt.Errorf("%w: %w", ErrSpillDisabled, err)
	}

	var ae *execution.AllocationError
	if errors.As(err, &ae) {
		return &ErrResourceLimit{Consumer: ae.Consumer, Requested: ae.Requested, Available: ae.Available, cause: err}
	}

	var sc *quantization.InvalidSubvectorCountError
	if errors.As(err, &sc) {
		return &ErrInvalidSubvectorCount{Dimension: sc.Dimension, NumSubVectors: sc.NumSubVectors, cause: err}
	}
	if errors.Is(err, quantization.ErrInvalidInput) || errors.Is(err, physical.ErrExecution) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
