package physical

import "errors"

var (
	// ErrExhausted is returned when a single-use stream or node is consumed a second time.
	ErrExhausted = errors.New("single-use stream already consumed")

	// ErrExecution is returned when a plan node cannot be executed as requested.
	ErrExecution = errors.New("execution error")
)
