package physical

import "sync"

type slotState uint8

const (
	slotAvailable slotState = iota
	slotConsumed
)

// SingleUse holds a value that can be taken exactly once.
//
// The slot moves from available to consumed on the first successful Take;
// every later Take returns ErrExhausted. It is safe for concurrent use.
type SingleUse[T any] struct {
	mu    sync.Mutex
	state slotState
	value T
}

// NewSingleUse creates an available slot holding v.
func NewSingleUse[T any](v T) *SingleUse[T] {
	return &SingleUse[T]{value: v}
}

// Take hands the value to the caller and marks the slot consumed.
func (s *SingleUse[T]) Take() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.state == slotConsumed {
		return zero, ErrExhausted
	}

	v := s.value
	s.value = zero
	s.state = slotConsumed
	return v, nil
}

// Exhausted reports whether the value has been taken.
func (s *SingleUse[T]) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == slotConsumed
}
