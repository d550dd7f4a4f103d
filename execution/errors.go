package execution

import (
	"errors"
	"fmt"
)

var (
	// ErrResourcesExhausted is returned when a memory pool refuses a reservation.
	ErrResourcesExhausted = errors.New("resources exhausted")

	// ErrSpillDisabled is returned when a spill file is requested from a disabled DiskManager.
	ErrSpillDisabled = errors.New("spilling is disabled")
)

// AllocationError describes a refused reservation.
//
// It matches ErrResourcesExhausted via errors.Is.
type AllocationError struct {
	Consumer  string
	Requested int64
	Allocated int64
	Available int64
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("failed to allocate additional %d bytes for %s with %d bytes already allocated - maximum available is %d",
		e.Requested, e.Consumer, e.Allocated, e.Available)
}

func (e *AllocationError) Unwrap() error { return ErrResourcesExhausted }
