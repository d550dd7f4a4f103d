package execution

import (
	"fmt"
	"sync"

	"github.com/hupe1980/vecflow/internal/resource"
)

// MemoryPool accounts for memory held by the consumers of one runtime.
type MemoryPool interface {
	// Register is called when a consumer creates its reservation.
	Register(consumer *MemoryConsumer)

	// Unregister is called when a reservation is freed.
	Unregister(consumer *MemoryConsumer)

	// TryGrow attempts to grow r by additional bytes.
	TryGrow(r *MemoryReservation, additional int64) error

	// Shrink returns shrink bytes of r to the pool.
	Shrink(r *MemoryReservation, shrink int64)

	// Reserved returns the number of bytes currently reserved.
	Reserved() int64

	// Limit returns the pool size in bytes, 0 if unbounded.
	Limit() int64
}

// MemoryConsumer identifies a memory user of a pool.
type MemoryConsumer struct {
	name     string
	canSpill bool
}

// NewMemoryConsumer creates a consumer that cannot spill.
func NewMemoryConsumer(name string) *MemoryConsumer {
	return &MemoryConsumer{name: name}
}

// WithCanSpill marks whether the consumer can release memory by spilling.
func (c *MemoryConsumer) WithCanSpill(canSpill bool) *MemoryConsumer {
	c.canSpill = canSpill
	return c
}

// Name returns the consumer name.
func (c *MemoryConsumer) Name() string { return c.name }

// CanSpill reports whether the consumer can spill.
func (c *MemoryConsumer) CanSpill() bool { return c.canSpill }

// Register registers the consumer with pool and returns an empty reservation.
func (c *MemoryConsumer) Register(pool MemoryPool) *MemoryReservation {
	pool.Register(c)
	return &MemoryReservation{consumer: c, pool: pool}
}

// MemoryReservation is the memory held by one consumer.
//
// A reservation is not safe for concurrent use.
type MemoryReservation struct {
	consumer *MemoryConsumer
	pool     MemoryPool
	size     int64
	freed    bool
}

// Consumer returns the owning consumer.
func (r *MemoryReservation) Consumer() *MemoryConsumer { return r.consumer }

// Size returns the reserved bytes.
func (r *MemoryReservation) Size() int64 { return r.size }

// TryGrow grows the reservation, or returns an error wrapping ErrResourcesExhausted.
func (r *MemoryReservation) TryGrow(additional int64) error {
	if additional <= 0 {
		return nil
	}
	if err := r.pool.TryGrow(r, additional); err != nil {
		return err
	}
	r.size += additional
	return nil
}

// Shrink releases part of the reservation. Shrinking more than the
// reservation holds releases everything.
func (r *MemoryReservation) Shrink(n int64) {
	n = min(n, r.size)
	if n <= 0 {
		return
	}
	r.pool.Shrink(r, n)
	r.size -= n
}

// Free releases the whole reservation, unregisters the consumer and returns
// the number of bytes released. Calling Free twice is a no-op.
func (r *MemoryReservation) Free() int64 {
	if r.freed {
		return 0
	}
	size := r.size
	r.Shrink(size)
	r.pool.Unregister(r.consumer)
	r.freed = true
	return size
}

// UnboundedMemoryPool tracks usage but never refuses a reservation.
type UnboundedMemoryPool struct {
	rc *resource.Controller
}

// NewUnboundedMemoryPool creates an unbounded pool.
func NewUnboundedMemoryPool() *UnboundedMemoryPool {
	return &UnboundedMemoryPool{rc: resource.NewController(resource.Config{})}
}

func (p *UnboundedMemoryPool) Register(*MemoryConsumer)   {}
func (p *UnboundedMemoryPool) Unregister(*MemoryConsumer) {}

func (p *UnboundedMemoryPool) TryGrow(_ *MemoryReservation, additional int64) error {
	return p.rc.TryAcquireMemory(additional)
}

func (p *UnboundedMemoryPool) Shrink(_ *MemoryReservation, shrink int64) {
	p.rc.ReleaseMemory(shrink)
}

func (p *UnboundedMemoryPool) Reserved() int64 { return p.rc.MemoryUsage() }
func (p *UnboundedMemoryPool) Limit() int64    { return 0 }

// GreedyMemoryPool grants reservations first come, first served until the limit is reached.
type GreedyMemoryPool struct {
	rc *resource.Controller
}

// NewGreedyMemoryPool creates a pool capped at size bytes.
func NewGreedyMemoryPool(size int64) *GreedyMemoryPool {
	return &GreedyMemoryPool{rc: resource.NewController(resource.Config{MemoryLimitBytes: size})}
}

func (p *GreedyMemoryPool) Register(*MemoryConsumer)   {}
func (p *GreedyMemoryPool) Unregister(*MemoryConsumer) {}

func (p *GreedyMemoryPool) TryGrow(r *MemoryReservation, additional int64) error {
	if err := p.rc.TryAcquireMemory(additional); err != nil {
		return &AllocationError{
			Consumer:  r.consumer.name,
			Requested: additional,
			Allocated: r.size,
			Available: p.rc.MemoryLimit() - p.rc.MemoryUsage(),
		}
	}
	return nil
}

func (p *GreedyMemoryPool) Shrink(_ *MemoryReservation, shrink int64) {
	p.rc.ReleaseMemory(shrink)
}

func (p *GreedyMemoryPool) Reserved() int64 { return p.rc.MemoryUsage() }
func (p *GreedyMemoryPool) Limit() int64    { return p.rc.MemoryLimit() }

// FairSpillPool divides the memory left over by unspillable consumers
// equally between the registered spillable consumers.
//
// Unspillable consumers are served first come, first served. A spillable
// consumer may hold at most (size - unspillable) / numSpillable bytes.
type FairSpillPool struct {
	size int64
	rc   *resource.Controller

	mu          sync.Mutex
	numSpill    int
	spillable   int64
	unspillable int64
}

// NewFairSpillPool creates a fair pool of size bytes.
func NewFairSpillPool(size int64) *FairSpillPool {
	return &FairSpillPool{
		size: size,
		rc:   resource.NewController(resource.Config{MemoryLimitBytes: size}),
	}
}

func (p *FairSpillPool) Register(c *MemoryConsumer) {
	if !c.canSpill {
		return
	}
	p.mu.Lock()
	p.numSpill++
	p.mu.Unlock()
}

func (p *FairSpillPool) Unregister(c *MemoryConsumer) {
	if !c.canSpill {
		return
	}
	p.mu.Lock()
	p.numSpill--
	p.mu.Unlock()
}

func (p *FairSpillPool) TryGrow(r *MemoryReservation, additional int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var available int64
	if r.consumer.canSpill {
		spillAvailable := max(p.size-p.unspillable, 0)
		available = spillAvailable/int64(max(p.numSpill, 1)) - r.size
	} else {
		available = p.size - p.unspillable - p.spillable
	}

	if additional > available {
		return &AllocationError{
			Consumer:  r.consumer.name,
			Requested: additional,
			Allocated: r.size,
			Available: max(available, 0),
		}
	}

	if err := p.rc.TryAcquireMemory(additional); err != nil {
		return fmt.Errorf("%w: %w", ErrResourcesExhausted, err)
	}

	if r.consumer.canSpill {
		p.spillable += additional
	} else {
		p.unspillable += additional
	}
	return nil
}

func (p *FairSpillPool) Shrink(r *MemoryReservation, shrink int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.consumer.canSpill {
		p.spillable -= shrink
	} else {
		p.unspillable -= shrink
	}
	p.rc.ReleaseMemory(shrink)
}

func (p *FairSpillPool) Reserved() int64 { return p.rc.MemoryUsage() }
func (p *FairSpillPool) Limit() int64    { return p.size }
