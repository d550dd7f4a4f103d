package execution

import (
	"log/slog"
	"sync"
)

// RuntimeEnv is the resource management side of a session.
type RuntimeEnv struct {
	MemoryPool  MemoryPool
	DiskManager *DiskManager
}

var defaultRuntimeEnv = sync.OnceValue(func() *RuntimeEnv {
	rt, err := NewRuntimeEnvBuilder().Build()
	if err != nil {
		panic(err) // disabled disk manager and unbounded pool cannot fail
	}
	return rt
})

// DefaultRuntimeEnv returns a shared runtime with an unbounded pool and spilling disabled.
func DefaultRuntimeEnv() *RuntimeEnv { return defaultRuntimeEnv() }

// SpillEnabled reports whether the runtime can spill to disk.
func (r *RuntimeEnv) SpillEnabled() bool { return r.DiskManager.Enabled() }

// RuntimeEnvBuilder builds a RuntimeEnv.
type RuntimeEnvBuilder struct {
	pool    MemoryPool
	diskCfg DiskManagerConfig
	logger  *slog.Logger
}

// NewRuntimeEnvBuilder returns a builder for an unbounded pool without spilling.
func NewRuntimeEnvBuilder() *RuntimeEnvBuilder {
	return &RuntimeEnvBuilder{diskCfg: DiskManagerConfig{Mode: DiskManagerDisabled}}
}

// WithMemoryPool sets the memory pool.
func (b *RuntimeEnvBuilder) WithMemoryPool(pool MemoryPool) *RuntimeEnvBuilder {
	b.pool = pool
	return b
}

// WithDiskManager sets the spill configuration.
func (b *RuntimeEnvBuilder) WithDiskManager(cfg DiskManagerConfig) *RuntimeEnvBuilder {
	b.diskCfg = cfg
	return b
}

// WithLogger sets the logger used by the disk manager.
func (b *RuntimeEnvBuilder) WithLogger(l *slog.Logger) *RuntimeEnvBuilder {
	b.logger = l
	return b
}

// Build creates the runtime.
func (b *RuntimeEnvBuilder) Build() (*RuntimeEnv, error) {
	pool := b.pool
	if pool == nil {
		pool = NewUnboundedMemoryPool()
	}

	dm, err := NewDiskManager(b.diskCfg, b.logger)
	if err != nil {
		return nil, err
	}
	dm.lowSpaceBytes = pool.Limit()

	return &RuntimeEnv{
		MemoryPool:  pool,
		DiskManager: dm,
	}, nil
}
