package session

import (
	"sync"

	"github.com/hupe1980/vecflow/execution"
)

// NewSessionContext builds a fresh context for opts.
//
// The target partition count is applied when set. When spilling resolves
// to true the runtime gets an OS temp dir spill manager and a memory pool of
// the requested kind capped at the resolved pool size.
func NewSessionContext(opts *ExecutionOptions) *SessionContext {
	logger := opts.LoggerOrDefault()

	cfg := execution.NewSessionConfig()
	if opts != nil {
		cfg = cfg.WithTargetPartitions(opts.TargetPartitions)
	}

	builder := execution.NewRuntimeEnvBuilder().WithLogger(logger)
	if opts.ResolvedUseSpilling() {
		size := int64(opts.ResolvedMemPoolSize())

		var pool execution.MemoryPool = execution.NewFairSpillPool(size)
		if opts.MemPool == MemPoolGreedy {
			pool = execution.NewGreedyMemoryPool(size)
		}
		builder = builder.
			WithDiskManager(execution.NewDiskManagerConfig()).
			WithMemoryPool(pool)
	}

	rt, err := builder.Build()
	if err != nil {
		// Only a Directories disk manager without directories fails.
		panic(err)
	}
	return NewSessionContextWithConfig(cfg, rt, logger)
}

// Pool caches the two default session contexts.
//
// The cached contexts are built on first use and shared afterwards; treat
// them as read-only.
type Pool struct {
	plain    func() *SessionContext
	spilling func() *SessionContext
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		plain: sync.OnceValue(func() *SessionContext {
			return NewSessionContext(&ExecutionOptions{})
		}),
		spilling: sync.OnceValue(func() *SessionContext {
			return NewSessionContext(&ExecutionOptions{UseSpilling: true})
		}),
	}
}

// DefaultPool is the process-wide pool used when ExecutionOptions.Pool is nil.
var DefaultPool = NewPool()

// Get returns a cached context when opts resolve to the default pool size,
// the fair pool kind and no explicit target partition count, otherwise a
// fresh one.
func (p *Pool) Get(opts *ExecutionOptions) *SessionContext {
	targetPartitions, kind := 0, MemPoolFair
	if opts != nil {
		targetPartitions, kind = opts.TargetPartitions, opts.MemPool
	}

	if opts.ResolvedMemPoolSize() == DefaultMemPoolSize && targetPartitions == 0 && kind == MemPoolFair {
		if opts.ResolvedUseSpilling() {
			return p.spilling()
		}
		return p.plain()
	}
	return NewSessionContext(opts)
}

// GetSessionContext returns a context from the pool of opts, DefaultPool
// when none is set.
func GetSessionContext(opts *ExecutionOptions) *SessionContext {
	return opts.PoolOrDefault().Get(opts)
}

// GetTaskContext derives a task context from s, applying the batch size
// override of opts to a copy of the session configuration.
func GetTaskContext(s *SessionContext, opts *ExecutionOptions) *execution.TaskContext {
	cfg := s.Config()
	if opts != nil {
		cfg = cfg.WithBatchSize(opts.BatchSize)
	}
	return execution.NewTaskContext(s.ID(), cfg, s.Runtime())
}
