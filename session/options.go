package session

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/hupe1980/vecflow/internal/conv"
	"github.com/hupe1980/vecflow/planmetrics"
)

const (
	// DefaultMemPoolSize is the memory pool size used when neither the
	// options nor the environment set one.
	DefaultMemPoolSize uint64 = 100 * 1024 * 1024

	// EnvMemPoolSize overrides the default memory pool size.
	EnvMemPoolSize = "VECFLOW_MEM_POOL_SIZE"

	// EnvBypassSpilling disables spilling when present.
	EnvBypassSpilling = "VECFLOW_BYPASS_SPILLING"
)

// MemPoolKind selects the memory pool of a spill-capable session.
type MemPoolKind int

const (
	// MemPoolFair caps each spillable consumer at an equal share of the pool.
	MemPoolFair MemPoolKind = iota
	// MemPoolGreedy serves reservations first come, first served.
	MemPoolGreedy
)

// String returns the pool kind name.
func (k MemPoolKind) String() string {
	switch k {
	case MemPoolFair:
		return "fair"
	case MemPoolGreedy:
		return "greedy"
	default:
		return "unknown"
	}
}

// ExecutionOptions control how a plan is executed.
//
// Zero values mean "not set".
type ExecutionOptions struct {
	// UseSpilling requests a spill-capable runtime.
	UseSpilling bool

	// MemPoolSize is the memory pool size in bytes, used when spilling.
	MemPoolSize uint64

	// MemPool selects the pool built when spilling. Only MemPoolFair
	// sessions are cached.
	MemPool MemPoolKind

	// BatchSize overrides the session batch size for one execution.
	BatchSize int

	// TargetPartitions overrides the session target partition count.
	TargetPartitions int

	// StatsCallback receives the execution summary once the output stream finishes.
	StatsCallback planmetrics.StatsCallback

	// Logger receives configuration notes and the execution summary event.
	Logger *slog.Logger

	// Pool supplies the cached sessions. If nil, DefaultPool is used.
	Pool *Pool
}

// PoolOrDefault returns the configured pool or DefaultPool.
func (o *ExecutionOptions) PoolOrDefault() *Pool {
	if o == nil || o.Pool == nil {
		return DefaultPool
	}
	return o.Pool
}

// LoggerOrDefault returns the configured logger or slog.Default().
func (o *ExecutionOptions) LoggerOrDefault() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ResolvedMemPoolSize returns MemPoolSize, else the value of
// VECFLOW_MEM_POOL_SIZE, else DefaultMemPoolSize. A malformed or
// out-of-range value is logged and replaced by the default.
func (o *ExecutionOptions) ResolvedMemPoolSize() uint64 {
	if o != nil && o.MemPoolSize > 0 {
		if _, err := conv.Uint64ToInt64(o.MemPoolSize); err != nil {
			o.LoggerOrDefault().Warn("Memory pool size out of range, using default",
				"value", o.MemPoolSize, "default", DefaultMemPoolSize, "error", err)
			return DefaultMemPoolSize
		}
		return o.MemPoolSize
	}

	s, ok := os.LookupEnv(EnvMemPoolSize)
	if !ok {
		return DefaultMemPoolSize
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err == nil {
		_, err = conv.Uint64ToInt64(v)
	}
	if err != nil {
		o.LoggerOrDefault().Warn("Failed to parse memory pool size, using default",
			"env", EnvMemPoolSize, "value", s, "default", DefaultMemPoolSize, "error", err)
		return DefaultMemPoolSize
	}
	return v
}

// ResolvedUseSpilling reports whether spilling was requested and not
// bypassed through VECFLOW_BYPASS_SPILLING.
func (o *ExecutionOptions) ResolvedUseSpilling() bool {
	if o == nil || !o.UseSpilling {
		return false
	}
	if _, ok := os.LookupEnv(EnvBypassSpilling); ok {
		o.LoggerOrDefault().Info("Bypassing spilling", "env", EnvBypassSpilling)
		return false
	}
	return true
}

// LogValue implements slog.LogValuer.
func (o *ExecutionOptions) LogValue() slog.Value {
	if o == nil {
		return slog.GroupValue()
	}
	return slog.GroupValue(
		slog.Bool("use_spilling", o.UseSpilling),
		slog.Uint64("mem_pool_size", o.MemPoolSize),
		slog.String("mem_pool", o.MemPool.String()),
		slog.Int("batch_size", o.BatchSize),
		slog.Int("target_partitions", o.TargetPartitions),
		slog.Bool("stats_callback", o.StatsCallback != nil),
	)
}
