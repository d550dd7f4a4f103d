package vecflow

import (
	"github.com/hupe1980/vecflow/planmetrics"
	"github.com/hupe1980/vecflow/session"
)

type options struct {
	useSpilling      bool
	memPoolSize      uint64
	memPool          session.MemPoolKind
	pool             *session.Pool
	batchSize        int
	targetPartitions int
	statsCallback    planmetrics.StatsCallback
	statsCollector   StatsCollector
	logger           *Logger
}

// Option configures ExecutePlan, AnalyzePlan and ReadOneShot.
type Option func(*options)

// WithSpilling requests a spill-capable session: a fair memory pool of the
// configured size and an OS temp dir spill manager. Setting
// VECFLOW_BYPASS_SPILLING in the environment overrides this.
func WithSpilling() Option {
	return func(o *options) {
		o.useSpilling = true
	}
}

// WithMemPoolSize sets the memory pool size in bytes used when spilling.
// If 0, VECFLOW_MEM_POOL_SIZE or the 100 MiB default applies.
//
// A non-default size always builds a fresh session instead of a pooled one.
func WithMemPoolSize(bytes uint64) Option {
	return func(o *options) {
		o.memPoolSize = bytes
	}
}

// WithGreedyMemoryPool makes spill-capable sessions use a first come, first
// served memory pool instead of the fair one. Such sessions are never
// pooled.
func WithGreedyMemoryPool() Option {
	return func(o *options) {
		o.memPool = session.MemPoolGreedy
	}
}

// WithPool sets the pool that caches default sessions.
//
// If nil is passed, session.DefaultPool is used.
func WithPool(p *session.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithBatchSize overrides the batch size for one execution.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithTargetPartitions sets the target partition count of the session.
// Any value > 0 builds a fresh session instead of a pooled one.
func WithTargetPartitions(n int) Option {
	return func(o *options) {
		o.targetPartitions = n
	}
}

// WithStatsCallback registers fn to receive the execution summary.
func WithStatsCallback(fn planmetrics.StatsCallback) Option {
	return func(o *options) {
		o.statsCallback = fn
	}
}

// WithStatsCollector sets a collector for execution and analyze statistics.
//
// If nil is passed, NoopStatsCollector is used.
func WithStatsCollector(c StatsCollector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopStatsCollector{}
		}
		o.statsCollector = c
	}
}

// WithLogger sets the logger for configuration notes and execution events.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		statsCollector: NoopStatsCollector{},
		logger:         NewLogger(nil),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// executionOptions converts o for the session and runner layers. The
// stats callback feeds the collector first, then the user callback.
func (o *options) executionOptions() *session.ExecutionOptions {
	collector, callback := o.statsCollector, o.statsCallback

	return &session.ExecutionOptions{
		UseSpilling:      o.useSpilling,
		MemPoolSize:      o.memPoolSize,
		MemPool:          o.memPool,
		BatchSize:        o.batchSize,
		TargetPartitions: o.targetPartitions,
		Logger:           o.logger.Logger,
		Pool:             o.pool,
		StatsCallback: func(c *planmetrics.ExecutionSummaryCounts) {
			collector.RecordExecution(c)
			if callback != nil {
				callback(c)
			}
		},
	}
}
