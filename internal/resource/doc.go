// Package resource implements the per-runtime memory budget and spill IO limiter.
//
//	┌──────────────────────────────────────────────┐
//	│                 Controller                   │
//	├──────────────────────┬───────────────────────┤
//	│  Memory Limit        │  IO Rate Limiter      │
//	│  (fail-fast)         │  (token bucket)       │
//	├──────────────────────┼───────────────────────┤
//	│  TryAcquireMemory    │  AcquireIO            │
//	│  ReleaseMemory       │  RateLimitedWriter    │
//	│  MemoryUsage         │                       │
//	└──────────────────────┴───────────────────────┘
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. TryAcquireMemory never blocks; it returns
// ErrMemoryLimitExceeded and the memory pool on top decides whether the
// consumer should spill.
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
