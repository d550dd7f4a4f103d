// Package session builds and caches the execution context of a query.
//
// A SessionContext bundles a SessionConfig and a RuntimeEnv (memory pool
// and spill manager) and is the entry point for reading data as
// DataFrames. Building one is not free, so options that resolve to the
// defaults share one of two cached contexts, keyed by whether spilling is
// enabled:
//
//	ctx := session.GetSessionContext(&session.ExecutionOptions{UseSpilling: true})
//	task := session.GetTaskContext(ctx, opts)
//
// Any other combination (a custom pool size or target partition count)
// gets a fresh context owned by the caller. Tests that must not share
// process state use their own Pool:
//
//	pool := session.NewPool()
//	ctx := pool.Get(opts)
//
// # Environment
//
//   - VECFLOW_MEM_POOL_SIZE: default memory pool size in bytes. A malformed
//     value is logged and ignored.
//   - VECFLOW_BYPASS_SPILLING: when set (to anything), spilling is disabled
//     regardless of the options.
package session
