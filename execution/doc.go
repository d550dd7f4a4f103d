// Package execution holds the runtime state a plan executes against.
//
// A RuntimeEnv bundles the memory pool and the spill DiskManager. A
// SessionConfig carries per-session tuning (target partitions, batch size).
// A TaskContext is the per-call view over both and is what plan nodes
// receive in Execute.
//
// # Memory pools
//
//   - UnboundedMemoryPool: tracks usage, never refuses.
//   - GreedyMemoryPool: first come, first served up to a fixed limit.
//   - FairSpillPool: spillable consumers share whatever the unspillable
//     consumers leave over, in equal parts.
//
// Consumers register with a pool and get a MemoryReservation:
//
//	r := execution.NewMemoryConsumer("collect").WithCanSpill(true).Register(pool)
//	defer r.Free()
//
//	if err := r.TryGrow(n); errors.Is(err, execution.ErrResourcesExhausted) {
//	    // spill and retry
//	}
//
// # Spilling
//
// Spill files are Arrow IPC streams, compressed with zstd (default) or lz4,
// written through an optional IO rate limiter.
package execution
