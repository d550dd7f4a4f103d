package execution

import "runtime"

// DefaultBatchSize is the default number of rows per batch.
const DefaultBatchSize = 8192

// SessionConfig is the per-session execution configuration.
//
// It is a value type; the With* methods return modified copies so that a
// shared session is never mutated by a per-call override.
type SessionConfig struct {
	// TargetPartitions is the number of partitions plans should aim for.
	TargetPartitions int

	// BatchSize is the preferred number of rows per batch.
	BatchSize int
}

// NewSessionConfig returns the default configuration.
func NewSessionConfig() SessionConfig {
	return SessionConfig{
		TargetPartitions: runtime.NumCPU(),
		BatchSize:        DefaultBatchSize,
	}
}

// WithTargetPartitions returns a copy with the target partition count set.
// Values <= 0 are ignored.
func (c SessionConfig) WithTargetPartitions(n int) SessionConfig {
	if n > 0 {
		c.TargetPartitions = n
	}
	return c
}

// WithBatchSize returns a copy with the batch size set.
// Values <= 0 are ignored.
func (c SessionConfig) WithBatchSize(n int) SessionConfig {
	if n > 0 {
		c.BatchSize = n
	}
	return c
}
