// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow
// when converting between signed and unsigned sizes, e.g. a memory pool
// size parsed from the environment.
package conv
