// Package testutil provides testing utilities for vecflow.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(100, 32)  // uniform [0, 1)
//	flat := testutil.Flatten(vecs)       // row-major values
//
// # Arrow Fixtures
//
//	rec := testutil.Int64Record(mem, "id", 1, 2, 3)
//	fsl := testutil.VectorArray(mem, vecs)
//
// # Plan Fixtures
//
//	leaf := testutil.NewMockExec("scan").WithCount(physical.MetricIOPS, 2)
//	root := testutil.NewMockExec("root", leaf)
package testutil
