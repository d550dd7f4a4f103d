// Package vecflow runs columnar vector query plans.
//
// It executes physical plans built from Apache Arrow record batch streams,
// draws sessions from a shared pool (with optional disk spilling under a
// bounded memory pool), summarizes the I/O and index counters of every run
// and provides the product quantization sub-vector layout used by vector
// indices.
//
// # Quick Start
//
//	stream, _ := vecflow.ExecutePlan(plan,
//	    vecflow.WithSpilling(),
//	    vecflow.WithBatchSize(4096),
//	)
//	defer stream.Close()
//	for {
//	    rec, err := stream.Read(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    // ...
//	    rec.Release()
//	}
//
// The execution summary is logged, and passed to the stats callback, once
// the stream has been read to the end or closed.
//
// # Analyze
//
//	text, _ := vecflow.AnalyzePlan(ctx, plan)
//	fmt.Print(text)
//
// # One-shot streams
//
// ReadOneShot exposes an externally produced stream as a DataFrame that
// can be executed exactly once:
//
//	df, _ := vecflow.ReadOneShot(stream)
//	n, _ := df.Count(ctx)
//
// # Environment
//
//   - VECFLOW_MEM_POOL_SIZE: memory pool size in bytes when spilling (default 100 MiB)
//   - VECFLOW_BYPASS_SPILLING: disables spilling even when requested
//
// # Packages
//
//   - physical: plan and stream interfaces, one-shot and streaming scans, analyze
//   - execution: memory pools, disk manager, spill files, task contexts
//   - session: session pool, tables and DataFrames
//   - planmetrics: execution summaries and Prometheus export
//   - runner: plan execution entry points
//   - quantization: PQ sub-vector layout and product quantizer
package vecflow
