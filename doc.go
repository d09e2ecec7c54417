// Package histgo provides mergeable multi-axis histograms and a map-reduce
// execution harness for columnar event data.
//
// A run maps a user Processor over independent chunks of an event source and
// folds the partial accumulators into one result. Because every accumulator
// merge is associative and commutative, the folded result is independent of
// chunk order and completion order, which is what makes arbitrary
// parallelism safe.
//
// # Quick Start
//
// Define axes and a processor, then run it:
//
//	spectrum := hist.MustNew(
//	    axis.MustRegular("mass", 120, 0, 120),
//	    axis.NewCategory("dataset"),
//	)
//
//	r := histgo.Pool(8).ChunkSize(100_000).MustBuild()
//	defer r.Close()
//
//	value, _, err := r.Run(ctx, source, proc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := value.(*hist.Histogram)
//
// # Executors
//
// Three builders cover the execution strategies:
//
//	histgo.Sequential()               // one task at a time, deterministic order
//	histgo.Pool(workers)              // fixed in-process worker pool
//	histgo.Cluster(remote, procName)  // tasks shipped to remote workers
//
// Sequential is the correctness baseline: the concurrent executors produce
// the same result for the same input, so disagreements point at a processor
// that is not pure. Cluster runs need the processor registered by name
// (executor.RegisterProcessor) in the worker binaries; executor.Loopback
// provides an in-process stand-in for a real cluster.
//
// # Failure Handling
//
// A run fails fast by default: the first task error aborts it. Best-effort
// runs record per-task failures and keep folding what succeeded:
//
//	r := histgo.Pool(8).BestEffort(true).MustBuild()
//	value, res, _ := r.Run(ctx, source, proc)
//	for _, f := range res.Failures {
//	    log.Printf("chunk %s failed: %v", f.Chunk, f)
//	}
//
// Cancellation through the context stops dispatch and discards partials
// unless PartialOnCancel keeps them.
//
// # Accumulators
//
// Histograms are one accumulator among several (package accum): scalar sums,
// counts, sets, ID sets and string-keyed maps of accumulators all satisfy
// the same merge contract and can be returned by processors, nested maps
// included. Package hist builds the N-dimensional weighted histogram on top:
// numeric axes with underflow/overflow sentinels, growable categorical axes,
// projection, integration, rebinning and scaling.
//
// # Configuration
//
// Runs can be configured from YAML (LoadConfig) or programmatically through
// the builders and options. Structured logging (Logger, slog-backed) and
// metrics (MetricsCollector) are off by default and opt-in per Runner.
package histgo
