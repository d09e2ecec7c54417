// Package executor maps a per-chunk function over independent chunks of an
// event source and folds the partial accumulators into one result.
//
// All executor variants share one contract: tasks are independent, merging
// happens in exactly one goroutine, and the folded value is the same for
// any completion order.
//
//   - Sequential runs tasks in order on the caller; it is the baseline the
//     concurrent variants are compared against.
//   - Pool fans tasks out to a fixed goroutine pool and merges results on
//     the caller as they complete.
//   - Distributed ships self-describing task frames to a Remote and merges
//     the streamed-back results, fetching spilled ones from a result store
//     within configured resource bounds.
//   - Loopback is an in-process Remote over a Worker, for tests and
//     single-machine runs of the distributed path.
//
// Failure handling is fail-fast by default: the first task error aborts the
// run and surfaces as a *TaskError. Best-effort runs record failures in the
// Result and keep folding. Cancellation surfaces ErrCancelled and either
// discards partials or, on request, returns what was merged so far.
package executor
