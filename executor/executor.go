package executor

import (
	"context"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/columns"
)

// Task pairs a chunk of the event source with its position in the run.
// Tasks are independent: no task observes another's intermediate state.
type Task struct {
	// Index is the task's position in the run, dense from 0.
	Index int

	// Chunk is the slice of the source the task processes.
	Chunk columns.Chunk
}

// Func processes one chunk into a partial accumulator.
//
// Executors call it from multiple goroutines, so it must not touch shared
// mutable state; the returned value is handed off to the fold and must not
// be retained.
type Func func(ctx context.Context, chunk columns.Chunk) (accum.Value, error)

// Executor runs a set of independent tasks and folds their partial values
// into one result.
//
// The identity value is the fold target: partials are merged into it, so
// callers must hand in a value they do not keep using elsewhere. The fold
// runs in exactly one goroutine; a failed task contributes nothing to it,
// and the folded value is independent of completion order.
type Executor interface {
	Execute(ctx context.Context, tasks []Task, fn Func, identity accum.Value) (*Result, error)
}

// Processor is the user-side contract for per-chunk work. Accumulator
// supplies the identity the fold starts from; Process folds one batch into
// a fresh partial value.
//
// Process must be safe to call concurrently with itself on distinct batches
// and must not retain the batch.
type Processor interface {
	// Accumulator returns the identity value partial results merge into.
	Accumulator() accum.Value

	// Process folds one batch into a new partial value.
	Process(ctx context.Context, batch *columns.Batch) (accum.Value, error)
}

// Options configure failure handling and observation, shared by all
// executor variants.
type Options struct {
	// BestEffort records task failures in the result and keeps merging
	// instead of aborting the run on the first one.
	BestEffort bool

	// PartialOnCancel keeps the value merged before cancellation in the
	// result. The default discards it and returns a fresh identity.
	PartialOnCancel bool

	// OnStateChange observes run state transitions. It is called from the
	// goroutine performing the transition and must not block.
	OnStateChange func(State)
}
