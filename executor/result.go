package executor

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/columns"
)

// ErrCancelled reports a run stopped by context cancellation. The context's
// own error is wrapped and reachable via errors.Is.
var ErrCancelled = errors.New("run cancelled")

// TaskError records the failure of a single task. The task's underlying
// error is available via errors.Unwrap.
type TaskError struct {
	// Index is the failed task's index.
	Index int

	// Chunk is the chunk the task was processing.
	Chunk columns.Chunk

	cause error
}

func newTaskError(task Task, err error) *TaskError {
	return &TaskError{Index: task.Index, Chunk: task.Chunk, cause: err}
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.Index, e.Chunk, e.cause)
}

func (e *TaskError) Unwrap() error { return e.cause }

// RunStats summarizes one Execute call.
type RunStats struct {
	// Tasks is the number of tasks handed to Execute.
	Tasks int

	// Completed is the number of tasks merged into the result, resumed
	// ones included.
	Completed int

	// Failed is the number of tasks that returned an error.
	Failed int

	// Resumed is the number of tasks whose result came from the run log
	// instead of a fresh dispatch.
	Resumed int

	// Spilled is the number of results fetched from the result store
	// rather than received inline.
	Spilled int

	// BytesIn counts encoded result bytes received or fetched.
	BytesIn int64

	// Duration is the wall time of the Execute call.
	Duration time.Duration
}

// Result is the outcome of one Execute call.
type Result struct {
	// Value is the folded accumulator. After a fail-fast abort it holds
	// the partials merged before the failure; after cancellation it is a
	// fresh identity unless the run kept partials.
	Value accum.Value

	// Failures lists failed tasks in completion order.
	Failures []*TaskError

	// Stats summarizes the run.
	Stats RunStats

	// State is the terminal state of the run.
	State State
}

// Err combines all task failures into one error. It is nil when every task
// succeeded, which makes it the single check needed after a best-effort
// run.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}

	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// finishDone seals a result whose tasks all ran to completion. Recorded
// best-effort failures stay visible through Failures and Err.
func finishDone(res *Result, state *stateHolder, start time.Time) (*Result, error) {
	res.State = StateDone
	state.set(StateDone)
	res.Stats.Duration = time.Since(start)
	return res, nil
}

// finishFailed seals a result after a fail-fast abort or a run-level error.
func finishFailed(res *Result, state *stateHolder, start time.Time, err error) (*Result, error) {
	res.State = StateFailed
	state.set(StateFailed)
	res.Stats.Duration = time.Since(start)
	return res, err
}

// finishCancelled seals a cancelled run, keeping or discarding partials per
// the run's options.
func finishCancelled(res *Result, state *stateHolder, opts Options, start time.Time, cause error) (*Result, error) {
	if !opts.PartialOnCancel {
		res.Value = res.Value.Identity()
	}
	res.State = StateCancelled
	state.set(StateCancelled)
	res.Stats.Duration = time.Since(start)
	return res, fmt.Errorf("%w: %w", ErrCancelled, cause)
}
