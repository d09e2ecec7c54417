package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/histgo/accum"
)

// Sequential runs tasks one at a time, in task order, on the calling
// goroutine. It is the correctness baseline the concurrent executors are
// compared against, and the right choice for runs small enough that fan-out
// costs more than it saves.
type Sequential struct {
	opts Options
}

var _ Executor = (*Sequential)(nil)

// NewSequential creates a sequential executor.
func NewSequential(optFns ...func(*Options)) *Sequential {
	o := Options{}
	for _, fn := range optFns {
		fn(&o)
	}

	return &Sequential{opts: o}
}

// Execute implements Executor.
func (s *Sequential) Execute(ctx context.Context, tasks []Task, fn Func, identity accum.Value) (*Result, error) {
	state := newStateHolder(s.opts.OnStateChange)
	start := time.Now()

	res := &Result{Value: identity, Stats: RunStats{Tasks: len(tasks)}}

	state.set(StateDispatching)

	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return finishCancelled(res, state, s.opts, start, err)
		}

		v, err := fn(ctx, t.Chunk)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				// fn propagated the run's cancellation.
				return finishCancelled(res, state, s.opts, start, cerr)
			}

			res.Stats.Failed++
			te := newTaskError(t, err)
			res.Failures = append(res.Failures, te)
			if s.opts.BestEffort {
				continue
			}

			return finishFailed(res, state, start, te)
		}

		if err := res.Value.Merge(v); err != nil {
			return finishFailed(res, state, start, fmt.Errorf("merge task %d: %w", t.Index, err))
		}
		res.Stats.Completed++
	}

	state.advance(StateDispatching, StateReducing)
	return finishDone(res, state, start)
}
