package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/histgo/accum"
)

// ErrExecutorClosed is returned by Execute after Close.
var ErrExecutorClosed = errors.New("executor closed")

// Pool runs tasks on a fixed pool of goroutines. The pool outlives a single
// Execute call, so repeated runs do not pay goroutine spawn cost.
//
// Partial results are merged by the calling goroutine as tasks complete.
// Merge order follows completion order; the folded result does not depend
// on it.
type Pool struct {
	numWorkers int
	workCh     chan func() // Channel carries work closures
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool
	submitMu   sync.RWMutex

	opts Options
}

var _ Executor = (*Pool)(nil)

// NewPool creates a pool executor with numWorkers goroutines. A value of 0
// or less means GOMAXPROCS.
func NewPool(numWorkers int, optFns ...func(*Options)) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	o := Options{}
	for _, fn := range optFns {
		fn(&o)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workCh:     make(chan func(), numWorkers*2), // 2x buffer for pipelining
		stopCh:     make(chan struct{}),
		opts:       o,
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

// worker processes work closures from the work channel.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			// Drain remaining work before exiting
			for {
				select {
				case work, ok := <-p.workCh:
					if !ok {
						return
					}
					work()
				default:
					return
				}
			}
		case work, ok := <-p.workCh:
			if !ok {
				return
			}
			work()
		}
	}
}

// submit enqueues one work closure, blocking for backpressure once the
// pool's buffer is full.
func (p *Pool) submit(ctx context.Context, work func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrExecutorClosed
	}

	select {
	case p.workCh <- work:
		return nil
	case <-p.stopCh:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts down the pool. Workers finish the work already queued;
// Execute calls after Close fail with ErrExecutorClosed.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.submitMu.Lock()
	close(p.stopCh)
	close(p.workCh)
	p.submitMu.Unlock()

	p.wg.Wait()
}

// poolOutcome carries one task's partial value from its worker to the
// merging caller.
type poolOutcome struct {
	task  Task
	value accum.Value
	err   error
}

// Execute implements Executor.
func (p *Pool) Execute(ctx context.Context, tasks []Task, fn Func, identity accum.Value) (*Result, error) {
	if p.closed.Load() {
		return nil, ErrExecutorClosed
	}

	state := newStateHolder(p.opts.OnStateChange)
	start := time.Now()

	res := &Result{Value: identity, Stats: RunStats{Tasks: len(tasks)}}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan poolOutcome, p.numWorkers)

	state.set(StateDispatching)

	var inFlight sync.WaitGroup
	go func() {
		defer func() {
			inFlight.Wait()
			close(out)
		}()

		for _, t := range tasks {
			t := t
			inFlight.Add(1)
			work := func() {
				defer inFlight.Done()

				v, err := fn(runCtx, t.Chunk)
				select {
				case out <- poolOutcome{task: t, value: v, err: err}:
				case <-runCtx.Done():
				}
			}

			if err := p.submit(runCtx, work); err != nil {
				inFlight.Done()
				return
			}
		}

		state.advance(StateDispatching, StateReducing)
	}()

	completed := bitset.New(uint(len(tasks)))

	for {
		select {
		case <-ctx.Done():
			cancel()
			drainPool(out)
			return finishCancelled(res, state, p.opts, start, ctx.Err())

		case oc, ok := <-out:
			if !ok {
				res.Stats.Completed = int(completed.Count())
				return finishDone(res, state, start)
			}

			if oc.err != nil {
				if ctx.Err() != nil {
					// fn propagated the run's cancellation.
					cancel()
					drainPool(out)
					return finishCancelled(res, state, p.opts, start, ctx.Err())
				}

				res.Stats.Failed++
				te := newTaskError(oc.task, oc.err)
				res.Failures = append(res.Failures, te)
				if p.opts.BestEffort {
					continue
				}

				cancel()
				drainPool(out)
				return finishFailed(res, state, start, te)
			}

			if err := res.Value.Merge(oc.value); err != nil {
				cancel()
				drainPool(out)
				return finishFailed(res, state, start, fmt.Errorf("merge task %d: %w", oc.task.Index, err))
			}

			completed.Set(uint(oc.task.Index))
			res.Stats.Completed = int(completed.Count())
		}
	}
}

// drainPool discards outstanding outcomes so workers and the dispatcher can
// exit after an abort.
func drainPool(out <-chan poolOutcome) {
	for range out {
	}
}
