package executor

import (
	"fmt"
	"sync/atomic"
)

// State identifies the phase of one Execute call.
type State int32

const (
	// StateIdle is the state before any task has been submitted.
	StateIdle State = iota
	// StateDispatching covers task submission.
	StateDispatching
	// StateReducing covers draining and merging outstanding results after
	// the last task was submitted.
	StateReducing
	// StateDone is the terminal state of a completed run.
	StateDone
	// StateFailed is the terminal state after a fail-fast abort or a
	// run-level error.
	StateFailed
	// StateCancelled is the terminal state of a cancelled run.
	StateCancelled
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateReducing:
		return "reducing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// stateHolder publishes the current phase of one Execute call. Transitions
// come from the dispatch goroutine as well as the merging caller.
type stateHolder struct {
	v      atomic.Int32
	notify func(State)
}

func newStateHolder(notify func(State)) *stateHolder {
	return &stateHolder{notify: notify}
}

// set transitions to s unconditionally, used for terminal states.
func (h *stateHolder) set(s State) {
	if State(h.v.Swap(int32(s))) == s {
		return
	}

	if h.notify != nil {
		h.notify(s)
	}
}

// advance transitions from one specific state to another. The dispatcher
// uses it so that entering StateReducing never overwrites a terminal state
// set by the merging goroutine.
func (h *stateHolder) advance(from, to State) {
	if !h.v.CompareAndSwap(int32(from), int32(to)) {
		return
	}

	if h.notify != nil {
		h.notify(to)
	}
}

func (h *stateHolder) get() State {
	return State(h.v.Load())
}
