package histgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/executor"
	"github.com/hupe1980/histgo/hist"
)

var (
	// ErrIncompatibleMerge is returned when partial results cannot be folded
	// into one accumulator, typically because a processor returned values of
	// diverging kinds.
	ErrIncompatibleMerge = errors.New("incompatible merge")

	// ErrCancelled is returned when a run is cancelled through its context.
	// It wraps the context's error; errors.Is(err, context.Canceled) and
	// errors.Is(err, ErrCancelled) both hold.
	ErrCancelled = executor.ErrCancelled
)

// TaskError describes the failure of one task. Re-exported so callers can
// errors.As against it without importing the executor package.
type TaskError = executor.TaskError

// ErrIncompatibleBinning indicates that two binnings cannot be combined:
// mismatched axes on merge, or a rebinning that does not align with the
// existing edges or labels.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrIncompatibleBinning struct {
	Axis   string
	Reason string
	cause  error
}

func (e *ErrIncompatibleBinning) Error() string {
	if e.Axis == "" {
		return fmt.Sprintf("incompatible binning: %s", e.Reason)
	}
	return fmt.Sprintf("incompatible binning on axis %q: %s", e.Axis, e.Reason)
}

func (e *ErrIncompatibleBinning) Unwrap() error { return e.cause }

// ErrUnknownLabel indicates a categorical lookup miss on a fixed axis.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrUnknownLabel struct {
	Axis  string
	Label string
	cause error
}

func (e *ErrUnknownLabel) Error() string {
	return fmt.Sprintf("unknown label %q on axis %q", e.Label, e.Axis)
}

func (e *ErrUnknownLabel) Unwrap() error { return e.cause }

// ErrShapeMismatch indicates fill inputs that do not line up: a column kind
// incompatible with its axis, jagged columns with diverging offsets, or a
// weight slice of the wrong length.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrShapeMismatch struct {
	Column string
	Detail string
	cause  error
}

func (e *ErrShapeMismatch) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("shape mismatch: %s", e.Detail)
	}
	return fmt.Sprintf("shape mismatch on column %q: %s", e.Column, e.Detail)
}

func (e *ErrShapeMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Binning and label normalization.
	var ib *axis.ErrIncompatibleBinning
	if errors.As(err, &ib) {
		return &ErrIncompatibleBinning{Axis: ib.Axis, Reason: ib.Reason, cause: err}
	}
	var ul *axis.ErrUnknownLabel
	if errors.As(err, &ul) {
		return &ErrUnknownLabel{Axis: ul.Axis, Label: ul.Label, cause: err}
	}

	// Fill input normalization.
	var sm *hist.ErrShapeMismatch
	if errors.As(err, &sm) {
		return &ErrShapeMismatch{Column: sm.Column, Detail: sm.Detail, cause: err}
	}

	// Merge unification.
	var km *accum.ErrKindMismatch
	if errors.As(err, &km) {
		return fmt.Errorf("%w: %w", ErrIncompatibleMerge, err)
	}

	return err
}
