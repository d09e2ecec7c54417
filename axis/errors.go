package axis

import "fmt"

// ErrUnknownLabel indicates a categorical lookup miss under a no-growth
// policy.
type ErrUnknownLabel struct {
	Axis  string
	Label string
}

func (e *ErrUnknownLabel) Error() string {
	return fmt.Sprintf("unknown label %q on axis %q", e.Label, e.Axis)
}

// ErrIncompatibleBinning indicates that two binnings cannot be combined:
// mismatched axes on merge, or a rebinning that does not align with the
// existing edges or labels.
type ErrIncompatibleBinning struct {
	Axis   string
	Reason string
}

func (e *ErrIncompatibleBinning) Error() string {
	if e.Axis == "" {
		return fmt.Sprintf("incompatible binning: %s", e.Reason)
	}

	return fmt.Sprintf("incompatible binning on axis %q: %s", e.Axis, e.Reason)
}
