package axis

import (
	"errors"
	"fmt"
)

// Rebinning maps every dense cell of an existing axis onto a cell of a
// coarser replacement axis. Histograms apply it with Rebin.
type Rebinning struct {
	// From is a snapshot of the axis the rebinning was derived from.
	From Axis
	// To is the replacement axis.
	To Axis
	// Table maps each dense index of From to its dense index on To.
	Table []int
}

// NumericCoarsening derives a rebinning that folds a numeric axis into
// coarser bins. The new edges must be a subset of the old edges and span the
// same range; otherwise the call fails with *ErrIncompatibleBinning. Sentinel
// cells map onto the new sentinels.
func NumericCoarsening(old Numeric, newEdges ...float64) (*Rebinning, error) {
	to, err := NewVariable(old.Name(), newEdges...)
	if err != nil {
		return nil, err
	}

	oldEdges := old.Edges()
	if newEdges[0] != oldEdges[0] || newEdges[len(newEdges)-1] != oldEdges[len(oldEdges)-1] {
		return nil, &ErrIncompatibleBinning{Axis: old.Name(), Reason: "new edges must span the same range"}
	}

	oi := 0
	for _, e := range newEdges {
		for oi < len(oldEdges) && oldEdges[oi] < e {
			oi++
		}
		if oi >= len(oldEdges) || oldEdges[oi] != e {
			return nil, &ErrIncompatibleBinning{Axis: old.Name(), Reason: fmt.Sprintf("edge %v does not align with existing edges", e)}
		}
	}

	table := make([]int, old.Extent())
	table[Underflow] = Underflow
	table[old.Extent()-1] = to.Extent() - 1

	j := 0
	for i := 0; i < len(oldEdges)-1; i++ {
		for j+1 < len(newEdges) && newEdges[j+1] <= oldEdges[i] {
			j++
		}
		table[i+1] = j + 1
	}

	return &Rebinning{From: old.Clone(), To: to, Table: table}, nil
}

// LabelGrouping derives a rebinning that folds a categorical axis by mapping
// every old label onto a group label. Every old label must appear as a key in
// groups; otherwise the call fails with *ErrIncompatibleBinning. Group labels
// are ordered by first appearance over the old labels.
func LabelGrouping(old *Category, groups map[string]string) (*Rebinning, error) {
	return labelGrouping(old, groups, "", false)
}

// LabelGroupingWithRemainder is like LabelGrouping but folds old labels
// without a group onto the remainder label instead of failing.
func LabelGroupingWithRemainder(old *Category, groups map[string]string, remainder string) (*Rebinning, error) {
	if remainder == "" {
		return nil, errors.New("remainder label must not be empty")
	}
	return labelGrouping(old, groups, remainder, true)
}

func labelGrouping(old *Category, groups map[string]string, remainder string, haveRemainder bool) (*Rebinning, error) {
	to := NewCategory(old.Name())
	table := make([]int, old.Extent())

	for i, label := range old.labels {
		target, ok := groups[label]
		if !ok {
			if !haveRemainder {
				return nil, &ErrIncompatibleBinning{Axis: old.name, Reason: fmt.Sprintf("label %q has no group", label)}
			}
			target = remainder
		}

		j, err := to.Index(target)
		if err != nil {
			return nil, err
		}
		table[i] = j
	}

	to.growable = old.growable

	return &Rebinning{From: old.Clone(), To: to, Table: table}, nil
}
