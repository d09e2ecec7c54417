package hist

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/internal/stride"
)

// SumOver returns a histogram without the named axes, with their cells
// summed into the surviving ones. The flow policy decides what happens to
// the sentinel cells of collapsed numeric axes; surviving axes keep theirs.
// Collapsed categorical axes have no sentinels and never make a cell count
// as flow, so a purely categorical collapse keeps everything under
// FlowExclude and nothing under FlowOnly.
func (h *Histogram) SumOver(flow Flow, names ...string) (*Histogram, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no axes to sum over")
	}

	drop := make(map[int]bool, len(names))

	var numeric []int

	for _, name := range names {
		d, ok := h.byName[name]
		if !ok {
			return nil, fmt.Errorf("histogram has no axis %q", name)
		}

		if drop[d] {
			return nil, fmt.Errorf("axis %q listed twice", name)
		}

		drop[d] = true

		if h.axes[d].Kind() == axis.KindNumeric {
			numeric = append(numeric, d)
		}
	}

	keep := func(idx []int) bool {
		if flow == FlowInclude {
			return true
		}

		hit := false

		for _, d := range numeric {
			if idx[d] == axis.Underflow || idx[d] == h.shape.Extent(d)-1 {
				hit = true
				break
			}
		}

		if flow == FlowOnly {
			return hit
		}

		return !hit
	}

	return h.sumOut(drop, keep), nil
}

// Integrate returns a histogram without the named numeric axis, summing the
// bins between lo and hi. Both bounds must coincide exactly with bin edges;
// lo of -Inf extends the range into the underflow cell and hi of +Inf into
// the overflow cell.
func (h *Histogram) Integrate(name string, lo, hi float64) (*Histogram, error) {
	d, ok := h.byName[name]
	if !ok {
		return nil, fmt.Errorf("histogram has no axis %q", name)
	}

	num, ok := h.axes[d].(axis.Numeric)
	if !ok {
		return nil, fmt.Errorf("axis %q is not numeric", name)
	}

	edges := num.Edges()
	first, last := 1, num.Extent()-2

	if math.IsInf(lo, -1) {
		first = axis.Underflow
	} else {
		i := findEdge(edges, lo)
		if i < 0 || i == len(edges)-1 {
			return nil, &axis.ErrIncompatibleBinning{Axis: name, Reason: fmt.Sprintf("lower bound %v does not start a bin", lo)}
		}

		first = i + 1
	}

	if math.IsInf(hi, 1) {
		last = num.Extent() - 1
	} else {
		i := findEdge(edges, hi)
		if i <= 0 {
			return nil, &axis.ErrIncompatibleBinning{Axis: name, Reason: fmt.Sprintf("upper bound %v does not end a bin", hi)}
		}

		last = i
	}

	if first > last {
		return nil, &axis.ErrIncompatibleBinning{Axis: name, Reason: "empty integration range"}
	}

	drop := map[int]bool{d: true}

	return h.sumOut(drop, func(idx []int) bool {
		return idx[d] >= first && idx[d] <= last
	}), nil
}

// IntegrateLabels returns a histogram without the named categorical axis,
// summing the cells of the given labels. Unknown labels fail with
// axis.ErrUnknownLabel; integration never grows an axis.
func (h *Histogram) IntegrateLabels(name string, labels ...string) (*Histogram, error) {
	d, ok := h.byName[name]
	if !ok {
		return nil, fmt.Errorf("histogram has no axis %q", name)
	}

	cat, ok := h.axes[d].(*axis.Category)
	if !ok {
		return nil, fmt.Errorf("axis %q is not categorical", name)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to integrate")
	}

	include := make(map[int]bool, len(labels))

	for _, label := range labels {
		i, ok := cat.Lookup(label)
		if !ok {
			return nil, &axis.ErrUnknownLabel{Axis: name, Label: label}
		}

		include[i] = true
	}

	drop := map[int]bool{d: true}

	return h.sumOut(drop, func(idx []int) bool {
		return include[idx[d]]
	}), nil
}

// Rebin returns a histogram with the named axis replaced by the rebinning's
// target axis, folding cells through its index table. The rebinning must
// have been derived from an axis equal to the current one.
func (h *Histogram) Rebin(name string, rb *axis.Rebinning) (*Histogram, error) {
	if rb == nil {
		return nil, fmt.Errorf("rebinning is nil")
	}

	d, ok := h.byName[name]
	if !ok {
		return nil, fmt.Errorf("histogram has no axis %q", name)
	}

	if !axis.Equal(h.axes[d], rb.From) {
		return nil, &axis.ErrIncompatibleBinning{Axis: name, Reason: "rebinning was derived from a different axis"}
	}

	if len(rb.Table) != h.shape.Extent(d) {
		return nil, &axis.ErrIncompatibleBinning{Axis: name, Reason: "rebinning table does not cover the axis"}
	}

	axes := h.Axes()
	axes[d] = rb.To.Clone()

	out, err := New(axes...)
	if err != nil {
		return nil, err
	}

	for _, t := range rb.Table {
		if t >= out.shape.Extent(d) {
			return nil, &axis.ErrIncompatibleBinning{Axis: name, Reason: "rebinning table maps outside the target axis"}
		}
	}

	if h.sumw2 != nil {
		out.sumw2 = make([]float64, out.shape.Size())
	}

	maps := make([][]int, len(h.axes))
	maps[d] = rb.Table

	stride.Remap(out.sumw, out.shape, h.sumw, h.shape, maps)

	if out.sumw2 != nil {
		stride.Remap(out.sumw2, out.shape, h.sumw2, h.shape, maps)
	}

	return out, nil
}

// sumOut removes the dims in drop, accumulating every admitted source cell
// into its surviving index tuple.
func (h *Histogram) sumOut(drop map[int]bool, keep func(idx []int) bool) *Histogram {
	kept := make([]axis.Axis, 0, len(h.axes)-len(drop))

	for d, ax := range h.axes {
		if !drop[d] {
			kept = append(kept, ax)
		}
	}

	out, err := New(kept...)
	if err != nil {
		// Kept axes come from a validated histogram.
		panic(err)
	}

	if h.sumw2 != nil {
		out.sumw2 = make([]float64, out.shape.Size())
	}

	if h.shape.Size() == 0 {
		return out
	}

	idx := make([]int, len(h.axes))
	dst := make([]int, len(kept))

	for off := 0; ; off++ {
		if keep(idx) {
			k := 0

			for d := range h.axes {
				if !drop[d] {
					dst[k] = idx[d]
					k++
				}
			}

			o := out.shape.Offset(dst)

			out.sumw[o] += h.sumw[off]
			if out.sumw2 != nil {
				out.sumw2[o] += h.sumw2[off]
			}
		}

		if !h.shape.Next(idx) {
			break
		}
	}

	return out
}

func findEdge(edges []float64, v float64) int {
	i := sort.SearchFloat64s(edges, v)
	if i < len(edges) && edges[i] == v {
		return i
	}

	return -1
}
