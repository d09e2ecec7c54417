package hist

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/internal/stride"
)

// Flow selects how the numeric sentinel cells participate in reductions.
type Flow uint8

const (
	// FlowExclude skips every cell that sits in an underflow or overflow
	// sentinel of an affected numeric axis. This is the default for
	// physics-style reductions over the nominal range.
	FlowExclude Flow = iota

	// FlowInclude keeps all cells, sentinels included, so the reduction
	// conserves the total accumulated weight.
	FlowInclude

	// FlowOnly keeps only cells that sit in at least one sentinel, which
	// isolates the out-of-range population.
	FlowOnly
)

// String implements the fmt.Stringer interface.
func (f Flow) String() string {
	switch f {
	case FlowExclude:
		return "exclude"
	case FlowInclude:
		return "include"
	case FlowOnly:
		return "only"
	default:
		return fmt.Sprintf("flow(%d)", uint8(f))
	}
}

// Histogram is an N-dimensional weighted histogram. The zero value is not
// usable; construct with New.
//
// A Histogram is not safe for concurrent use. Shard per goroutine and Merge.
type Histogram struct {
	axes   []axis.Axis
	byName map[string]int
	shape  stride.Shape
	sumw   []float64
	sumw2  []float64 // nil until the first weighted fill or merge
}

// Compile time check to ensure Histogram satisfies the accum interfaces.
var (
	_ accum.Value     = (*Histogram)(nil)
	_ accum.Encodable = (*Histogram)(nil)
)

// New creates an empty histogram over the given axes. Axes are cloned, so
// growing the histogram's categorical axes never mutates the caller's
// values. Axis names must be unique and non-empty.
func New(axes ...axis.Axis) (*Histogram, error) {
	cloned := make([]axis.Axis, len(axes))
	byName := make(map[string]int, len(axes))

	for d, ax := range axes {
		if ax == nil {
			return nil, fmt.Errorf("axis %d is nil", d)
		}

		name := ax.Name()
		if name == "" {
			return nil, fmt.Errorf("axis %d has an empty name", d)
		}

		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate axis name %q", name)
		}

		byName[name] = d
		cloned[d] = ax.Clone()
	}

	shape := stride.New(extents(cloned)...)

	return &Histogram{
		axes:   cloned,
		byName: byName,
		shape:  shape,
		sumw:   make([]float64, shape.Size()),
	}, nil
}

// MustNew creates an empty histogram over the given axes and panics on
// invalid input.
func MustNew(axes ...axis.Axis) *Histogram {
	h, err := New(axes...)
	if err != nil {
		panic(err)
	}

	return h
}

// Kind implements the accum.Value interface.
func (h *Histogram) Kind() accum.Kind { return accum.KindHist }

// Identity implements the accum.Value interface. The identity shares the
// receiver's axis definitions, current categorical labels included, but
// carries no content.
func (h *Histogram) Identity() accum.Value {
	id, err := New(h.axes...)
	if err != nil {
		// Axes were validated at construction.
		panic(err)
	}

	if h.sumw2 != nil {
		id.sumw2 = make([]float64, id.shape.Size())
	}

	return id
}

// Rank returns the number of axes.
func (h *Histogram) Rank() int { return len(h.axes) }

// Extents returns the dense extent of every dimension, sentinel cells
// included.
func (h *Histogram) Extents() []int { return h.shape.Extents() }

// Axes returns clones of the histogram's axes in definition order.
func (h *Histogram) Axes() []axis.Axis {
	out := make([]axis.Axis, len(h.axes))
	for d, ax := range h.axes {
		out[d] = ax.Clone()
	}

	return out
}

// Axis returns a clone of the named axis.
func (h *Histogram) Axis(name string) (axis.Axis, bool) {
	d, ok := h.byName[name]
	if !ok {
		return nil, false
	}

	return h.axes[d].Clone(), true
}

// Identifiers returns the labels of the named categorical axis in first-seen
// order.
func (h *Histogram) Identifiers(name string) ([]string, error) {
	d, ok := h.byName[name]
	if !ok {
		return nil, fmt.Errorf("histogram has no axis %q", name)
	}

	cat, ok := h.axes[d].(*axis.Category)
	if !ok {
		return nil, fmt.Errorf("axis %q is not categorical", name)
	}

	return cat.Labels(), nil
}

// Weighted reports whether the histogram tracks squared weights. It becomes
// true on the first weighted fill, or when merged with a weighted histogram.
func (h *Histogram) Weighted() bool { return h.sumw2 != nil }

// Cell returns the accumulated weight of one cell addressed by dense
// per-axis indices (0 is underflow on numeric axes).
func (h *Histogram) Cell(idx ...int) (float64, error) {
	off, err := h.offset(idx)
	if err != nil {
		return 0, err
	}

	return h.sumw[off], nil
}

// Variance returns the accumulated squared weight of one cell. For purely
// unweighted histograms the squared weights equal the weights and the cell
// sum is returned.
func (h *Histogram) Variance(idx ...int) (float64, error) {
	off, err := h.offset(idx)
	if err != nil {
		return 0, err
	}

	if h.sumw2 == nil {
		return h.sumw[off], nil
	}

	return h.sumw2[off], nil
}

// Counts returns a copy of the dense cell sums in row-major order, last axis
// fastest.
func (h *Histogram) Counts() []float64 {
	return slices.Clone(h.sumw)
}

// Variances returns a copy of the dense squared-weight sums in row-major
// order. For purely unweighted histograms this equals Counts.
func (h *Histogram) Variances() []float64 {
	if h.sumw2 == nil {
		return slices.Clone(h.sumw)
	}

	return slices.Clone(h.sumw2)
}

// Sum returns the total accumulated weight under the given flow policy.
func (h *Histogram) Sum(flow Flow) float64 {
	var total float64
	for _, v := range h.Cells(flow) {
		total += v
	}

	return total
}

// Cells iterates the dense cells under the given flow policy, yielding the
// per-axis index tuple and the accumulated weight. The yielded tuple is a
// fresh copy and may be retained.
func (h *Histogram) Cells(flow Flow) iter.Seq2[[]int, float64] {
	return func(yield func([]int, float64) bool) {
		if h.shape.Size() == 0 {
			return
		}

		idx := make([]int, len(h.axes))
		for off := 0; ; off++ {
			if h.admits(flow, idx) {
				if !yield(slices.Clone(idx), h.sumw[off]) {
					return
				}
			}

			if !h.shape.Next(idx) {
				return
			}
		}
	}
}

// Scale multiplies every cell by f in place. Squared weights scale by f*f,
// which keeps relative uncertainties intact.
func (h *Histogram) Scale(f float64) {
	for i := range h.sumw {
		h.sumw[i] *= f
	}

	if h.sumw2 != nil {
		f2 := f * f
		for i := range h.sumw2 {
			h.sumw2[i] *= f2
		}
	}
}

// ScaleLabels multiplies the slabs of the named categorical axis by
// per-label factors in place. Labels absent from factors keep their content;
// factors naming an unknown label fail with axis.ErrUnknownLabel before
// anything is scaled.
func (h *Histogram) ScaleLabels(name string, factors map[string]float64) error {
	d, ok := h.byName[name]
	if !ok {
		return fmt.Errorf("histogram has no axis %q", name)
	}

	cat, ok := h.axes[d].(*axis.Category)
	if !ok {
		return fmt.Errorf("axis %q is not categorical", name)
	}

	byCell := make([]float64, h.shape.Extent(d))
	for i := range byCell {
		byCell[i] = 1
	}

	for label, f := range factors {
		i, ok := cat.Lookup(label)
		if !ok {
			return &axis.ErrUnknownLabel{Axis: name, Label: label}
		}

		byCell[i] = f
	}

	if h.shape.Size() == 0 {
		return nil
	}

	idx := make([]int, len(h.axes))
	for off := 0; ; off++ {
		f := byCell[idx[d]]
		h.sumw[off] *= f

		if h.sumw2 != nil {
			h.sumw2[off] *= f * f
		}

		if !h.shape.Next(idx) {
			return nil
		}
	}
}

// admits reports whether the cell at idx passes the flow policy. Sentinels
// exist on numeric axes only; categorical indices never count as flow.
func (h *Histogram) admits(flow Flow, idx []int) bool {
	if flow == FlowInclude {
		return true
	}

	hit := false

	for d, ax := range h.axes {
		if ax.Kind() != axis.KindNumeric {
			continue
		}

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

func (h *Histogram) offset(idx []int) (int, error) {
	if len(idx) != len(h.axes) {
		return 0, fmt.Errorf("got %d indices for a rank-%d histogram", len(idx), len(h.axes))
	}

	for d, i := range idx {
		if i < 0 || i >= h.shape.Extent(d) {
			return 0, fmt.Errorf("index %d out of range [0, %d) on axis %q", i, h.shape.Extent(d), h.axes[d].Name())
		}
	}

	return h.shape.Offset(idx), nil
}

// enableVariance starts squared-weight tracking. All content so far was
// filled with unit weight, for which the squared weights equal the weights.
func (h *Histogram) enableVariance() {
	h.sumw2 = slices.Clone(h.sumw)
}

// syncShape re-lays the dense arrays out after categorical growth. Existing
// cells keep their index tuples.
func (h *Histogram) syncShape() {
	grown := false

	for d, ax := range h.axes {
		if ax.Extent() != h.shape.Extent(d) {
			grown = true
			break
		}
	}

	if !grown {
		return
	}

	shape := stride.New(extents(h.axes)...)

	sumw := make([]float64, shape.Size())
	stride.Grow(sumw, shape, h.sumw, h.shape)
	h.sumw = sumw

	if h.sumw2 != nil {
		sumw2 := make([]float64, shape.Size())
		stride.Grow(sumw2, shape, h.sumw2, h.shape)
		h.sumw2 = sumw2
	}

	h.shape = shape
}

func extents(axes []axis.Axis) []int {
	out := make([]int, len(axes))
	for d, ax := range axes {
		out[d] = ax.Extent()
	}

	return out
}
