package hist

import (
	"fmt"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/internal/stride"
)

// Merge implements the accum.Value interface. Numeric axes must carry
// identical edges. Categorical axes with equal label sets merge directly;
// diverging label sets union when both sides are growable, with the
// receiver's labels kept first and the other side's unseen labels appended
// in their first-seen order. A failed merge leaves the receiver unchanged.
func (h *Histogram) Merge(other accum.Value) error {
	o, ok := other.(*Histogram)
	if !ok || o == nil {
		got := accum.KindInvalid
		if other != nil {
			got = other.Kind()
		}

		return &accum.ErrKindMismatch{Want: accum.KindHist, Got: got}
	}

	if o == h {
		return fmt.Errorf("cannot merge a histogram into itself")
	}

	if len(o.axes) != len(h.axes) {
		return &axis.ErrIncompatibleBinning{Reason: fmt.Sprintf("rank %d vs %d", len(h.axes), len(o.axes))}
	}

	// Plan first, mutate after: no axis grows until every dimension has
	// been proven compatible.
	maps := make([][]int, len(h.axes))
	grown := make([][]string, len(h.axes))

	for d := range h.axes {
		mine, theirs := h.axes[d], o.axes[d]

		if mine.Name() != theirs.Name() || mine.Kind() != theirs.Kind() {
			return &axis.ErrIncompatibleBinning{Axis: mine.Name(), Reason: "axis name or kind differs"}
		}

		if mine.Kind() == axis.KindNumeric {
			if !axis.Equal(mine, theirs) {
				return &axis.ErrIncompatibleBinning{Axis: mine.Name(), Reason: "numeric edges differ"}
			}

			continue
		}

		a, aok := mine.(*axis.Category)
		b, bok := theirs.(*axis.Category)

		if !aok || !bok {
			return &axis.ErrIncompatibleBinning{Axis: mine.Name(), Reason: "unsupported categorical axis type"}
		}

		if axis.Equal(a, b) {
			continue
		}

		if !a.Growable() || !b.Growable() {
			return &axis.ErrIncompatibleBinning{Axis: a.Name(), Reason: "label sets differ on a fixed axis"}
		}

		labels := b.Labels()
		m := make([]int, len(labels))
		next := a.Extent()

		for i, label := range labels {
			if j, ok := a.Lookup(label); ok {
				m[i] = j
				continue
			}

			m[i] = next
			grown[d] = append(grown[d], label)
			next++
		}

		maps[d] = m
	}

	for d, labels := range grown {
		cat := h.axes[d].(*axis.Category)
		for _, label := range labels {
			cat.Index(label)
		}
	}

	h.syncShape()

	if o.sumw2 != nil && h.sumw2 == nil {
		h.enableVariance()
	}

	stride.Remap(h.sumw, h.shape, o.sumw, o.shape, maps)

	if h.sumw2 != nil {
		src := o.sumw2
		if src == nil {
			// Unit-weight content: squared weights equal weights.
			src = o.sumw
		}

		stride.Remap(h.sumw2, h.shape, src, o.shape, maps)
	}

	return nil
}
