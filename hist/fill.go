package hist

import (
	"fmt"

	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/columns"
)

// FillOptions configures the weighting of a fill. At most one weight source
// may be set; leaving all unset fills with unit weight. Weight slices,
// weight columns and non-unit scalar weights turn on squared-weight tracking
// for the rest of the histogram's life. A scalar Weight of exactly 1 stays
// on the unweighted path, where squared weights equal weights anyway.
type FillOptions struct {
	// Weight scales every entry of this fill by one scalar. Defaults to 1.
	Weight float64

	// Weights carries explicit weights: one per element when a jagged
	// column is bound and the length matches the element count, otherwise
	// one per event, broadcast across the elements of each event.
	Weights []float64

	// WeightColumn draws weights from the named batch column. A float64
	// column weighs per event; a jagged column must share the offsets of
	// the jagged axis columns and weighs per element.
	WeightColumn string
}

type weightMode uint8

const (
	weightUnit weightMode = iota
	weightScalar
	weightPerEvent
	weightPerElement
)

// Fill accumulates a single sample. Every axis must find a cell of the
// matching kind under its name; jagged cells fill once per element in
// lock-step and must agree on length.
func (h *Histogram) Fill(sample columns.Sample, optFns ...func(o *FillOptions)) error {
	batch := columns.NewBatch(1)

	for name, cell := range sample {
		var col columns.Column

		switch cell.Kind {
		case columns.KindFloat64:
			col = columns.Float64s([]float64{cell.F64})
		case columns.KindLabel:
			col = columns.LabelColumn([]string{cell.Label})
		case columns.KindJagged:
			col = columns.JaggedColumn(cell.Elems, []int64{0, int64(len(cell.Elems))})
		default:
			return &ErrShapeMismatch{Column: name, Detail: "cell has no value"}
		}

		if err := batch.Set(name, col); err != nil {
			return err
		}
	}

	return h.FillBatch(batch, optFns...)
}

// FillBatch accumulates every event of the batch. Each axis binds to the
// column of the same name. Jagged columns fill once per element, in
// lock-step across axes, with flat columns and labels broadcast per event.
//
// All structural validation happens before any cell changes, so a failed
// fill leaves the histogram untouched: unknown labels on fixed axes,
// mismatched column kinds, diverging jagged offsets and ill-sized weights
// are all reported up front.
func (h *Histogram) FillBatch(batch *columns.Batch, optFns ...func(o *FillOptions)) error {
	if batch == nil {
		return fmt.Errorf("batch is nil")
	}

	opts := FillOptions{Weight: 1}

	for _, fn := range optFns {
		fn(&opts)
	}

	n := batch.Events()

	cols := make([]columns.Column, len(h.axes))
	jaggedDim := -1

	for d, ax := range h.axes {
		col, ok := batch.Column(ax.Name())
		if !ok {
			return &ErrMissingColumn{Column: ax.Name()}
		}

		switch ax.(type) {
		case axis.Numeric:
			if col.Kind != columns.KindFloat64 && col.Kind != columns.KindJagged {
				return &ErrShapeMismatch{Column: ax.Name(), Detail: "numeric axis needs a float64 or jagged column"}
			}
		case *axis.Category:
			if col.Kind != columns.KindLabel {
				return &ErrShapeMismatch{Column: ax.Name(), Detail: "categorical axis needs a label column"}
			}
		default:
			return fmt.Errorf("axis %q has unsupported type %T", ax.Name(), ax)
		}

		if col.Kind == columns.KindJagged {
			if jaggedDim < 0 {
				jaggedDim = d
			} else if !cols[jaggedDim].SameOffsets(col) {
				return &ErrShapeMismatch{Column: ax.Name(), Detail: "jagged columns must share offsets"}
			}
		}

		cols[d] = col
	}

	elements := n
	if jaggedDim >= 0 {
		elements = cols[jaggedDim].Elements()
	}

	mode, scalar, weights, err := resolveWeights(batch, &opts, n, elements, jaggedDim, cols)
	if err != nil {
		return err
	}

	// Fixed axes validate before growable axes grow, so a failed fill
	// never leaves the histogram half-grown.
	for d, ax := range h.axes {
		cat, ok := ax.(*axis.Category)
		if !ok || cat.Growable() {
			continue
		}

		for _, label := range cols[d].Labels {
			if _, ok := cat.Lookup(label); !ok {
				return &axis.ErrUnknownLabel{Axis: cat.Name(), Label: label}
			}
		}
	}

	for d, ax := range h.axes {
		cat, ok := ax.(*axis.Category)
		if !ok || !cat.Growable() {
			continue
		}

		for _, label := range cols[d].Labels {
			cat.Index(label)
		}
	}

	h.syncShape()

	if mode != weightUnit && h.sumw2 == nil {
		h.enableVariance()
	}

	idx := make([]int, len(h.axes))

	for e := 0; e < n; e++ {
		lo, hi := e, e+1
		if jaggedDim >= 0 {
			lo, hi = cols[jaggedDim].Event(e)
		}

		for j := lo; j < hi; j++ {
			for d, ax := range h.axes {
				col := &cols[d]

				switch a := ax.(type) {
				case axis.Numeric:
					if col.Kind == columns.KindJagged {
						idx[d] = a.Index(col.Flat[j])
					} else {
						idx[d] = a.Index(col.F64[e])
					}
				case *axis.Category:
					i, _ := a.Lookup(col.Labels[e])
					idx[d] = i
				}
			}

			w := 1.0

			switch mode {
			case weightScalar:
				w = scalar
			case weightPerEvent:
				w = weights[e]
			case weightPerElement:
				w = weights[j]
			}

			off := h.shape.Offset(idx)

			h.sumw[off] += w
			if h.sumw2 != nil {
				h.sumw2[off] += w * w
			}
		}
	}

	return nil
}

func resolveWeights(batch *columns.Batch, opts *FillOptions, n, elements, jaggedDim int, cols []columns.Column) (weightMode, float64, []float64, error) {
	set := 0
	if opts.Weight != 1 {
		set++
	}

	if opts.Weights != nil {
		set++
	}

	if opts.WeightColumn != "" {
		set++
	}

	if set > 1 {
		return weightUnit, 0, nil, fmt.Errorf("conflicting weight options")
	}

	switch {
	case opts.WeightColumn != "":
		col, ok := batch.Column(opts.WeightColumn)
		if !ok {
			return weightUnit, 0, nil, &ErrMissingColumn{Column: opts.WeightColumn}
		}

		switch col.Kind {
		case columns.KindFloat64:
			return weightPerEvent, 0, col.F64, nil
		case columns.KindJagged:
			if jaggedDim < 0 || !cols[jaggedDim].SameOffsets(col) {
				return weightUnit, 0, nil, &ErrShapeMismatch{Column: opts.WeightColumn, Detail: "jagged weights must share the offsets of the jagged axis columns"}
			}

			return weightPerElement, 0, col.Flat, nil
		default:
			return weightUnit, 0, nil, &ErrShapeMismatch{Column: opts.WeightColumn, Detail: "weights must be numeric"}
		}
	case opts.Weights != nil:
		if jaggedDim >= 0 && len(opts.Weights) == elements {
			return weightPerElement, 0, opts.Weights, nil
		}

		if len(opts.Weights) == n {
			return weightPerEvent, 0, opts.Weights, nil
		}

		return weightUnit, 0, nil, &ErrShapeMismatch{Detail: fmt.Sprintf("%d weights for %d events and %d elements", len(opts.Weights), n, elements)}
	case opts.Weight != 1:
		return weightScalar, opts.Weight, nil, nil
	default:
		return weightUnit, 0, nil, nil
	}
}
