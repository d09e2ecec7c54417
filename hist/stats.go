package hist

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/histgo/axis"
)

// Mean returns the weighted mean of the named numeric axis, taking each
// bin's content at its center. All other axes are summed out with their
// sentinels included; the named axis's own sentinels carry no finite center
// and are excluded. Returns NaN when the nominal range holds no weight.
func (h *Histogram) Mean(name string) (float64, error) {
	xs, ws, err := h.profile(name)
	if err != nil {
		return 0, err
	}

	return stat.Mean(xs, ws), nil
}

// StdDev returns the weighted population standard deviation of the named
// numeric axis, taking each bin's content at its center.
func (h *Histogram) StdDev(name string) (float64, error) {
	xs, ws, err := h.profile(name)
	if err != nil {
		return 0, err
	}

	_, std := stat.PopMeanStdDev(xs, ws)

	return std, nil
}

// Quantile returns the empirical q-quantile of the named numeric axis,
// taking each bin's content at its center. q must lie in [0, 1].
func (h *Histogram) Quantile(name string, q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile %v outside [0, 1]", q)
	}

	xs, ws, err := h.profile(name)
	if err != nil {
		return 0, err
	}

	return stat.Quantile(q, stat.Empirical, xs, ws), nil
}

// profile reduces the histogram to bin centers and weights along one
// numeric axis.
func (h *Histogram) profile(name string) (xs, ws []float64, err error) {
	d, ok := h.byName[name]
	if !ok {
		return nil, nil, fmt.Errorf("histogram has no axis %q", name)
	}

	num, ok := h.axes[d].(axis.Numeric)
	if !ok {
		return nil, nil, fmt.Errorf("axis %q is not numeric", name)
	}

	p := h

	if len(h.axes) > 1 {
		others := make([]string, 0, len(h.axes)-1)

		for dd, ax := range h.axes {
			if dd != d {
				others = append(others, ax.Name())
			}
		}

		p, err = h.SumOver(FlowInclude, others...)
		if err != nil {
			return nil, nil, err
		}
	}

	edges := num.Edges()
	bins := num.Bins()

	xs = make([]float64, bins)
	ws = make([]float64, bins)

	for i := 0; i < bins; i++ {
		xs[i] = 0.5 * (edges[i] + edges[i+1])
		ws[i] = p.sumw[i+1]
	}

	return xs, ws, nil
}
