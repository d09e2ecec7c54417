package axis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Regular is a numeric axis with n equal-width bins over [lo, hi).
//
// The bin index is computed arithmetically and then aligned against the
// published edge array, so Index and Edges can never disagree on borderline
// values despite floating-point rounding.
type Regular struct {
	name  string
	n     int
	lo    float64
	hi    float64
	width float64
	edges []float64
}

var _ Numeric = (*Regular)(nil)

// NewRegular creates a uniform numeric axis with n bins spanning [lo, hi).
func NewRegular(name string, n int, lo, hi float64) (*Regular, error) {
	if n <= 0 {
		return nil, fmt.Errorf("axis %q: bin count must be positive, got %d", name, n)
	}
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsNaN(hi) || math.IsInf(hi, 0) {
		return nil, fmt.Errorf("axis %q: bounds must be finite", name)
	}
	if hi <= lo {
		return nil, fmt.Errorf("axis %q: upper bound %v must exceed lower bound %v", name, hi, lo)
	}

	return &Regular{
		name:  name,
		n:     n,
		lo:    lo,
		hi:    hi,
		width: (hi - lo) / float64(n),
		edges: floats.Span(make([]float64, n+1), lo, hi),
	}, nil
}

// MustRegular is like NewRegular but panics on error.
func MustRegular(name string, n int, lo, hi float64) *Regular {
	a, err := NewRegular(name, n, lo, hi)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the axis name.
func (a *Regular) Name() string { return a.name }

// Kind returns KindNumeric.
func (a *Regular) Kind() Kind { return KindNumeric }

// Bins returns the number of bins.
func (a *Regular) Bins() int { return a.n }

// Extent returns the dense length including both sentinel cells.
func (a *Regular) Extent() int { return a.n + 2 }

// Edges returns a copy of the bin edges.
func (a *Regular) Edges() []float64 {
	out := make([]float64, len(a.edges))
	copy(out, a.edges)
	return out
}

// Index returns the dense index of v.
func (a *Regular) Index(v float64) int {
	if math.IsNaN(v) {
		return a.n + 1
	}
	if v < a.lo {
		return Underflow
	}
	if v >= a.hi {
		return a.n + 1
	}

	i := int((v - a.lo) / a.width)
	if i >= a.n {
		i = a.n - 1
	}

	// Align with the edge array on borderline values.
	if v < a.edges[i] {
		i--
	} else if v >= a.edges[i+1] {
		i++
	}

	return i + 1
}

// BinEdges returns the bounds of dense cell i.
func (a *Regular) BinEdges(i int) (lo, hi float64) {
	return binEdges(a.edges, i)
}

// Clone returns an independent copy. The edge slice is immutable and shared.
func (a *Regular) Clone() Axis {
	clone := *a
	return &clone
}
