package axis

import (
	"fmt"
	"math"
	"sort"
)

// Variable is a numeric axis with explicit, strictly increasing bin edges.
type Variable struct {
	name  string
	edges []float64
}

var _ Numeric = (*Variable)(nil)

// NewVariable creates a numeric axis from explicit edges. At least two edges
// are required and they must be strictly increasing and finite.
func NewVariable(name string, edges ...float64) (*Variable, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("axis %q: need at least 2 edges, got %d", name, len(edges))
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("axis %q: edge %d is not finite", name, i)
		}
		if i > 0 && e <= edges[i-1] {
			return nil, fmt.Errorf("axis %q: edges must be strictly increasing, got %v after %v", name, e, edges[i-1])
		}
	}

	owned := make([]float64, len(edges))
	copy(owned, edges)

	return &Variable{name: name, edges: owned}, nil
}

// MustVariable is like NewVariable but panics on error.
func MustVariable(name string, edges ...float64) *Variable {
	a, err := NewVariable(name, edges...)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the axis name.
func (a *Variable) Name() string { return a.name }

// Kind returns KindNumeric.
func (a *Variable) Kind() Kind { return KindNumeric }

// Bins returns the number of bins between the edges.
func (a *Variable) Bins() int { return len(a.edges) - 1 }

// Extent returns the dense length including both sentinel cells.
func (a *Variable) Extent() int { return len(a.edges) + 1 }

// Edges returns a copy of the bin edges.
func (a *Variable) Edges() []float64 {
	out := make([]float64, len(a.edges))
	copy(out, a.edges)
	return out
}

// Index returns the dense index of v via binary search over the edges.
func (a *Variable) Index(v float64) int {
	if math.IsNaN(v) {
		return len(a.edges)
	}

	// First edge position >= v. A value exactly on an edge belongs to the bin
	// opening at that edge (right-open bins); the last edge opens overflow.
	i := sort.SearchFloat64s(a.edges, v)
	if i < len(a.edges) && a.edges[i] == v {
		return i + 1
	}
	return i
}

// BinEdges returns the bounds of dense cell i.
func (a *Variable) BinEdges(i int) (lo, hi float64) {
	return binEdges(a.edges, i)
}

// Clone returns an independent copy. The edge slice is immutable and shared.
func (a *Variable) Clone() Axis {
	return &Variable{name: a.name, edges: a.edges}
}

func binEdges(edges []float64, i int) (lo, hi float64) {
	switch {
	case i <= Underflow:
		return math.Inf(-1), edges[0]
	case i >= len(edges):
		return edges[len(edges)-1], math.Inf(1)
	default:
		return edges[i-1], edges[i]
	}
}
