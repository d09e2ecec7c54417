package axis

import "slices"

// Kind identifies the axis family.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNumeric represents a binned numeric axis.
	KindNumeric
	// KindCategory represents a categorical axis.
	KindCategory
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategory:
		return "category"
	default:
		return "invalid"
	}
}

// Underflow is the dense index of the underflow cell on every numeric axis.
const Underflow = 0

// Axis describes one histogram dimension.
type Axis interface {
	// Name returns the axis name. Names identify axes within a histogram and
	// bind them to batch columns during fills.
	Name() string

	// Kind returns the axis family.
	Kind() Kind

	// Extent returns the dense length of the axis: bins plus the two sentinel
	// cells for numeric axes, the current label count for categorical axes.
	Extent() int

	// Bins returns the bin count without sentinel cells.
	Bins() int

	// Clone returns an independent copy. Mutating the clone (categorical
	// growth) never affects the original.
	Clone() Axis
}

// Numeric is implemented by binned numeric axes.
type Numeric interface {
	Axis

	// Index returns the dense index of a value: Underflow below the first
	// edge, B+1 at or above the last edge, otherwise the unique i with
	// edge[i-1] <= v < edge[i]. NaN lands in the overflow cell.
	Index(v float64) int

	// Edges returns a copy of the bin edges (length Bins()+1).
	Edges() []float64

	// BinEdges returns the bounds of a dense cell: (-Inf, edge[0]) for the
	// underflow cell, [edge[B], +Inf) for the overflow cell, and
	// [edge[i-1], edge[i]) for bin i.
	BinEdges(i int) (lo, hi float64)
}

// Equal reports whether two axes define the same binning: same kind, same
// name and identical edges or labels in the same order. Growth policy is not
// part of the binning identity.
func Equal(a, b Axis) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.Name() != b.Name() {
		return false
	}

	switch a.Kind() {
	case KindNumeric:
		an, ok := a.(Numeric)
		if !ok {
			return false
		}
		bn, ok := b.(Numeric)
		if !ok {
			return false
		}
		return slices.Equal(an.Edges(), bn.Edges())
	case KindCategory:
		ac, ok := a.(*Category)
		if !ok {
			return false
		}
		bc, ok := b.(*Category)
		if !ok {
			return false
		}
		return slices.Equal(ac.labels, bc.labels)
	default:
		return false
	}
}
