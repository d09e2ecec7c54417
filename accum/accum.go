package accum

import "fmt"

// Kind identifies the concrete accumulator variant.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindSum represents a scalar sum.
	KindSum
	// KindCount represents an event tally.
	KindCount
	// KindList represents an append-only sequence.
	KindList
	// KindSet represents a unique-element set.
	KindSet
	// KindIDSet represents a uint64 identifier set.
	KindIDSet
	// KindMap represents a string-keyed accumulator mapping.
	KindMap
	// KindHist represents the histogram accumulator in package hist.
	KindHist
)

// String returns the kind name. It doubles as the wire registry key.
func (k Kind) String() string {
	switch k {
	case KindSum:
		return "sum"
	case KindCount:
		return "count"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindIDSet:
		return "idset"
	case KindMap:
		return "map"
	case KindHist:
		return "hist"
	default:
		return "invalid"
	}
}

// Value is a mergeable reduction result.
//
// Merge must be associative and commutative with Identity as the neutral
// element, so results can be folded in any order. Merge folds other into the
// receiver and may take ownership of other's internals; other must not be
// used after a successful merge.
//
// Values are not safe for concurrent mutation. Executors confine all merging
// to a single goroutine.
type Value interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Identity returns a fresh empty accumulator of the same shape.
	Identity() Value

	// Merge folds other into the receiver. Merging across variants, or
	// across incompatible instances of one variant, fails with
	// *ErrKindMismatch or a variant-specific error and leaves the receiver
	// unchanged.
	Merge(other Value) error
}

// ErrKindMismatch indicates a merge across incompatible accumulator
// variants.
type ErrKindMismatch struct {
	Want Kind
	Got  Kind
}

func (e *ErrKindMismatch) Error() string {
	if e.Want == e.Got {
		return fmt.Sprintf("accumulator kind mismatch: incompatible %s variants", e.Want)
	}
	return fmt.Sprintf("accumulator kind mismatch: want %s, got %s", e.Want, e.Got)
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindInvalid
	}
	return v.Kind()
}
