package accum

// List accumulates an append-only sequence. Element order is stable within
// one chunk but unspecified across merges.
//
// List is an in-process accumulator; see the package documentation for wire
// transport.
type List[E any] struct {
	Elems []E
}

// NewList creates a list, optionally seeded with elements.
func NewList[E any](elems ...E) *List[E] {
	return &List[E]{Elems: elems}
}

// Push appends elements.
func (l *List[E]) Push(elems ...E) {
	l.Elems = append(l.Elems, elems...)
}

// Len returns the element count.
func (l *List[E]) Len() int { return len(l.Elems) }

// Kind returns KindList.
func (l *List[E]) Kind() Kind { return KindList }

// Identity returns a fresh empty list.
func (l *List[E]) Identity() Value { return &List[E]{} }

// Merge appends the other list's elements. Lists with different element
// types fail with *ErrKindMismatch.
func (l *List[E]) Merge(other Value) error {
	o, ok := other.(*List[E])
	if !ok {
		return &ErrKindMismatch{Want: KindList, Got: kindOf(other)}
	}
	l.Elems = append(l.Elems, o.Elems...)
	return nil
}

// Set accumulates unique elements.
//
// Set is an in-process accumulator; see the package documentation for wire
// transport.
type Set[E comparable] struct {
	elems map[E]struct{}
}

// NewSet creates a set, optionally seeded with elements.
func NewSet[E comparable](elems ...E) *Set[E] {
	s := &Set[E]{elems: make(map[E]struct{}, len(elems))}
	s.Add(elems...)
	return s
}

// Add inserts elements.
func (s *Set[E]) Add(elems ...E) {
	for _, e := range elems {
		s.elems[e] = struct{}{}
	}
}

// Contains reports whether e is in the set.
func (s *Set[E]) Contains(e E) bool {
	_, ok := s.elems[e]
	return ok
}

// Len returns the element count.
func (s *Set[E]) Len() int { return len(s.elems) }

// Elems returns the elements in unspecified order.
func (s *Set[E]) Elems() []E {
	out := make([]E, 0, len(s.elems))
	for e := range s.elems {
		out = append(out, e)
	}
	return out
}

// Kind returns KindSet.
func (s *Set[E]) Kind() Kind { return KindSet }

// Identity returns a fresh empty set.
func (s *Set[E]) Identity() Value {
	return &Set[E]{elems: make(map[E]struct{})}
}

// Merge unions the other set's elements. Sets with different element types
// fail with *ErrKindMismatch.
func (s *Set[E]) Merge(other Value) error {
	o, ok := other.(*Set[E])
	if !ok {
		return &ErrKindMismatch{Want: KindSet, Got: kindOf(other)}
	}
	for e := range o.elems {
		s.elems[e] = struct{}{}
	}
	return nil
}
