package columns

import (
	"fmt"
	"slices"
	"sort"
)

// Kind identifies the concrete representation stored in a Column or Cell.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindFloat64 represents one float64 value per event.
	KindFloat64
	// KindLabel represents one string label per event.
	KindLabel
	// KindJagged represents a variable number of float64 elements per event.
	KindJagged
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindLabel:
		return "label"
	case KindJagged:
		return "jagged"
	default:
		return "invalid"
	}
}

// Column is a tagged union holding the values of one named quantity across a
// batch of events.
//
// Jagged columns store all per-event elements in one flat buffer; Offsets has
// one entry per event plus a trailing sentinel, so event i owns
// Flat[Offsets[i]:Offsets[i+1]].
type Column struct {
	Kind    Kind      `json:"k"`
	F64     []float64 `json:"f,omitempty"`
	Labels  []string  `json:"s,omitempty"`
	Flat    []float64 `json:"e,omitempty"`
	Offsets []int64   `json:"o,omitempty"`
}

// Float64s returns a float64 column with one value per event.
func Float64s(values []float64) Column {
	return Column{Kind: KindFloat64, F64: values}
}

// LabelColumn returns a label column with one string per event.
func LabelColumn(labels []string) Column {
	return Column{Kind: KindLabel, Labels: labels}
}

// JaggedColumn returns a jagged column. Offsets must be non-decreasing, start
// at 0 and end at len(flat); its length is the event count plus one.
func JaggedColumn(flat []float64, offsets []int64) Column {
	return Column{Kind: KindJagged, Flat: flat, Offsets: offsets}
}

// Len returns the number of events covered by the column.
func (c Column) Len() int {
	switch c.Kind {
	case KindFloat64:
		return len(c.F64)
	case KindLabel:
		return len(c.Labels)
	case KindJagged:
		if len(c.Offsets) == 0 {
			return 0
		}
		return len(c.Offsets) - 1
	default:
		return 0
	}
}

// Elements returns the total number of fill entries the column contributes:
// the flat element count for jagged columns, the event count otherwise.
func (c Column) Elements() int {
	if c.Kind == KindJagged {
		return len(c.Flat)
	}
	return c.Len()
}

// Event returns the half-open element range [lo, hi) owned by event i of a
// jagged column. For flat columns it returns [i, i+1).
func (c Column) Event(i int) (lo, hi int) {
	if c.Kind == KindJagged {
		return int(c.Offsets[i]), int(c.Offsets[i+1])
	}
	return i, i + 1
}

// SameOffsets reports whether two jagged columns share the same per-event
// element layout.
func (c Column) SameOffsets(other Column) bool {
	return c.Kind == KindJagged && other.Kind == KindJagged &&
		slices.Equal(c.Offsets, other.Offsets)
}

// validate checks internal consistency of the column.
func (c Column) validate() error {
	if c.Kind != KindJagged {
		return nil
	}
	if len(c.Offsets) == 0 {
		if len(c.Flat) != 0 {
			return fmt.Errorf("jagged column has %d elements but no offsets", len(c.Flat))
		}
		return nil
	}
	if c.Offsets[0] != 0 {
		return fmt.Errorf("jagged offsets must start at 0, got %d", c.Offsets[0])
	}
	for i := 1; i < len(c.Offsets); i++ {
		if c.Offsets[i] < c.Offsets[i-1] {
			return fmt.Errorf("jagged offsets must be non-decreasing, got %d after %d", c.Offsets[i], c.Offsets[i-1])
		}
	}
	if got := c.Offsets[len(c.Offsets)-1]; got != int64(len(c.Flat)) {
		return fmt.Errorf("jagged offsets end at %d, want %d", got, len(c.Flat))
	}
	return nil
}

// slice returns the column restricted to events [start, start+count).
// Jagged columns are rebased so the slice's offsets again start at 0.
func (c Column) slice(start, count int64) Column {
	switch c.Kind {
	case KindFloat64:
		return Column{Kind: KindFloat64, F64: c.F64[start : start+count]}
	case KindLabel:
		return Column{Kind: KindLabel, Labels: c.Labels[start : start+count]}
	case KindJagged:
		lo := c.Offsets[start]
		hi := c.Offsets[start+count]
		offsets := make([]int64, count+1)
		for i := range offsets {
			offsets[i] = c.Offsets[start+int64(i)] - lo
		}
		return Column{Kind: KindJagged, Flat: c.Flat[lo:hi], Offsets: offsets}
	default:
		return Column{}
	}
}

// Cell is a single-event tagged value used by point fills.
type Cell struct {
	Kind  Kind
	F64   float64
	Label string
	Elems []float64
}

// Float64 returns a float64 cell.
func Float64(v float64) Cell { return Cell{Kind: KindFloat64, F64: v} }

// Label returns a label cell.
func Label(s string) Cell { return Cell{Kind: KindLabel, Label: s} }

// Elems returns a jagged cell holding one event's elements.
func Elems(vs ...float64) Cell { return Cell{Kind: KindJagged, Elems: vs} }

// Sample maps axis names to single-event values for point fills.
type Sample map[string]Cell

// Batch is a set of named parallel columns covering the same events.
//
// All columns in a batch must report the same event count. Batches are not
// safe for concurrent mutation; build them fully before sharing.
type Batch struct {
	events int
	cols   map[string]Column
}

// NewBatch creates an empty batch covering the given number of events.
func NewBatch(events int) *Batch {
	return &Batch{
		events: events,
		cols:   make(map[string]Column),
	}
}

// Events returns the number of events in the batch.
func (b *Batch) Events() int { return b.events }

// Set adds or replaces a named column. The column must cover exactly the
// batch's event count and be internally consistent.
func (b *Batch) Set(name string, col Column) error {
	if err := col.validate(); err != nil {
		return fmt.Errorf("column %q: %w", name, err)
	}
	if col.Len() != b.events {
		return fmt.Errorf("column %q covers %d events, batch has %d", name, col.Len(), b.events)
	}
	b.cols[name] = col
	return nil
}

// MustSet is like Set but panics on error. Intended for literals in tests and
// examples.
func (b *Batch) MustSet(name string, col Column) *Batch {
	if err := b.Set(name, col); err != nil {
		panic(err)
	}
	return b
}

// Column returns the named column.
func (b *Batch) Column(name string) (Column, bool) {
	c, ok := b.cols[name]
	return c, ok
}

// Names returns the column names in sorted order.
func (b *Batch) Names() []string {
	names := make([]string, 0, len(b.cols))
	for name := range b.cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Slice returns the batch restricted to events [start, start+count).
// Column data is shared with the parent batch where possible.
func (b *Batch) Slice(start, count int64) (*Batch, error) {
	if start < 0 || count < 0 || start+count > int64(b.events) {
		return nil, fmt.Errorf("slice [%d, %d) out of range for %d events", start, start+count, b.events)
	}
	out := NewBatch(int(count))
	for name, col := range b.cols {
		out.cols[name] = col.slice(start, count)
	}
	return out, nil
}
