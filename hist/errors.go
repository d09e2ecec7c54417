package hist

import "fmt"

// ErrMissingColumn occurs when a fill input has no column for one of the
// histogram's axes.
type ErrMissingColumn struct {
	// Column is the name of the missing column.
	Column string
}

// Error implements the error interface.
func (e *ErrMissingColumn) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// ErrShapeMismatch occurs when the columns or weights of a fill do not line
// up: a column kind incompatible with its axis, jagged columns with diverging
// offsets, or a weight slice whose length matches neither the event count nor
// the element count.
type ErrShapeMismatch struct {
	// Column is the offending column, if the mismatch is tied to one.
	Column string

	// Detail describes the mismatch.
	Detail string
}

// Error implements the error interface.
func (e *ErrShapeMismatch) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("shape mismatch: %s", e.Detail)
	}

	return fmt.Sprintf("shape mismatch on column %q: %s", e.Column, e.Detail)
}
