package accum

import "github.com/hupe1980/histgo/codec"

// Sum accumulates a scalar float64 total.
type Sum struct {
	V float64 `json:"v"`
}

var _ Encodable = (*Sum)(nil)

// NewSum creates a zero sum.
func NewSum() *Sum { return &Sum{} }

// Add adds v to the total.
func (s *Sum) Add(v float64) { s.V += v }

// Kind returns KindSum.
func (s *Sum) Kind() Kind { return KindSum }

// Identity returns a fresh zero sum.
func (s *Sum) Identity() Value { return &Sum{} }

// Merge adds the other sum's total.
func (s *Sum) Merge(other Value) error {
	o, ok := other.(*Sum)
	if !ok {
		return &ErrKindMismatch{Want: KindSum, Got: kindOf(other)}
	}
	s.V += o.V
	return nil
}

// EncodePayload implements Encodable.
func (s *Sum) EncodePayload(c codec.Codec) ([]byte, error) {
	return c.Marshal(s)
}

// Count accumulates an int64 event tally.
type Count struct {
	N int64 `json:"n"`
}

var _ Encodable = (*Count)(nil)

// NewCount creates a zero count.
func NewCount() *Count { return &Count{} }

// Inc increments the tally by one.
func (c *Count) Inc() { c.N++ }

// Add adds n to the tally.
func (c *Count) Add(n int64) { c.N += n }

// Kind returns KindCount.
func (c *Count) Kind() Kind { return KindCount }

// Identity returns a fresh zero count.
func (c *Count) Identity() Value { return &Count{} }

// Merge adds the other count's tally.
func (c *Count) Merge(other Value) error {
	o, ok := other.(*Count)
	if !ok {
		return &ErrKindMismatch{Want: KindCount, Got: kindOf(other)}
	}
	c.N += o.N
	return nil
}

// EncodePayload implements Encodable.
func (c *Count) EncodePayload(cc codec.Codec) ([]byte, error) {
	return cc.Marshal(c)
}
