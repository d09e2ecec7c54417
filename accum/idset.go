package accum

import (
	"bytes"
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/histgo/codec"
)

// IDSet accumulates a set of uint64 identifiers on a roaring bitmap. It is
// the compact choice for event or entry deduplication across chunks.
type IDSet struct {
	rb *roaring64.Bitmap
}

var _ Encodable = (*IDSet)(nil)

// NewIDSet creates an ID set, optionally seeded with identifiers.
func NewIDSet(ids ...uint64) *IDSet {
	s := &IDSet{rb: roaring64.New()}
	s.Add(ids...)
	return s
}

// Add inserts identifiers.
func (s *IDSet) Add(ids ...uint64) {
	for _, id := range ids {
		s.rb.Add(id)
	}
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id uint64) bool {
	return s.rb.Contains(id)
}

// Cardinality returns the number of identifiers.
func (s *IDSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// All returns an iterator over the identifiers in ascending order.
func (s *IDSet) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// IDs returns the identifiers in ascending order.
func (s *IDSet) IDs() []uint64 {
	return s.rb.ToArray()
}

// Kind returns KindIDSet.
func (s *IDSet) Kind() Kind { return KindIDSet }

// Identity returns a fresh empty ID set.
func (s *IDSet) Identity() Value { return NewIDSet() }

// Merge unions the other set's identifiers.
func (s *IDSet) Merge(other Value) error {
	o, ok := other.(*IDSet)
	if !ok {
		return &ErrKindMismatch{Want: KindIDSet, Got: kindOf(other)}
	}
	s.rb.Or(o.rb)
	return nil
}

// EncodePayload implements Encodable. The payload is the portable roaring
// serialization, independent of the envelope codec.
func (s *IDSet) EncodePayload(codec.Codec) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.rb.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeIDSet(_ codec.Codec, payload []byte) (Value, error) {
	s := NewIDSet()
	if _, err := s.rb.ReadFrom(bytes.NewReader(payload)); err != nil {
		return nil, err
	}
	return s, nil
}
