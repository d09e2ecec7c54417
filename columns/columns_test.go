package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLen(t *testing.T) {
	tests := []struct {
		name     string
		col      Column
		events   int
		elements int
	}{
		{"Float64", Float64s([]float64{1, 2, 3}), 3, 3},
		{"Label", LabelColumn([]string{"a", "b"}), 2, 2},
		{"Jagged", JaggedColumn([]float64{1, 2, 3}, []int64{0, 2, 2, 3}), 3, 3},
		{"JaggedEmpty", JaggedColumn(nil, nil), 0, 0},
		{"Invalid", Column{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.events, tt.col.Len())
			assert.Equal(t, tt.elements, tt.col.Elements())
		})
	}
}

func TestColumnEvent(t *testing.T) {
	jagged := JaggedColumn([]float64{1, 2, 3, 4}, []int64{0, 2, 2, 4})

	lo, hi := jagged.Event(0)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 2, hi)

	lo, hi = jagged.Event(1)
	assert.Equal(t, lo, hi) // empty event

	flat := Float64s([]float64{1, 2, 3})
	lo, hi = flat.Event(2)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 3, hi)
}

func TestColumnSameOffsets(t *testing.T) {
	a := JaggedColumn([]float64{1, 2, 3}, []int64{0, 1, 3})
	b := JaggedColumn([]float64{9, 8, 7}, []int64{0, 1, 3})
	c := JaggedColumn([]float64{9, 8, 7}, []int64{0, 2, 3})

	assert.True(t, a.SameOffsets(b))
	assert.False(t, a.SameOffsets(c))
	assert.False(t, a.SameOffsets(Float64s([]float64{1, 2})))
}

func TestBatchSet(t *testing.T) {
	tests := []struct {
		name    string
		events  int
		col     Column
		wantErr bool
	}{
		{"Valid", 3, Float64s([]float64{1, 2, 3}), false},
		{"ValidJagged", 2, JaggedColumn([]float64{1, 2, 3}, []int64{0, 1, 3}), false},
		{"WrongEventCount", 3, Float64s([]float64{1, 2}), true},
		{"OffsetsNotFromZero", 2, JaggedColumn([]float64{1, 2}, []int64{1, 2, 2}), true},
		{"OffsetsDecreasing", 2, JaggedColumn([]float64{1, 2}, []int64{0, 2, 1}), true},
		{"OffsetsShort", 2, JaggedColumn([]float64{1, 2, 3}, []int64{0, 1, 2}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBatch(tt.events)
			err := b.Set("x", tt.col)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBatchNames(t *testing.T) {
	b := NewBatch(1).
		MustSet("pt", Float64s([]float64{1})).
		MustSet("eta", Float64s([]float64{2})).
		MustSet("dataset", LabelColumn([]string{"A"}))

	assert.Equal(t, []string{"dataset", "eta", "pt"}, b.Names())
}

func TestBatchSlice(t *testing.T) {
	b := NewBatch(4).
		MustSet("pt", Float64s([]float64{10, 20, 30, 40})).
		MustSet("dataset", LabelColumn([]string{"A", "A", "B", "B"})).
		MustSet("jets", JaggedColumn([]float64{1, 2, 3, 4, 5}, []int64{0, 2, 2, 4, 5}))

	sub, err := b.Slice(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Events())

	pt, ok := sub.Column("pt")
	require.True(t, ok)
	assert.Equal(t, []float64{20, 30}, pt.F64)

	ds, ok := sub.Column("dataset")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, ds.Labels)

	jets, ok := sub.Column("jets")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, jets.Flat)
	assert.Equal(t, []int64{0, 0, 2}, jets.Offsets)

	_, err = b.Slice(2, 3)
	assert.Error(t, err)

	_, err = b.Slice(-1, 1)
	assert.Error(t, err)
}
