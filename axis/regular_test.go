package axis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegularValidation(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		lo, hi  float64
		wantErr bool
	}{
		{"Valid", 10, 0, 1, false},
		{"SingleBin", 1, -5, 5, false},
		{"ZeroBins", 0, 0, 1, true},
		{"NegativeBins", -3, 0, 1, true},
		{"EmptyRange", 4, 1, 1, true},
		{"InvertedRange", 4, 1, 0, true},
		{"NaNBound", 4, math.NaN(), 1, true},
		{"InfBound", 4, 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegular("x", tt.n, tt.lo, tt.hi)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegularEdges(t *testing.T) {
	a := MustRegular("x", 4, 0, 2)

	assert.Equal(t, 4, a.Bins())
	assert.Equal(t, 6, a.Extent())
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, a.Edges())
}

func TestRegularIndex(t *testing.T) {
	a := MustRegular("x", 4, 0, 2)

	tests := []struct {
		value    float64
		expected int
	}{
		{-0.1, 0},
		{0, 1},
		{0.49, 1},
		{0.5, 2},
		{1, 3},
		{1.99, 4},
		{2, 5},
		{7, 5},
		{math.NaN(), 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, a.Index(tt.value), "value %v", tt.value)
	}
}

func TestRegularIndexMatchesEdges(t *testing.T) {
	// Index must agree with the published edges even where the uniform width
	// is not exactly representable.
	a := MustRegular("x", 7, 0, 1)

	edges := a.Edges()
	for i, e := range edges {
		idx := a.Index(e)
		if i == len(edges)-1 {
			assert.Equal(t, a.Extent()-1, idx, "edge %v must open overflow", e)
			continue
		}
		require.Equal(t, i+1, idx, "edge %v must open bin %d", e, i+1)

		lo, hi := a.BinEdges(idx)
		assert.LessOrEqual(t, lo, e)
		assert.Greater(t, hi, e)
	}
}

func TestRegularAgreesWithVariable(t *testing.T) {
	reg := MustRegular("x", 10, -1, 1)
	vr := MustVariable("x", reg.Edges()...)

	assert.True(t, Equal(reg, vr))

	for _, v := range []float64{-2, -1, -0.30000000000000004, 0, 0.1, 0.999, 1, 2} {
		assert.Equal(t, vr.Index(v), reg.Index(v), "value %v", v)
	}
}
