package hist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/codec"
	"github.com/hupe1980/histgo/columns"
)

func TestWireRoundTrip(t *testing.T) {
	h := MustNew(axis.MustRegular("x", 2, 0, 2), axis.NewCategory("proc"))

	for _, f := range []struct {
		v     float64
		label string
	}{
		{0.5, "A"}, {1.5, "B"}, {-1, "A"},
	} {
		require.NoError(t, h.Fill(columns.Sample{
			"x":    columns.Float64(f.v),
			"proc": columns.Label(f.label),
		}, func(o *FillOptions) {
			o.Weight = 2
		}))
	}

	data, err := accum.Encode(codec.GoJSON{}, h)
	require.NoError(t, err)

	v, err := accum.Decode(codec.GoJSON{}, data)
	require.NoError(t, err)

	got, ok := v.(*Histogram)
	require.True(t, ok)

	assert.Equal(t, h.Counts(), got.Counts())
	assert.Equal(t, h.Variances(), got.Variances())

	labels, err := got.Identifiers("proc")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, labels)

	// Regular axes rehydrate as Variable with the same edges, which is
	// the same binning.
	assert.True(t, axis.Equal(h.Axes()[0], got.Axes()[0]))

	t.Run("MergesWithOriginal", func(t *testing.T) {
		require.NoError(t, got.Merge(h))
		assert.InDelta(t, 2*h.Sum(FlowInclude), got.Sum(FlowInclude), 1e-12)
	})
}

func TestWireKeepsGrowthPolicy(t *testing.T) {
	t.Run("Growable", func(t *testing.T) {
		h := MustNew(axis.NewCategory("proc"))
		fillLabels(t, h, "proc", "A")

		data, err := accum.Encode(nil, h)
		require.NoError(t, err)

		v, err := accum.Decode(nil, data)
		require.NoError(t, err)

		got := v.(*Histogram)
		require.NoError(t, got.Fill(columns.Sample{"proc": columns.Label("B")}))

		labels, err := got.Identifiers("proc")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, labels)
	})

	t.Run("Fixed", func(t *testing.T) {
		h := MustNew(axis.NewFixedCategory("proc", "A"))

		data, err := accum.Encode(nil, h)
		require.NoError(t, err)

		v, err := accum.Decode(nil, data)
		require.NoError(t, err)

		got := v.(*Histogram)
		err = got.Fill(columns.Sample{"proc": columns.Label("B")})

		var unknown *axis.ErrUnknownLabel
		require.ErrorAs(t, err, &unknown)
	})
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	c := codec.Default

	tests := []struct {
		name    string
		payload histPayload
		want    string
	}{
		{
			name: "CellCountMismatch",
			payload: histPayload{
				Axes: []axisPayload{{Kind: "numeric", Name: "x", Edges: []float64{0, 1}}},
				Sumw: []float64{1, 2, 3, 4, 5},
			},
			want: "cells",
		},
		{
			name: "SquaredWeightMismatch",
			payload: histPayload{
				Axes:  []axisPayload{{Kind: "numeric", Name: "x", Edges: []float64{0, 1}}},
				Sumw:  []float64{1, 2, 3},
				Sumw2: []float64{1},
			},
			want: "squared-weight",
		},
		{
			name: "UnknownAxisKind",
			payload: histPayload{
				Axes: []axisPayload{{Kind: "polar", Name: "x"}},
			},
			want: `unknown kind "polar"`,
		},
		{
			name: "BadEdges",
			payload: histPayload{
				Axes: []axisPayload{{Kind: "numeric", Name: "x", Edges: []float64{1, 0}}},
			},
			want: `axis "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := c.Marshal(tt.payload)
			require.NoError(t, err)

			_, err = decodeHist(c, raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
