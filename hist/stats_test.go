package hist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/columns"
)

func TestStats(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1, 2, 3, 4))
	fillValues(t, h, "x", 0.5, 1.5, 1.5, 1.5)

	t.Run("Mean", func(t *testing.T) {
		m, err := h.Mean("x")
		require.NoError(t, err)
		assert.InDelta(t, 1.25, m, 1e-12)
	})

	t.Run("StdDev", func(t *testing.T) {
		s, err := h.StdDev("x")
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt(0.1875), s, 1e-12)
	})

	t.Run("Quantile", func(t *testing.T) {
		q, err := h.Quantile("x", 0.5)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, q, 1e-12)

		q, err = h.Quantile("x", 0.1)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, q, 1e-12)
	})

	t.Run("SentinelsHaveNoCenter", func(t *testing.T) {
		fillValues(t, h, "x", 100, -50)

		m, err := h.Mean("x")
		require.NoError(t, err)
		assert.InDelta(t, 1.25, m, 1e-12, "flow content along the profiled axis is excluded")
	})
}

func TestStatsProjection(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1, 2), axis.MustVariable("y", 0, 1))

	// The second event's y lands in overflow; its x still counts.
	batch := columns.NewBatch(2).
		MustSet("x", columns.Float64s([]float64{0.5, 1.5})).
		MustSet("y", columns.Float64s([]float64{0.5, 7}))

	require.NoError(t, h.FillBatch(batch))

	m, err := h.Mean("x")
	require.NoError(t, err)
	assert.InDelta(t, 1, m, 1e-12)
}

func TestStatsWeighted(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1, 2))

	batch := columns.NewBatch(2).
		MustSet("x", columns.Float64s([]float64{0.5, 1.5}))

	require.NoError(t, h.FillBatch(batch, func(o *FillOptions) {
		o.Weights = []float64{3, 1}
	}))

	m, err := h.Mean("x")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, m, 1e-12)
}

func TestStatsErrors(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1), axis.NewCategory("proc"))

	_, err := h.Mean("nope")
	require.Error(t, err)

	_, err = h.Mean("proc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")

	_, err = h.Quantile("x", 1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [0, 1]")
}
