package hist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/columns"
)

func TestNew(t *testing.T) {
	t.Run("ValidatesAxes", func(t *testing.T) {
		tests := []struct {
			name string
			axes []axis.Axis
			want string
		}{
			{name: "NilAxis", axes: []axis.Axis{nil}, want: "axis 0 is nil"},
			{name: "EmptyName", axes: []axis.Axis{axis.NewCategory("")}, want: "empty name"},
			{name: "DuplicateName", axes: []axis.Axis{axis.MustVariable("x", 0, 1), axis.NewCategory("x")}, want: `duplicate axis name "x"`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(tt.axes...)
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.want)
			})
		}
	})

	t.Run("ClonesAxes", func(t *testing.T) {
		cat := axis.NewCategory("proc")
		h := MustNew(cat)

		require.NoError(t, h.Fill(columns.Sample{"proc": columns.Label("A")}))

		assert.Equal(t, 0, cat.Extent(), "caller's axis must not grow")

		labels, err := h.Identifiers("proc")
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, labels)
	})

	t.Run("RankZero", func(t *testing.T) {
		h := MustNew()
		assert.Equal(t, 0, h.Rank())
		assert.Equal(t, []float64{0}, h.Counts())
	})
}

func TestFillNumeric(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1, 2, 3))

	for _, v := range []float64{-1, 0.5, 1.5, 1.5, 3.5} {
		require.NoError(t, h.Fill(columns.Sample{"x": columns.Float64(v)}))
	}

	assert.Equal(t, []float64{1, 1, 2, 0, 1}, h.Counts())
	assert.InDelta(t, 5, h.Sum(FlowInclude), 1e-12)
	assert.InDelta(t, 3, h.Sum(FlowExclude), 1e-12)
	assert.InDelta(t, 2, h.Sum(FlowOnly), 1e-12)
}

func TestFillNaNLandsInOverflow(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1, 2, 3))

	require.NoError(t, h.Fill(columns.Sample{"x": columns.Float64(math.NaN())}))

	assert.Equal(t, []float64{0, 0, 0, 0, 1}, h.Counts())
}

func TestFillCategoryGrows(t *testing.T) {
	h := MustNew(axis.NewCategory("proc"))

	for _, label := range []string{"A", "B", "A"} {
		require.NoError(t, h.Fill(columns.Sample{"proc": columns.Label(label)}))
	}

	labels, err := h.Identifiers("proc")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, labels)
	assert.Equal(t, []float64{2, 1}, h.Counts())
}

func TestFillGrowthKeepsContent(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1, 2), axis.NewCategory("proc"))

	batch := columns.NewBatch(3).
		MustSet("x", columns.Float64s([]float64{0.5, 1.5, 0.5})).
		MustSet("proc", columns.LabelColumn([]string{"A", "B", "A"}))

	require.NoError(t, h.FillBatch(batch))

	// Row-major, proc fastest: x extent 4, proc extent 2.
	assert.Equal(t, []float64{0, 0, 2, 0, 0, 1, 0, 0}, h.Counts())

	v, err := h.Cell(1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2, v, 1e-12)

	v, err = h.Cell(2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-12)
}

func TestFillFixedCategoryRejectsUnknown(t *testing.T) {
	h := MustNew(axis.NewFixedCategory("proc", "A", "B"))

	err := h.Fill(columns.Sample{"proc": columns.Label("C")})

	var unknown *axis.ErrUnknownLabel
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "C", unknown.Label)

	assert.Equal(t, []float64{0, 0}, h.Counts(), "failed fill must not accumulate")
}

func TestFillValidatesBeforeGrowing(t *testing.T) {
	h := MustNew(axis.NewCategory("g"), axis.NewFixedCategory("f", "A"))

	batch := columns.NewBatch(2).
		MustSet("g", columns.LabelColumn([]string{"X", "Y"})).
		MustSet("f", columns.LabelColumn([]string{"A", "C"}))

	err := h.FillBatch(batch)

	var unknown *axis.ErrUnknownLabel
	require.ErrorAs(t, err, &unknown)

	labels, err := h.Identifiers("g")
	require.NoError(t, err)
	assert.Empty(t, labels, "growable axis must not grow when the fill fails")
}

func TestFillErrors(t *testing.T) {
	t.Run("MissingColumn", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))

		err := h.Fill(columns.Sample{"y": columns.Float64(1)})

		var missing *ErrMissingColumn
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "x", missing.Column)
	})

	t.Run("LabelOnNumericAxis", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))

		err := h.Fill(columns.Sample{"x": columns.Label("A")})

		var mismatch *ErrShapeMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "x", mismatch.Column)
	})

	t.Run("LabelColumnOnNumericAxis", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))

		batch := columns.NewBatch(1).
			MustSet("x", columns.LabelColumn([]string{"A"}))

		var mismatch *ErrShapeMismatch
		require.ErrorAs(t, h.FillBatch(batch), &mismatch)
	})

	t.Run("NumericColumnOnCategoryAxis", func(t *testing.T) {
		h := MustNew(axis.NewCategory("proc"))

		batch := columns.NewBatch(1).
			MustSet("proc", columns.Float64s([]float64{1}))

		var mismatch *ErrShapeMismatch
		require.ErrorAs(t, h.FillBatch(batch), &mismatch)
	})

	t.Run("NilBatch", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))
		require.Error(t, h.FillBatch(nil))
	})
}

func TestFillWeighted(t *testing.T) {
	t.Run("ScalarWeight", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))

		require.NoError(t, h.Fill(columns.Sample{"x": columns.Float64(0.5)}))
		assert.False(t, h.Weighted())

		require.NoError(t, h.Fill(columns.Sample{"x": columns.Float64(0.5)}, func(o *FillOptions) {
			o.Weight = 2
		}))
		assert.True(t, h.Weighted())

		v, err := h.Cell(1)
		require.NoError(t, err)
		assert.InDelta(t, 3, v, 1e-12)

		// The unit fill before weighting contributes 1 to the squared
		// weights, the weighted fill contributes 4.
		s2, err := h.Variance(1)
		require.NoError(t, err)
		assert.InDelta(t, 5, s2, 1e-12)
	})

	t.Run("UnitScalarStaysUnweighted", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))

		require.NoError(t, h.Fill(columns.Sample{"x": columns.Float64(0.5)}, func(o *FillOptions) {
			o.Weight = 1
		}))

		assert.False(t, h.Weighted())

		s2, err := h.Variance(1)
		require.NoError(t, err)
		assert.InDelta(t, 1, s2, 1e-12, "unweighted variance falls back to the cell sum")
	})

	t.Run("PerEventWeights", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1, 2))

		batch := columns.NewBatch(2).
			MustSet("x", columns.Float64s([]float64{0.5, 1.5}))

		require.NoError(t, h.FillBatch(batch, func(o *FillOptions) {
			o.Weights = []float64{2, 3}
		}))

		assert.Equal(t, []float64{0, 2, 3, 0}, h.Counts())
		assert.Equal(t, []float64{0, 4, 9, 0}, h.Variances())
	})

	t.Run("WeightColumn", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1, 2))

		batch := columns.NewBatch(2).
			MustSet("x", columns.Float64s([]float64{0.5, 1.5})).
			MustSet("w", columns.Float64s([]float64{10, 20}))

		require.NoError(t, h.FillBatch(batch, func(o *FillOptions) {
			o.WeightColumn = "w"
		}))

		assert.Equal(t, []float64{0, 10, 20, 0}, h.Counts())
	})

	t.Run("WrongLength", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))

		batch := columns.NewBatch(2).
			MustSet("x", columns.Float64s([]float64{0.5, 0.5}))

		err := h.FillBatch(batch, func(o *FillOptions) {
			o.Weights = []float64{1, 2, 3}
		})

		var mismatch *ErrShapeMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, []float64{0, 0, 0}, h.Counts())
	})

	t.Run("ConflictingOptions", func(t *testing.T) {
		h := MustNew(axis.MustVariable("x", 0, 1))

		err := h.Fill(columns.Sample{"x": columns.Float64(0.5)}, func(o *FillOptions) {
			o.Weight = 2
			o.Weights = []float64{1}
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicting weight options")
	})
}

func TestFillJagged(t *testing.T) {
	newHist := func(t *testing.T) *Histogram {
		t.Helper()
		return MustNew(
			axis.MustVariable("jets", 0, 5, 10, 20),
			axis.MustVariable("met", 0, 1.5, 3),
		)
	}

	newBatch := func() *columns.Batch {
		return columns.NewBatch(2).
			MustSet("jets", columns.JaggedColumn([]float64{2.5, 7.5, 15}, []int64{0, 2, 3})).
			MustSet("met", columns.Float64s([]float64{1, 2}))
	}

	t.Run("BroadcastsFlatColumns", func(t *testing.T) {
		h := newHist(t)
		require.NoError(t, h.FillBatch(newBatch()))

		for _, c := range []struct {
			idx  []int
			want float64
		}{
			{idx: []int{1, 1}, want: 1},
			{idx: []int{2, 1}, want: 1},
			{idx: []int{3, 2}, want: 1},
		} {
			v, err := h.Cell(c.idx...)
			require.NoError(t, err)
			assert.InDelta(t, c.want, v, 1e-12, "cell %v", c.idx)
		}

		assert.InDelta(t, 3, h.Sum(FlowInclude), 1e-12)
	})

	t.Run("EventWeightsBroadcastPerElement", func(t *testing.T) {
		h := newHist(t)
		require.NoError(t, h.FillBatch(newBatch(), func(o *FillOptions) {
			o.Weights = []float64{10, 100}
		}))

		for _, c := range []struct {
			idx  []int
			want float64
		}{
			{idx: []int{1, 1}, want: 10},
			{idx: []int{2, 1}, want: 10},
			{idx: []int{3, 2}, want: 100},
		} {
			v, err := h.Cell(c.idx...)
			require.NoError(t, err)
			assert.InDelta(t, c.want, v, 1e-12, "cell %v", c.idx)
		}
	})

	t.Run("ElementWeights", func(t *testing.T) {
		h := newHist(t)
		require.NoError(t, h.FillBatch(newBatch(), func(o *FillOptions) {
			o.Weights = []float64{1, 2, 3}
		}))

		v, err := h.Cell(2, 1)
		require.NoError(t, err)
		assert.InDelta(t, 2, v, 1e-12)
	})

	t.Run("JaggedWeightColumn", func(t *testing.T) {
		h := newHist(t)

		batch := newBatch().
			MustSet("w", columns.JaggedColumn([]float64{1, 2, 3}, []int64{0, 2, 3}))

		require.NoError(t, h.FillBatch(batch, func(o *FillOptions) {
			o.WeightColumn = "w"
		}))

		v, err := h.Cell(3, 2)
		require.NoError(t, err)
		assert.InDelta(t, 3, v, 1e-12)
	})

	t.Run("OffsetsMustAgree", func(t *testing.T) {
		h := MustNew(
			axis.MustVariable("a", 0, 1),
			axis.MustVariable("b", 0, 1),
		)

		batch := columns.NewBatch(2).
			MustSet("a", columns.JaggedColumn([]float64{0.5, 0.5, 0.5}, []int64{0, 2, 3})).
			MustSet("b", columns.JaggedColumn([]float64{0.5, 0.5, 0.5}, []int64{0, 1, 3}))

		err := h.FillBatch(batch)

		var mismatch *ErrShapeMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Contains(t, mismatch.Detail, "share offsets")
	})

	t.Run("LabelsBroadcastPerEvent", func(t *testing.T) {
		h := MustNew(
			axis.MustVariable("jets", 0, 5, 10, 20),
			axis.NewCategory("proc"),
		)

		batch := columns.NewBatch(2).
			MustSet("jets", columns.JaggedColumn([]float64{2.5, 7.5, 15}, []int64{0, 2, 3})).
			MustSet("proc", columns.LabelColumn([]string{"A", "B"}))

		require.NoError(t, h.FillBatch(batch))

		// Both elements of event 0 land under label A.
		v, err := h.Cell(1, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1, v, 1e-12)

		v, err = h.Cell(2, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1, v, 1e-12)

		v, err = h.Cell(3, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1, v, 1e-12)
	})
}

func TestCellErrors(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1))

	_, err := h.Cell(0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank")

	_, err = h.Cell(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = h.Cell(-1)
	require.Error(t, err)
}

func TestCells(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1, 2))

	for _, v := range []float64{-5, 0.5, 1.5, 9} {
		require.NoError(t, h.Fill(columns.Sample{"x": columns.Float64(v)}))
	}

	collect := func(flow Flow) map[int]float64 {
		out := make(map[int]float64)
		for idx, v := range h.Cells(flow) {
			out[idx[0]] = v
		}
		return out
	}

	assert.Equal(t, map[int]float64{0: 1, 1: 1, 2: 1, 3: 1}, collect(FlowInclude))
	assert.Equal(t, map[int]float64{1: 1, 2: 1}, collect(FlowExclude))
	assert.Equal(t, map[int]float64{0: 1, 3: 1}, collect(FlowOnly))
}

func TestScale(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1))

	require.NoError(t, h.Fill(columns.Sample{"x": columns.Float64(0.5)}, func(o *FillOptions) {
		o.Weight = 2
	}))

	h.Scale(3)

	v, err := h.Cell(1)
	require.NoError(t, err)
	assert.InDelta(t, 6, v, 1e-12)

	s2, err := h.Variance(1)
	require.NoError(t, err)
	assert.InDelta(t, 36, s2, 1e-12, "squared weights scale by the square")
}

func TestScaleLabels(t *testing.T) {
	h := MustNew(axis.NewCategory("proc"))

	batch := columns.NewBatch(3).
		MustSet("proc", columns.LabelColumn([]string{"sig", "bkg", "bkg"}))

	require.NoError(t, h.FillBatch(batch))

	t.Run("UnknownLabelLeavesContent", func(t *testing.T) {
		err := h.ScaleLabels("proc", map[string]float64{"sig": 2, "nope": 3})

		var unknown *axis.ErrUnknownLabel
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, []float64{1, 2}, h.Counts())
	})

	t.Run("ScalesSelectedSlabs", func(t *testing.T) {
		require.NoError(t, h.ScaleLabels("proc", map[string]float64{"sig": 10}))
		assert.Equal(t, []float64{10, 2}, h.Counts())
	})
}

func TestIdentity(t *testing.T) {
	h := MustNew(axis.MustVariable("x", 0, 1), axis.NewCategory("proc"))

	require.NoError(t, h.Fill(columns.Sample{
		"x":    columns.Float64(0.5),
		"proc": columns.Label("A"),
	}))

	id, ok := h.Identity().(*Histogram)
	require.True(t, ok)

	labels, err := id.Identifiers("proc")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, labels, "identity keeps the axis definitions")
	assert.InDelta(t, 0, id.Sum(FlowInclude), 1e-12, "identity carries no content")

	require.NoError(t, id.Merge(h))
	assert.Equal(t, h.Counts(), id.Counts())
}
