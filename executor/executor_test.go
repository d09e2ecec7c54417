package executor

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/columns"
)

// sumProcessor folds the "v" column into a Sum. NaN values fail the task,
// which lets tests poison specific chunks.
type sumProcessor struct{}

func (sumProcessor) Accumulator() accum.Value { return accum.NewSum() }

func (sumProcessor) Process(_ context.Context, batch *columns.Batch) (accum.Value, error) {
	col, ok := batch.Column("v")
	if !ok {
		return nil, errors.New(`batch has no "v" column`)
	}

	s := accum.NewSum()
	for _, v := range col.F64 {
		if math.IsNaN(v) {
			return nil, errors.New("corrupt event: NaN value")
		}
		s.Add(v)
	}
	return s, nil
}

func init() {
	RegisterProcessor("test.sum", func() Processor { return sumProcessor{} })
}

// valueBatch builds a batch whose "v" column holds integral floats, so sums
// stay exact under any merge order. Returns the batch and its total.
func valueBatch(n int) (*columns.Batch, float64) {
	vals := make([]float64, n)
	var total float64
	for i := range vals {
		vals[i] = float64(i % 101)
		total += vals[i]
	}
	return columns.NewBatch(n).MustSet("v", columns.Float64s(vals)), total
}

// poisonedBatch is valueBatch with a NaN at the given event, failing the
// task that reads it.
func poisonedBatch(n, poison int) (*columns.Batch, float64) {
	vals := make([]float64, n)
	var total float64
	for i := range vals {
		vals[i] = float64(i % 101)
		total += vals[i]
	}
	total -= vals[poison]
	vals[poison] = math.NaN()
	return columns.NewBatch(n).MustSet("v", columns.Float64s(vals)), total
}

// makeTasks partitions a source into indexed tasks.
func makeTasks(t *testing.T, src columns.Source, chunkSize int64) []Task {
	t.Helper()

	chunks, err := src.Chunks(context.Background(), chunkSize)
	require.NoError(t, err)

	tasks := make([]Task, len(chunks))
	for i, c := range chunks {
		tasks[i] = Task{Index: i, Chunk: c}
	}
	return tasks
}

// sumFunc adapts sumProcessor to the Func signature over a source.
func sumFunc(src columns.Source) Func {
	return func(ctx context.Context, chunk columns.Chunk) (accum.Value, error) {
		batch, err := src.Read(ctx, chunk)
		if err != nil {
			return nil, err
		}
		return sumProcessor{}.Process(ctx, batch)
	}
}

func sumOf(v accum.Value) float64 {
	return v.(*accum.Sum).V
}
