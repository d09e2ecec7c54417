package histgo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/columns"
	"github.com/hupe1980/histgo/executor"
)

// DefaultChunkSize is the number of events per task when no chunk size is
// configured.
const DefaultChunkSize int64 = 1 << 17

// Runner partitions an event source into chunks, maps a processor over the
// chunks on its executor, and folds the partial accumulators into one
// result.
//
// A Runner is safe for concurrent Run calls and is reusable across runs.
// Runners that own their executor (Pool builds one) must be Close()'d.
type Runner struct {
	exec      executor.Executor
	chunkSize int64
	maxChunks int
	logger    *Logger
	metrics   MetricsCollector
	closeExec func() // non-nil when the Runner owns the executor
}

// Run maps the processor over the source and returns the folded result.
//
// The returned value is the Result's accumulator: the complete fold on
// success, the merged-so-far partials on failure, and the kept or discarded
// partials per WithPartialOnCancel on cancellation. Check Result.State when
// consuming anything but a clean run.
func (r *Runner) Run(ctx context.Context, source columns.Source, processor executor.Processor) (accum.Value, *executor.Result, error) {
	start := time.Now()

	if source == nil {
		return nil, nil, errors.New("histgo: source is nil")
	}
	if processor == nil {
		return nil, nil, errors.New("histgo: processor is nil")
	}

	chunks, err := source.Chunks(ctx, r.chunkSize)
	if err != nil {
		err = translateError(fmt.Errorf("partition source: %w", err))
		r.metrics.RecordRun(0, time.Since(start), err)
		r.logger.LogRunFinished(ctx, 0, 0, time.Since(start), err)
		return nil, nil, err
	}
	if r.maxChunks > 0 && len(chunks) > r.maxChunks {
		chunks = chunks[:r.maxChunks]
	}

	tasks := make([]executor.Task, len(chunks))
	for i, c := range chunks {
		tasks[i] = executor.Task{Index: i, Chunk: c}
	}

	fn := func(ctx context.Context, chunk columns.Chunk) (accum.Value, error) {
		taskStart := time.Now()
		v, err := runTask(ctx, source, processor, chunk)
		r.metrics.RecordTask(time.Since(taskStart), err)
		return v, err
	}

	r.logger.LogRunStarted(ctx, len(tasks))

	res, err := r.exec.Execute(ctx, tasks, fn, processor.Accumulator())
	err = translateError(err)

	duration := time.Since(start)
	r.metrics.RecordRun(len(tasks), duration, err)

	if res == nil {
		r.logger.LogRunFinished(ctx, 0, 0, duration, err)
		return nil, nil, err
	}

	for _, te := range res.Failures {
		r.logger.LogTaskFailure(ctx, te)
	}
	r.metrics.RecordMerge(res.Stats.Completed, res.Stats.Failed)
	r.logger.LogRunFinished(ctx, res.Stats.Completed, res.Stats.Failed, duration, err)

	return res.Value, res, err
}

// Close releases the executor if the Runner owns it. Runners over a shared
// or caller-owned executor treat Close as a no-op, so deferring it is always
// safe.
func (r *Runner) Close() error {
	if r.closeExec != nil {
		r.closeExec()
		r.closeExec = nil
	}
	return nil
}

// runTask reads one chunk and processes it.
func runTask(ctx context.Context, source columns.Source, processor executor.Processor, chunk columns.Chunk) (accum.Value, error) {
	batch, err := source.Read(ctx, chunk)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", chunk, err)
	}
	return processor.Process(ctx, batch)
}

// newSequentialRunner is the internal constructor used by the Sequential
// builder.
func newSequentialRunner(optFns []Option) (*Runner, error) {
	opts := applyOptions(optFns)

	exec := executor.NewSequential(execOptions(opts))

	return &Runner{
		exec:      exec,
		chunkSize: opts.chunkSize,
		maxChunks: opts.maxChunks,
		logger:    opts.logger,
		metrics:   opts.metrics,
	}, nil
}

// newPoolRunner is the internal constructor used by the Pool builder. The
// Runner owns the pool; Close shuts it down.
func newPoolRunner(workers int, optFns []Option) (*Runner, error) {
	opts := applyOptions(optFns)

	pool := executor.NewPool(workers, execOptions(opts))

	return &Runner{
		exec:      pool,
		chunkSize: opts.chunkSize,
		maxChunks: opts.maxChunks,
		logger:    opts.logger,
		metrics:   opts.metrics,
		closeExec: pool.Close,
	}, nil
}

// newClusterRunner is the internal constructor used by the Cluster builder.
func newClusterRunner(remote executor.Remote, processor string, optFns []Option) (*Runner, error) {
	if remote == nil {
		return nil, errors.New("histgo: remote is nil")
	}
	if processor == "" {
		return nil, errors.New("histgo: processor name is empty")
	}

	opts := applyOptions(optFns)
	if opts.runLog != nil && opts.store == nil {
		return nil, errors.New("histgo: run log requires a result store")
	}

	exec := executor.NewDistributed(remote, processor, func(o *executor.DistributedOptions) {
		execOptions(opts)(&o.Options)
		o.Codec = opts.codec
		o.Compression = opts.compression
		o.Resources = opts.resources
		o.Store = opts.store
		o.RunLog = opts.runLog
		o.Run = opts.runID
	})

	return &Runner{
		exec:      exec,
		chunkSize: opts.chunkSize,
		maxChunks: opts.maxChunks,
		logger:    opts.logger,
		metrics:   opts.metrics,
	}, nil
}

// execOptions maps runner options onto the executor's, wiring state
// transitions to the logger.
func execOptions(opts options) func(*executor.Options) {
	logger := opts.logger
	return func(o *executor.Options) {
		o.BestEffort = opts.bestEffort
		o.PartialOnCancel = opts.partialOnCancel
		o.OnStateChange = logger.LogStateChange
	}
}
