// Package histgo provides functionalities for histogram runs over columnar
// event data.
//
// This file implements executor-specific fluent builder APIs for creating
// and configuring Runners. Builders are immutable - each method returns a
// new builder with the updated configuration.
package histgo

import (
	"github.com/hupe1980/histgo/blobstore"
	"github.com/hupe1980/histgo/codec"
	"github.com/hupe1980/histgo/executor"
	"github.com/hupe1980/histgo/executor/wire"
	"github.com/hupe1980/histgo/resource"
)

// =============================================================================
// Sequential Builder (Immutable)
// =============================================================================

// Sequential creates a builder for a Runner that executes tasks one after
// another on the calling goroutine. Deterministic order makes it the
// correctness baseline; use it for debugging and small inputs.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	r, err := histgo.Sequential().
//	    ChunkSize(10_000).
//	    BestEffort(true).
//	    Build()
func Sequential() SequentialBuilder {
	return SequentialBuilder{chunkSize: DefaultChunkSize}
}

// SequentialBuilder is an immutable fluent builder for sequential Runners.
// Each method returns a new builder with the updated configuration.
type SequentialBuilder struct {
	chunkSize       int64
	maxChunks       int
	bestEffort      bool
	partialOnCancel bool
	logger          *Logger
	metrics         MetricsCollector
}

// ChunkSize sets the number of events per task.
func (b SequentialBuilder) ChunkSize(n int64) SequentialBuilder {
	b.chunkSize = n
	return b
}

// MaxChunks caps the number of chunks consumed from the source.
// Default: 0 (no cap).
func (b SequentialBuilder) MaxChunks(n int) SequentialBuilder {
	b.maxChunks = n
	return b
}

// BestEffort enables or disables best-effort runs: failures are recorded
// instead of aborting the run.
// Default: false (fail fast).
func (b SequentialBuilder) BestEffort(enabled bool) SequentialBuilder {
	b.bestEffort = enabled
	return b
}

// PartialOnCancel keeps partials merged before a cancellation instead of
// discarding them.
// Default: false.
func (b SequentialBuilder) PartialOnCancel(enabled bool) SequentialBuilder {
	b.partialOnCancel = enabled
	return b
}

// Logger sets the structured logger for run tracing.
func (b SequentialBuilder) Logger(l *Logger) SequentialBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b SequentialBuilder) Metrics(mc MetricsCollector) SequentialBuilder {
	b.metrics = mc
	return b
}

// Build creates the sequential Runner.
func (b SequentialBuilder) Build() (*Runner, error) {
	return newSequentialRunner(b.commonOptions())
}

// MustBuild creates the Runner, panicking on error.
func (b SequentialBuilder) MustBuild() *Runner {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

func (b SequentialBuilder) commonOptions() []Option {
	opts := []Option{
		WithChunkSize(b.chunkSize),
		WithMaxChunks(b.maxChunks),
		WithBestEffort(b.bestEffort),
		WithPartialOnCancel(b.partialOnCancel),
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetrics(b.metrics))
	}
	return opts
}

// =============================================================================
// Pool Builder (Immutable)
// =============================================================================

// Pool creates a builder for a Runner backed by a fixed pool of worker
// goroutines. Tasks run concurrently; partials are folded by the calling
// goroutine as they complete.
//
// workers of 0 or less means GOMAXPROCS. The built Runner owns the pool and
// must be Close()'d.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	r, err := histgo.Pool(8).
//	    ChunkSize(100_000).
//	    Metrics(metrics).
//	    Build()
//	if err != nil { ... }
//	defer r.Close()
func Pool(workers int) PoolBuilder {
	return PoolBuilder{workers: workers, chunkSize: DefaultChunkSize}
}

// PoolBuilder is an immutable fluent builder for pool-backed Runners.
// Each method returns a new builder with the updated configuration.
type PoolBuilder struct {
	workers         int
	chunkSize       int64
	maxChunks       int
	bestEffort      bool
	partialOnCancel bool
	logger          *Logger
	metrics         MetricsCollector
}

// ChunkSize sets the number of events per task.
func (b PoolBuilder) ChunkSize(n int64) PoolBuilder {
	b.chunkSize = n
	return b
}

// MaxChunks caps the number of chunks consumed from the source.
// Default: 0 (no cap).
func (b PoolBuilder) MaxChunks(n int) PoolBuilder {
	b.maxChunks = n
	return b
}

// BestEffort enables or disables best-effort runs: failures are recorded
// instead of aborting the run.
// Default: false (fail fast).
func (b PoolBuilder) BestEffort(enabled bool) PoolBuilder {
	b.bestEffort = enabled
	return b
}

// PartialOnCancel keeps partials merged before a cancellation instead of
// discarding them.
// Default: false.
func (b PoolBuilder) PartialOnCancel(enabled bool) PoolBuilder {
	b.partialOnCancel = enabled
	return b
}

// Logger sets the structured logger for run tracing.
func (b PoolBuilder) Logger(l *Logger) PoolBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b PoolBuilder) Metrics(mc MetricsCollector) PoolBuilder {
	b.metrics = mc
	return b
}

// Build creates the pool-backed Runner.
func (b PoolBuilder) Build() (*Runner, error) {
	opts := []Option{
		WithChunkSize(b.chunkSize),
		WithMaxChunks(b.maxChunks),
		WithBestEffort(b.bestEffort),
		WithPartialOnCancel(b.partialOnCancel),
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetrics(b.metrics))
	}
	return newPoolRunner(b.workers, opts)
}

// MustBuild creates the Runner, panicking on error.
func (b PoolBuilder) MustBuild() *Runner {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// =============================================================================
// Cluster Builder (Immutable)
// =============================================================================

// Cluster creates a builder for a Runner that ships tasks to remote workers
// through the given Remote. Work runs under the named processor, which must
// be registered (executor.RegisterProcessor) in the worker binaries.
//
// The local processor passed to Run supplies the fold identity; its Process
// method is not called. Its accumulator kind must match what the remote
// processor produces.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	r, err := histgo.Cluster(remote, "physics.dimuon-mass").
//	    ChunkSize(1_000_000).
//	    ResultStore(store).
//	    Resources(resource.Config{MaxInFlight: 64, MemoryLimitBytes: 1 << 30}).
//	    Build()
func Cluster(remote executor.Remote, processor string) ClusterBuilder {
	return ClusterBuilder{
		remote:      remote,
		processor:   processor,
		chunkSize:   DefaultChunkSize,
		compression: wire.Zstd,
	}
}

// ClusterBuilder is an immutable fluent builder for distributed Runners.
// Each method returns a new builder with the updated configuration.
type ClusterBuilder struct {
	remote          executor.Remote
	processor       string
	chunkSize       int64
	maxChunks       int
	bestEffort      bool
	partialOnCancel bool
	codec           codec.Codec
	compression     wire.Compression
	store           blobstore.BlobStore
	runLog          executor.RunLog
	runID           string
	resources       resource.Config
	logger          *Logger
	metrics         MetricsCollector
}

// ChunkSize sets the number of events per task.
func (b ClusterBuilder) ChunkSize(n int64) ClusterBuilder {
	b.chunkSize = n
	return b
}

// MaxChunks caps the number of chunks consumed from the source.
// Default: 0 (no cap).
func (b ClusterBuilder) MaxChunks(n int) ClusterBuilder {
	b.maxChunks = n
	return b
}

// BestEffort enables or disables best-effort runs: failures are recorded
// instead of aborting the run.
// Default: false (fail fast).
func (b ClusterBuilder) BestEffort(enabled bool) ClusterBuilder {
	b.bestEffort = enabled
	return b
}

// PartialOnCancel keeps partials merged before a cancellation instead of
// discarding them.
// Default: false.
func (b ClusterBuilder) PartialOnCancel(enabled bool) ClusterBuilder {
	b.partialOnCancel = enabled
	return b
}

// Codec sets the codec for task specs and result envelopes.
// Default: codec.Default.
func (b ClusterBuilder) Codec(c codec.Codec) ClusterBuilder {
	b.codec = c
	return b
}

// Compression sets the frame compression.
// Default: Zstd.
func (b ClusterBuilder) Compression(comp wire.Compression) ClusterBuilder {
	b.compression = comp
	return b
}

// ResultStore sets the blob store spilled results are fetched from.
func (b ClusterBuilder) ResultStore(store blobstore.BlobStore) ClusterBuilder {
	b.store = store
	return b
}

// RunLog makes runs resumable: completed tasks are committed to the log and
// skipped by later attempts. Requires ResultStore; pair it with RunID so
// attempts share a namespace.
func (b ClusterBuilder) RunLog(log executor.RunLog) ClusterBuilder {
	b.runLog = log
	return b
}

// RunID pins the run identifier used in spill keys and the run log.
// Default: generated per run.
func (b ClusterBuilder) RunID(id string) ClusterBuilder {
	b.runID = id
	return b
}

// Resources bounds the run: in-flight tasks, buffered result bytes, fetch
// bandwidth.
func (b ClusterBuilder) Resources(cfg resource.Config) ClusterBuilder {
	b.resources = cfg
	return b
}

// Logger sets the structured logger for run tracing.
func (b ClusterBuilder) Logger(l *Logger) ClusterBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b ClusterBuilder) Metrics(mc MetricsCollector) ClusterBuilder {
	b.metrics = mc
	return b
}

// Build creates the distributed Runner.
func (b ClusterBuilder) Build() (*Runner, error) {
	opts := []Option{
		WithChunkSize(b.chunkSize),
		WithMaxChunks(b.maxChunks),
		WithBestEffort(b.bestEffort),
		WithPartialOnCancel(b.partialOnCancel),
		WithCompression(b.compression),
		WithResources(b.resources),
	}
	if b.codec != nil {
		opts = append(opts, WithCodec(b.codec))
	}
	if b.store != nil {
		opts = append(opts, WithResultStore(b.store))
	}
	if b.runLog != nil {
		opts = append(opts, WithRunLog(b.runLog))
	}
	if b.runID != "" {
		opts = append(opts, WithRunID(b.runID))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetrics(b.metrics))
	}
	return newClusterRunner(b.remote, b.processor, opts)
}

// MustBuild creates the Runner, panicking on error.
func (b ClusterBuilder) MustBuild() *Runner {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
