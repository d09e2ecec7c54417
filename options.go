package histgo

import (
	"log/slog"

	"github.com/hupe1980/histgo/blobstore"
	"github.com/hupe1980/histgo/codec"
	"github.com/hupe1980/histgo/executor"
	"github.com/hupe1980/histgo/executor/wire"
	"github.com/hupe1980/histgo/resource"
)

type options struct {
	chunkSize       int64
	maxChunks       int
	bestEffort      bool
	partialOnCancel bool
	logger          *Logger
	metrics         MetricsCollector
	codec           codec.Codec
	compression     wire.Compression
	store           blobstore.BlobStore
	runLog          executor.RunLog
	runID           string
	resources       resource.Config
}

// Option configures Runner construction.
//
// The fluent builders (Sequential, Pool, Cluster) cover the common cases;
// options exist so configuration can also be assembled programmatically, for
// example from a Config.
type Option func(*options)

// WithChunkSize configures the number of events per task. Smaller chunks
// spread better across workers, larger chunks amortize per-task overhead.
//
// A value of 0 or less leaves partitioning to the source, which for
// MemorySource means a single chunk.
func WithChunkSize(n int64) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithMaxChunks caps the number of chunks consumed from the source. Use it
// for partial runs over a prefix of the data, e.g. to validate a processor
// before committing to the full dataset.
//
// A value of 0 or less means no cap.
func WithMaxChunks(n int) Option {
	return func(o *options) {
		o.maxChunks = n
	}
}

// WithBestEffort keeps a run going when tasks fail: failures are recorded
// on the Result and every successful partial is still merged. Without it
// the first failure aborts the run.
func WithBestEffort(enabled bool) Option {
	return func(o *options) {
		o.bestEffort = enabled
	}
}

// WithPartialOnCancel keeps the partials merged before a cancellation
// instead of discarding them. The partial value covers an unspecified
// subset of chunks; use it for progress display, never for final results.
func WithPartialOnCancel(enabled bool) Option {
	return func(o *options) {
		o.partialOnCancel = enabled
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := histgo.NewJSONLogger(slog.LevelInfo)
//	r, _ := histgo.Pool(4).Logger(logger).Build()
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetrics configures a metrics collector for monitoring runs.
//
// Example with BasicMetricsCollector:
//
//	metrics := &histgo.BasicMetricsCollector{}
//	r, _ := histgo.Pool(4).Metrics(metrics).Build()
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Tasks: %d, Avg latency: %dns\n", stats.TaskCount, stats.TaskAvgNanos)
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithCodec configures the codec used for task specs and result envelopes
// on a Cluster runner.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the frame compression of a Cluster runner.
// Default: Zstd.
func WithCompression(comp wire.Compression) Option {
	return func(o *options) {
		o.compression = comp
	}
}

// WithResultStore configures the blob store spilled results are fetched
// from on a Cluster runner. Required when workers spill or when a run log
// is configured.
func WithResultStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithRunLog makes Cluster runs resumable: completed tasks are committed to
// the log and skipped by later attempts of the same run. Requires
// WithResultStore; pair it with WithRunID so attempts share a namespace.
func WithRunLog(log executor.RunLog) Option {
	return func(o *options) {
		o.runLog = log
	}
}

// WithRunID pins the run identifier used in spill keys and the run log.
// Leave unset for a generated one; set it when resuming.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithResources bounds a Cluster run: in-flight tasks, buffered result
// bytes, fetch bandwidth.
func WithResources(cfg resource.Config) Option {
	return func(o *options) {
		o.resources = cfg
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		chunkSize:   DefaultChunkSize,
		metrics:     NoopMetricsCollector{},
		logger:      NoopLogger(),
		compression: wire.Zstd,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
