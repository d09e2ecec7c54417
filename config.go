package histgo

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/histgo/codec"
	"github.com/hupe1980/histgo/executor"
	"github.com/hupe1980/histgo/executor/wire"
	"github.com/hupe1980/histgo/resource"
)

// Config is the YAML run configuration. It covers everything a run needs
// that is expressible as data; collaborators that only exist as code (the
// Remote of a cluster run, result stores, run logs) attach through the
// builders.
//
// Example:
//
//	executor: pool
//	workers: 8
//	chunk_size: 131072
//	best_effort: true
//	log:
//	  level: info
//	  format: text
type Config struct {
	// Executor selects the execution strategy: "sequential", "pool" or
	// "cluster". Defaults to "sequential".
	Executor string `yaml:"executor"`

	// Workers is the pool size for the pool executor. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// ChunkSize is the number of events per task. 0 means DefaultChunkSize.
	ChunkSize int64 `yaml:"chunk_size"`

	// MaxChunks caps the chunks consumed from the source. 0 means no cap.
	MaxChunks int `yaml:"max_chunks"`

	// BestEffort records task failures and keeps merging instead of
	// aborting the run on the first one.
	BestEffort bool `yaml:"best_effort"`

	// PartialOnCancel keeps partials merged before a cancellation.
	PartialOnCancel bool `yaml:"partial_on_cancel"`

	// Codec names the wire codec of a cluster run ("json", "go-json").
	// Empty selects the default.
	Codec string `yaml:"codec"`

	// Compression names the wire compression of a cluster run ("none",
	// "lz4", "zstd"). Empty selects zstd.
	Compression string `yaml:"compression"`

	// RunID pins the run identifier of a cluster run. Empty means
	// generated.
	RunID string `yaml:"run_id"`

	// Resources bound a cluster run.
	Resources ResourceConfig `yaml:"resources"`

	// Log configures run logging.
	Log LogConfig `yaml:"log"`
}

// ResourceConfig is the YAML shape of resource.Config.
type ResourceConfig struct {
	MaxInFlight      int64 `yaml:"max_in_flight"`
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`
	FetchBytesPerSec int64 `yaml:"fetch_bytes_per_sec"`
}

// LogConfig selects the logger a config-built Runner uses.
type LogConfig struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	// Defaults to "info".
	Level string `yaml:"level"`

	// Format is "text", "json" or "off". Defaults to "off", matching the
	// builders' default of no logging.
	Format string `yaml:"format"`
}

const (
	// ExecutorSequential names the sequential execution strategy.
	ExecutorSequential = "sequential"
	// ExecutorPool names the worker-pool execution strategy.
	ExecutorPool = "pool"
	// ExecutorCluster names the distributed execution strategy.
	ExecutorCluster = "cluster"
)

// LoadConfig reads and validates a YAML run configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML run configuration.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// normalize lower-cases the enum fields and fills defaults, so hand-written
// configs are forgiving about case.
func (c *Config) normalize() {
	c.Executor = strings.ToLower(strings.TrimSpace(c.Executor))
	if c.Executor == "" {
		c.Executor = ExecutorSequential
	}

	c.Codec = strings.ToLower(strings.TrimSpace(c.Codec))
	c.Compression = strings.ToLower(strings.TrimSpace(c.Compression))

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = "off"
	}
}

// Validate checks the config for values no run could use.
func (c *Config) Validate() error {
	switch c.Executor {
	case ExecutorSequential, ExecutorPool, ExecutorCluster:
	default:
		return fmt.Errorf("unknown executor %q", c.Executor)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must not be negative, got %d", c.ChunkSize)
	}
	if c.MaxChunks < 0 {
		return fmt.Errorf("max_chunks must not be negative, got %d", c.MaxChunks)
	}

	if c.Codec != "" {
		if _, ok := codec.ByName(c.Codec); !ok {
			return fmt.Errorf("unknown codec %q", c.Codec)
		}
	}

	if c.Compression != "" {
		if _, err := wire.ParseCompression(c.Compression); err != nil {
			return err
		}
	}

	if c.Resources.MaxInFlight < 0 || c.Resources.MemoryLimitBytes < 0 || c.Resources.FetchBytesPerSec < 0 {
		return fmt.Errorf("resource limits must not be negative")
	}

	if _, err := c.logLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json", "off":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

// Options assembles the Runner options the config describes.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{
		WithMaxChunks(c.MaxChunks),
		WithBestEffort(c.BestEffort),
		WithPartialOnCancel(c.PartialOnCancel),
	}

	if c.ChunkSize > 0 {
		opts = append(opts, WithChunkSize(c.ChunkSize))
	}

	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}

	if c.Codec != "" {
		cd, ok := codec.ByName(c.Codec)
		if !ok {
			return nil, fmt.Errorf("unknown codec %q", c.Codec)
		}
		opts = append(opts, WithCodec(cd))
	}

	if c.Compression != "" {
		comp, err := wire.ParseCompression(c.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCompression(comp))
	}

	if c.RunID != "" {
		opts = append(opts, WithRunID(c.RunID))
	}

	if c.Resources != (ResourceConfig{}) {
		opts = append(opts, WithResources(resource.Config{
			MaxInFlight:      c.Resources.MaxInFlight,
			MemoryLimitBytes: c.Resources.MemoryLimitBytes,
			FetchBytesPerSec: c.Resources.FetchBytesPerSec,
		}))
	}

	return opts, nil
}

// Build creates the Runner the config describes. Cluster configs cannot be
// built directly, because the Remote only exists as code; seed a builder
// with Cluster instead.
func (c *Config) Build() (*Runner, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}

	switch c.Executor {
	case ExecutorSequential:
		return newSequentialRunner(opts)
	case ExecutorPool:
		return newPoolRunner(c.Workers, opts)
	case ExecutorCluster:
		return nil, fmt.Errorf("cluster configs need a Remote: use cfg.Cluster(remote, processor)")
	default:
		return nil, fmt.Errorf("unknown executor %q", c.Executor)
	}
}

// Cluster seeds a ClusterBuilder from the config. Collaborators YAML cannot
// express (result store, run log, metrics) attach through the builder:
//
//	cfg, _ := histgo.LoadConfig("run.yaml")
//	r, err := cfg.Cluster(remote, "physics.dimuon-mass").
//	    ResultStore(store).
//	    Build()
func (c *Config) Cluster(remote executor.Remote, processor string) ClusterBuilder {
	b := Cluster(remote, processor).
		ChunkSize(c.chunkSizeOrDefault()).
		MaxChunks(c.MaxChunks).
		BestEffort(c.BestEffort).
		PartialOnCancel(c.PartialOnCancel)

	if c.Codec != "" {
		if cd, ok := codec.ByName(c.Codec); ok {
			b = b.Codec(cd)
		}
	}

	if c.Compression != "" {
		if comp, err := wire.ParseCompression(c.Compression); err == nil {
			b = b.Compression(comp)
		}
	}

	if c.RunID != "" {
		b = b.RunID(c.RunID)
	}

	if c.Resources != (ResourceConfig{}) {
		b = b.Resources(resource.Config{
			MaxInFlight:      c.Resources.MaxInFlight,
			MemoryLimitBytes: c.Resources.MemoryLimitBytes,
			FetchBytesPerSec: c.Resources.FetchBytesPerSec,
		})
	}

	if logger, err := c.logger(); err == nil && logger != nil {
		b = b.Logger(logger)
	}

	return b
}

func (c *Config) chunkSizeOrDefault() int64 {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return DefaultChunkSize
}

func (c *Config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return level, nil
}

// logger builds the configured logger, nil for format "off".
func (c *Config) logger() (*Logger, error) {
	level, err := c.logLevel()
	if err != nil {
		return nil, err
	}

	switch c.Log.Format {
	case "text":
		return NewTextLogger(level), nil
	case "json":
		return NewJSONLogger(level), nil
	case "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Log.Format)
	}
}
