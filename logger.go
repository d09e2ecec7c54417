package histgo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/histgo/executor"
)

// Logger wraps slog.Logger with histgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTasks adds a task-count field to the logger.
func (l *Logger) WithTasks(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("tasks", n),
	}
}

// WithChunkSize adds a chunk-size field to the logger.
func (l *Logger) WithChunkSize(n int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("chunk_size", n),
	}
}

// LogRunStarted logs the start of a run.
func (l *Logger) LogRunStarted(ctx context.Context, tasks int) {
	l.DebugContext(ctx, "run started",
		"tasks", tasks,
	)
}

// LogRunFinished logs the end of a run.
func (l *Logger) LogRunFinished(ctx context.Context, completed, failed int, duration time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "run failed",
			"completed", completed,
			"failed", failed,
			"duration", duration,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "run completed with failures",
			"completed", completed,
			"failed", failed,
			"duration", duration,
		)
	default:
		l.InfoContext(ctx, "run completed",
			"completed", completed,
			"duration", duration,
		)
	}
}

// LogTaskFailure logs one failed task.
func (l *Logger) LogTaskFailure(ctx context.Context, te *executor.TaskError) {
	l.WarnContext(ctx, "task failed",
		"task", te.Index,
		"chunk", te.Chunk.String(),
		"error", te.Unwrap(),
	)
}

// LogStateChange logs a run state transition. Called from the executor's
// state callback, which carries no context.
func (l *Logger) LogStateChange(state executor.State) {
	l.Debug("run state changed",
		"state", state.String(),
	)
}
