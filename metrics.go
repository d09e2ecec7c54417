package histgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    runCounter    prometheus.Counter
//	    taskHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordTask(duration time.Duration, err error) {
//	    p.taskHistogram.Observe(duration.Seconds())
//	    // ... record error state etc.
//	}
type MetricsCollector interface {
	// RecordTask is called after each locally executed task. Runs on a
	// Cluster runner execute tasks remotely and do not report them here.
	RecordTask(duration time.Duration, err error)

	// RecordMerge is called once per run with the number of partials
	// folded into the result and the number of failed tasks.
	RecordMerge(merged, failed int)

	// RecordRun is called after each run.
	// tasks is the number of tasks dispatched, duration the total time
	// taken, err is nil if successful.
	RecordRun(tasks int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTask(time.Duration, error)     {}
func (NoopMetricsCollector) RecordMerge(int, int)                {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TaskCount      atomic.Int64
	TaskErrors     atomic.Int64
	TaskTotalNanos atomic.Int64
	MergedPartials atomic.Int64
	FailedTasks    atomic.Int64
	RunCount       atomic.Int64
	RunErrors      atomic.Int64
	RunTasks       atomic.Int64
	RunTotalNanos  atomic.Int64
}

// RecordTask implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTask(duration time.Duration, err error) {
	b.TaskCount.Add(1)
	b.TaskTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TaskErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(merged, failed int) {
	b.MergedPartials.Add(int64(merged))
	b.FailedTasks.Add(int64(failed))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(tasks int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTasks.Add(int64(tasks))
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TaskCount:      b.TaskCount.Load(),
		TaskErrors:     b.TaskErrors.Load(),
		TaskAvgNanos:   b.getAvgTaskNanos(),
		MergedPartials: b.MergedPartials.Load(),
		FailedTasks:    b.FailedTasks.Load(),
		RunCount:       b.RunCount.Load(),
		RunErrors:      b.RunErrors.Load(),
		RunTasks:       b.RunTasks.Load(),
		RunAvgNanos:    b.getAvgRunNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgTaskNanos() int64 {
	count := b.TaskCount.Load()
	if count == 0 {
		return 0
	}
	return b.TaskTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TaskCount      int64
	TaskErrors     int64
	TaskAvgNanos   int64
	MergedPartials int64
	FailedTasks    int64
	RunCount       int64
	RunErrors      int64
	RunTasks       int64
	RunAvgNanos    int64
}
