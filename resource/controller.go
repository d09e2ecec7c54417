// Package resource bounds what a run may consume on the coordinator:
// in-flight tasks, resident bytes (buffered results and cache blocks), and
// fetch bandwidth for spilled results.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds the resource limits of one run.
type Config struct {
	// MaxInFlight is the maximum number of tasks dispatched but not yet
	// reduced. If 0, defaults to 1.
	MaxInFlight int64

	// MemoryLimitBytes caps the bytes held in memory on behalf of the run:
	// result payloads awaiting reduction and cached blocks. If 0, usage is
	// tracked but not limited.
	MemoryLimitBytes int64

	// FetchBytesPerSec throttles fetches of spilled results from the
	// result store. If 0, unlimited.
	FetchBytesPerSec int64
}

// Controller enforces the limits in Config. Acquire methods block until the
// resource frees up or the context ends.
//
// All methods are safe on a nil *Controller and act as if no limits were
// configured, so callers can thread an optional controller without nil
// checks.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	slotSem *semaphore.Weighted

	fetchLimiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}

	c := &Controller{
		cfg:     cfg,
		slotSem: semaphore.NewWeighted(cfg.MaxInFlight),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.FetchBytesPerSec > 0 {
		c.fetchLimiter = rate.NewLimiter(rate.Limit(cfg.FetchBytesPerSec), int(cfg.FetchBytesPerSec))
	}

	return c
}

// AcquireSlot reserves one in-flight task slot, blocking while all slots are
// taken.
func (c *Controller) AcquireSlot(ctx context.Context) error {
	if c == nil {
		return nil
	}

	return c.slotSem.Acquire(ctx, 1)
}

// TryAcquireSlot reserves a slot without blocking.
func (c *Controller) TryAcquireSlot() bool {
	if c == nil {
		return true
	}

	return c.slotSem.TryAcquire(1)
}

// ReleaseSlot returns an in-flight task slot.
func (c *Controller) ReleaseSlot() {
	if c == nil {
		return
	}

	c.slotSem.Release(1)
}

// AcquireMemory reserves resident bytes. With a configured limit this blocks
// until enough bytes free up or ctx ends.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves resident bytes without blocking.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory returns reserved resident bytes.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}

	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the resident bytes currently held.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}

	return c.memUsed.Load()
}

// AcquireFetch waits until the fetch limit admits the given number of bytes.
// Requests larger than the limiter's burst are reserved in burst-sized
// steps, so callers may pass buffers of any size.
func (c *Controller) AcquireFetch(ctx context.Context, bytes int) error {
	if c == nil || c.fetchLimiter == nil {
		return nil
	}

	burst := c.fetchLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.fetchLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
