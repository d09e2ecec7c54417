package executor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Loopback is a Remote that runs every submission in-process on a Worker.
// It stands in for a real cluster in tests and examples, and serves
// single-machine runs that still want the full wire path (spilling
// included).
type Loopback struct {
	worker *Worker
	g      *errgroup.Group
}

var _ Remote = (*Loopback)(nil)

// NewLoopback creates a loopback remote over the worker, running at most
// limit submissions concurrently. A limit of 0 or less means unlimited.
func NewLoopback(worker *Worker, limit int) *Loopback {
	g := &errgroup.Group{}
	if limit > 0 {
		g.SetLimit(limit)
	}

	return &Loopback{worker: worker, g: g}
}

// Submit implements Remote. It blocks while the concurrency limit is
// saturated, which gives the coordinator the same backpressure a real
// cluster ingress would.
func (l *Loopback) Submit(ctx context.Context, payload []byte) (Future, error) {
	f := &loopbackFuture{done: make(chan struct{})}

	l.g.Go(func() error {
		f.resp, f.err = l.worker.Handle(ctx, payload)
		close(f.done)
		return nil
	})

	return f, nil
}

// Wait blocks until every submitted task has finished. Tests use it to
// assert on worker side effects such as spilled blobs.
func (l *Loopback) Wait() {
	// Handle errors travel through futures; the group never records any.
	_ = l.g.Wait()
}

type loopbackFuture struct {
	done chan struct{}
	resp []byte
	err  error
}

// Await implements Future.
func (f *loopbackFuture) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.resp, f.err
	}
}
