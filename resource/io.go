package resource

import (
	"context"
	"io"
)

// ThrottledReader applies the controller's fetch limit to an io.Reader. The
// read size is unknown up front, so each call reserves the full buffer
// length before reading.
type ThrottledReader struct {
	r   io.Reader
	c   *Controller
	ctx context.Context
}

// NewThrottledReader wraps r with the controller's fetch limit.
func NewThrottledReader(ctx context.Context, c *Controller, r io.Reader) *ThrottledReader {
	return &ThrottledReader{r: r, c: c, ctx: ctx}
}

func (t *ThrottledReader) Read(p []byte) (int, error) {
	if err := t.c.AcquireFetch(t.ctx, len(p)); err != nil {
		return 0, err
	}

	return t.r.Read(p)
}

// ThrottledWriter applies the controller's fetch limit to an io.Writer, for
// spilling results at a bounded rate.
type ThrottledWriter struct {
	w   io.Writer
	c   *Controller
	ctx context.Context
}

// NewThrottledWriter wraps w with the controller's fetch limit.
func NewThrottledWriter(ctx context.Context, c *Controller, w io.Writer) *ThrottledWriter {
	return &ThrottledWriter{w: w, c: c, ctx: ctx}
}

func (t *ThrottledWriter) Write(p []byte) (int, error) {
	if err := t.c.AcquireFetch(t.ctx, len(p)); err != nil {
		return 0, err
	}

	return t.w.Write(p)
}
