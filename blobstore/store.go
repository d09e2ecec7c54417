package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// CurrentName is the well-known blob that names the latest committed
// snapshot manifest. Stores with an atomic commit log treat reads and
// writes of it specially.
const CurrentName = "CURRENT"

// BlobStore is an abstraction for storing immutable blobs: spilled task
// results, run manifests and other run artifacts. Implementations must be
// safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens a blob for streaming writes. The content becomes
	// visible to readers when Close returns nil.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob in one shot. Readers see either the previous
	// content or all of data, never a partial write.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob.
	Delete(ctx context.Context, name string) error

	// List returns the blob names under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off. It returns io.EOF
	// when the blob ends before p is filled.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange returns a reader over [off, off+length), truncated at the
	// end of the blob. An offset at or past the end returns io.EOF.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	// Close releases the handle.
	Close() error
}

// WritableBlob is a streaming write handle returned by Create.
type WritableBlob interface {
	io.Writer

	// Sync flushes written data to stable storage where the backend
	// supports it. Object stores commit only on Close and treat Sync as
	// a no-op.
	Sync() error

	// Close finalizes the blob. The content is not visible until Close
	// returns nil.
	Close() error
}

// Aborter is an optional interface for WritableBlobs that can drop an
// in-progress write without committing it. Callers abandoning a blob, for
// example on run cancellation, should prefer Abort over Close so no
// partial artifact becomes visible.
type Aborter interface {
	Abort() error
}

// Mappable is an optional interface for Blobs whose content is addressable
// as a single byte slice.
type Mappable interface {
	// Bytes returns the underlying byte slice, valid until the Blob is
	// closed. This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// ReadAll fetches the whole content of the named blob.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	if m, ok := b.(Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
	}

	data := make([]byte, b.Size())
	if len(data) == 0 {
		return data, nil
	}

	if _, err := b.ReadAt(ctx, data, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return data, nil
}
