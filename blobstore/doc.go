// Package blobstore provides the storage abstraction behind spilled task
// results and run artifacts.
//
// BlobStore is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and single-process runs
//   - LocalStore: local filesystem with mmap-backed reads
//   - s3.Store: Amazon S3 with range reads and parallel multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// CachingStore wraps any of these with a block-level cache, which pays off
// when reducers fetch overlapping ranges of the same spilled results.
//
// # Custom Implementations
//
// Implement the BlobStore interface to support other backends. For cloud
// backends, serve ReadRange with a ranged request so partial fetches do not
// download the whole blob.
package blobstore
