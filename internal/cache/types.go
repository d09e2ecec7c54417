package cache

import "context"

// CacheKind separates key spaces that would otherwise collide on path and
// offset alone.
type CacheKind uint8

const (
	CacheKindUnknown CacheKind = iota
	// CacheKindBlock keys fixed-size byte ranges of stored blobs.
	CacheKindBlock
)

// CacheKey must be stable across processes for a given store layout.
type CacheKey struct {
	Kind CacheKind
	// Path identifies the source object, e.g. a blob name.
	Path string
	// Offset is a logical block identifier (byte offset or block index).
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may copy or retain; caller must
	// treat b as immutable afterwards.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources, e.g. background writers.
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
