package columns

import (
	"context"
	"fmt"
)

// Chunk describes a bounded slice of an event source processed as one unit of
// work. Chunks are opaque to executors; only the owning Source interprets
// them.
type Chunk struct {
	// Start is the first event of the chunk within the source.
	Start int64 `json:"start"`
	// Count is the number of events in the chunk.
	Count int64 `json:"count"`
}

// String implements fmt.Stringer.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk[%d:%d]", c.Start, c.Start+c.Count)
}

// Source supplies columnar event data in independent chunks.
//
// Implementations must be safe for concurrent Read calls: executors read
// chunks from multiple goroutines.
type Source interface {
	// Chunks partitions the source into chunks of at most chunkSize events.
	// A chunkSize <= 0 yields a single chunk covering everything.
	Chunks(ctx context.Context, chunkSize int64) ([]Chunk, error)

	// Read materializes one chunk as a Batch.
	Read(ctx context.Context, chunk Chunk) (*Batch, error)
}

// MemorySource is a Source over a single in-memory Batch. It is used by
// tests, examples and loopback workers.
type MemorySource struct {
	batch *Batch
}

// NewMemorySource creates a source over the given batch. The batch must not
// be mutated afterwards.
func NewMemorySource(batch *Batch) *MemorySource {
	return &MemorySource{batch: batch}
}

// Chunks partitions the batch into contiguous event ranges.
func (s *MemorySource) Chunks(_ context.Context, chunkSize int64) ([]Chunk, error) {
	total := int64(s.batch.Events())
	if chunkSize <= 0 || chunkSize >= total {
		if total == 0 {
			return nil, nil
		}
		return []Chunk{{Start: 0, Count: total}}, nil
	}

	chunks := make([]Chunk, 0, (total+chunkSize-1)/chunkSize)
	for start := int64(0); start < total; start += chunkSize {
		count := chunkSize
		if start+count > total {
			count = total - start
		}
		chunks = append(chunks, Chunk{Start: start, Count: count})
	}
	return chunks, nil
}

// Read returns the events [chunk.Start, chunk.Start+chunk.Count) of the
// underlying batch.
func (s *MemorySource) Read(_ context.Context, chunk Chunk) (*Batch, error) {
	return s.batch.Slice(chunk.Start, chunk.Count)
}
