// Package columns defines the columnar event-data contract between event
// sources, processors and histograms.
//
// An event source exposes its data as a sequence of Chunks. Reading a Chunk
// yields a Batch: a set of named, parallel Columns covering the same events.
// A Column is either one float64 per event, one label per event, or a jagged
// group (a variable number of float64 elements per event sharing one flat
// buffer plus offsets).
//
// # Built-in Implementations
//
//   - MemorySource: a Source over an in-memory Batch, used by tests, examples
//     and loopback workers.
//
// # Custom Implementations
//
// Implement the Source interface to read events from files, databases or
// object stores:
//
//	type Source interface {
//	    Chunks(ctx, chunkSize) ([]Chunk, error)  // Partition into chunks
//	    Read(ctx, chunk) (*Batch, error)         // Materialize one chunk
//	}
package columns
