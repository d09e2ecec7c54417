// Package wire defines the payloads exchanged between a run's coordinator
// and its workers.
//
// Every payload travels as a self-describing frame: a small header naming
// the codec and compression that produced the body, so a receiver never
// needs out-of-band knowledge of the sender's configuration. Changing a
// cluster's default codec or compression never strands in-flight frames.
package wire

import (
	"errors"
	"fmt"

	"github.com/hupe1980/histgo/codec"
	"github.com/hupe1980/histgo/columns"
	"github.com/hupe1980/histgo/internal/compress"
)

// Compression selects the frame body compression. The zero value stores
// bodies verbatim.
type Compression uint8

const (
	// None stores frame bodies uncompressed.
	None Compression = iota
	// LZ4 favors speed, for hot in-cluster traffic.
	LZ4
	// Zstd favors ratio, for large results crossing object storage.
	Zstd
)

// String implements fmt.Stringer.
func (c Compression) String() string {
	if !c.valid() {
		return fmt.Sprintf("compression(%d)", uint8(c))
	}

	return c.internal().String()
}

// ParseCompression resolves a compression name as it appears in run configs.
func ParseCompression(name string) (Compression, error) {
	t, err := compress.ParseType(name)
	if err != nil {
		return None, err
	}

	switch t {
	case compress.LZ4:
		return LZ4, nil
	case compress.Zstd:
		return Zstd, nil
	default:
		return None, nil
	}
}

func (c Compression) valid() bool {
	return c <= Zstd
}

func (c Compression) internal() compress.Type {
	switch c {
	case LZ4:
		return compress.LZ4
	case Zstd:
		return compress.Zstd
	default:
		return compress.None
	}
}

// TaskSpec is one unit of work sent to a worker.
type TaskSpec struct {
	// Run identifies the run the task belongs to. Workers namespace
	// spilled results under it.
	Run string `json:"run"`

	// Processor names the registered processor factory to run.
	Processor string `json:"processor"`

	// Task is the task index within the run.
	Task int `json:"task"`

	// Chunk is the slice of the worker's source to process.
	Chunk columns.Chunk `json:"chunk"`
}

// ResultEnvelope carries one task's outcome back to the coordinator.
//
// On success exactly one of Value and StoreKey is set; on failure Error is
// set and the rest is empty.
type ResultEnvelope struct {
	// Task echoes the task index of the spec that produced this result.
	Task int `json:"task"`

	// Codec names the codec that encoded the accumulator bytes in Value
	// or behind StoreKey.
	Codec string `json:"codec,omitempty"`

	// Value holds the encoded accumulator when it was small enough to
	// return inline.
	Value []byte `json:"value,omitempty"`

	// StoreKey names the blob the worker spilled the encoded accumulator
	// to when it exceeded the inline threshold.
	StoreKey string `json:"store_key,omitempty"`

	// Size is the byte size of a spilled result. The coordinator checks
	// it against what it fetched.
	Size int64 `json:"size,omitempty"`

	// Error is the task's failure message, empty on success.
	Error string `json:"error,omitempty"`
}

// Frame header: [version u8][compression u8][codec name length u8][codec name].
const frameVersion = 1

// Encode marshals v with the given codec, compresses the result, and
// prepends a header naming both.
func Encode(c codec.Codec, comp Compression, v any) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	if !comp.valid() {
		return nil, fmt.Errorf("unknown compression %d", comp)
	}

	body, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal frame body: %w", err)
	}

	packed, err := compress.Compress(body, comp.internal())
	if err != nil {
		return nil, fmt.Errorf("compress frame body: %w", err)
	}

	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec name %q too long for frame header", name)
	}

	frame := make([]byte, 0, 3+len(name)+len(packed))
	frame = append(frame, frameVersion, byte(comp), byte(len(name)))
	frame = append(frame, name...)
	frame = append(frame, packed...)
	return frame, nil
}

// Decode unmarshals a frame produced by Encode into v, resolving codec and
// compression from the header.
func Decode(frame []byte, v any) error {
	if len(frame) < 3 {
		return errors.New("wire frame too short")
	}
	if frame[0] != frameVersion {
		return fmt.Errorf("unsupported wire frame version %d", frame[0])
	}

	comp := Compression(frame[1])
	if !comp.valid() {
		return fmt.Errorf("unknown compression %d in frame header", frame[1])
	}

	nameLen := int(frame[2])
	if len(frame) < 3+nameLen {
		return errors.New("wire frame shorter than its header claims")
	}

	name := string(frame[3 : 3+nameLen])
	c, ok := codec.ByName(name)
	if !ok {
		return fmt.Errorf("frame codec %q is not registered", name)
	}

	body, err := compress.Decompress(frame[3+nameLen:], comp.internal())
	if err != nil {
		return fmt.Errorf("decompress frame body: %w", err)
	}

	return c.Unmarshal(body, v)
}
