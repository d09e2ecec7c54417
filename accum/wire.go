package accum

import (
	"fmt"
	"sync"

	"github.com/hupe1980/histgo/codec"
)

// Encodable is implemented by accumulator values that can cross a process
// boundary. The payload format is owned by the implementation; Encode wraps
// it in a self-describing envelope.
type Encodable interface {
	Value

	// EncodePayload serializes the accumulator state.
	EncodePayload(c codec.Codec) ([]byte, error)
}

// DecodeFunc reconstructs an accumulator from its payload.
type DecodeFunc func(c codec.Codec, payload []byte) (Value, error)

var (
	decoderMu sync.RWMutex
	decoders  = map[string]DecodeFunc{}
)

// RegisterKind registers a payload decoder under a kind name.
//
// Accumulator implementations should typically call this from an init()
// function; package hist registers the histogram kind this way.
func RegisterKind(name string, fn DecodeFunc) {
	decoderMu.Lock()
	defer decoderMu.Unlock()
	decoders[name] = fn
}

func init() {
	RegisterKind(KindSum.String(), func(c codec.Codec, payload []byte) (Value, error) {
		s := NewSum()
		if err := c.Unmarshal(payload, s); err != nil {
			return nil, err
		}
		return s, nil
	})
	RegisterKind(KindCount.String(), func(c codec.Codec, payload []byte) (Value, error) {
		n := NewCount()
		if err := c.Unmarshal(payload, n); err != nil {
			return nil, err
		}
		return n, nil
	})
	RegisterKind(KindIDSet.String(), decodeIDSet)
	RegisterKind(KindMap.String(), decodeMap)
}

// envelope is the self-describing wire form of an accumulator.
type envelope struct {
	Kind    string `json:"kind"`
	Payload []byte `json:"payload,omitempty"`
}

// Encode serializes a value into a self-describing envelope. It fails for
// kinds without wire support (List, Set).
func Encode(c codec.Codec, v Value) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}

	enc, ok := v.(Encodable)
	if !ok {
		return nil, fmt.Errorf("accumulator kind %s is not wire-encodable", kindOf(v))
	}

	payload, err := enc.EncodePayload(c)
	if err != nil {
		return nil, err
	}

	return c.Marshal(envelope{Kind: v.Kind().String(), Payload: payload})
}

// Decode reconstructs a value from an envelope produced by Encode with the
// same codec.
func Decode(c codec.Codec, data []byte) (Value, error) {
	if c == nil {
		c = codec.Default
	}

	var env envelope
	if err := c.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	decoderMu.RLock()
	fn, ok := decoders[env.Kind]
	decoderMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no decoder registered for accumulator kind %q", env.Kind)
	}

	return fn(c, env.Payload)
}
