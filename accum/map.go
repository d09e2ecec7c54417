package accum

import (
	"fmt"
	"iter"
	"sort"

	"github.com/hupe1980/histgo/codec"
)

// Map accumulates string-keyed values. Merging unions the key sets, merging
// values present on both sides with the value's own merge and passing
// one-sided values through unchanged.
//
// A Map built with NewDefaultMap carries a prototype: Get materializes a
// fresh prototype identity for missing keys, mirroring a defaultdict. The
// prototype is only ever used through its Identity method and must not be
// mutated.
type Map struct {
	entries map[string]Value
	proto   Value
}

var _ Encodable = (*Map)(nil)

// NewMap creates an empty map without a prototype.
func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

// NewDefaultMap creates an empty map whose Get materializes proto.Identity()
// for missing keys.
func NewDefaultMap(proto Value) *Map {
	return &Map{entries: make(map[string]Value), proto: proto}
}

// Get returns the value for key. On a map with a prototype, a missing key is
// populated with a fresh prototype identity; otherwise Get returns nil.
func (m *Map) Get(key string) Value {
	if v, ok := m.entries[key]; ok {
		return v
	}
	if m.proto == nil {
		return nil
	}
	v := m.proto.Identity()
	m.entries[key] = v
	return v
}

// Lookup returns the value for key without materializing defaults.
func (m *Map) Lookup(key string) (Value, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Set stores a value under key, replacing any previous entry.
func (m *Map) Set(key string, v Value) {
	m.entries[key] = v
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Keys returns the keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns an iterator over entries in sorted key order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range m.Keys() {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

// Kind returns KindMap.
func (m *Map) Kind() Kind { return KindMap }

// Identity returns a fresh empty map sharing the prototype.
func (m *Map) Identity() Value {
	return &Map{entries: make(map[string]Value), proto: m.proto}
}

// Merge folds the other map in. The receiver takes ownership of entries that
// only exist on the other side.
func (m *Map) Merge(other Value) error {
	o, ok := other.(*Map)
	if !ok {
		return &ErrKindMismatch{Want: KindMap, Got: kindOf(other)}
	}

	for k, ov := range o.entries {
		mine, ok := m.entries[k]
		if !ok {
			m.entries[k] = ov
			continue
		}
		if err := mine.Merge(ov); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	return nil
}

type mapPayload struct {
	Proto   []byte            `json:"proto,omitempty"`
	Entries map[string][]byte `json:"entries,omitempty"`
}

// EncodePayload implements Encodable. Every entry (and the prototype, if
// any) must itself be encodable.
func (m *Map) EncodePayload(c codec.Codec) ([]byte, error) {
	p := mapPayload{Entries: make(map[string][]byte, len(m.entries))}

	if m.proto != nil {
		b, err := Encode(c, m.proto)
		if err != nil {
			return nil, fmt.Errorf("prototype: %w", err)
		}
		p.Proto = b
	}

	for k, v := range m.entries {
		b, err := Encode(c, v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		p.Entries[k] = b
	}

	return c.Marshal(p)
}

func decodeMap(c codec.Codec, payload []byte) (Value, error) {
	var p mapPayload
	if err := c.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	m := NewMap()
	if p.Proto != nil {
		proto, err := Decode(c, p.Proto)
		if err != nil {
			return nil, fmt.Errorf("prototype: %w", err)
		}
		m.proto = proto
	}

	for k, b := range p.Entries {
		v, err := Decode(c, b)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		m.entries[k] = v
	}
	return m, nil
}
