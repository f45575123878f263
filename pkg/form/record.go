package form

import (
	"bytes"
	"encoding/json"
)

// Record is a string-keyed map that remembers insertion order. Extracted data
// follows the schema's own property declaration order, so serializing a
// Record twice over the same inputs produces identical bytes. Values may be
// scalars, nil, []any sequences, or nested *Record trees.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value. First insertion fixes the key's position; setting an
// existing key overwrites in place.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, seen := r.values[key]; !seen {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	value, ok := r.values[key]
	return value, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len returns the number of stored keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Map returns the record as plain nested maps and slices, losing key order.
func (r *Record) Map() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, len(r.keys))
	for _, key := range r.keys {
		out[key] = plainRecordValue(r.values[key])
	}
	return out
}

func plainRecordValue(value any) any {
	switch v := value.(type) {
	case *Record:
		return v.Map()
	case []any:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = plainRecordValue(entry)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON serializes the record with its keys in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
