package modelbind

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Mapping is an insertion-ordered string-keyed map. It is the plain-data form
// of records and dictionaries produced by Marshal.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping { return &Mapping{values: map[string]any{}} }

// MappingOf builds a Mapping from alternating keys and values.
// It panics when a key is not a string or a value is missing.
func MappingOf(kv ...any) *Mapping {
	if len(kv)%2 != 0 {
		panic("modelbind: MappingOf requires key/value pairs")
	}
	m := NewMapping()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("modelbind: MappingOf key %v is not a string", kv[i]))
		}
		m.Set(k, kv[i+1])
	}
	return m
}

// Set stores v under k. A new key is appended; an existing key keeps its position.
func (m *Mapping) Set(k string, v any) *Mapping {
	if m.values == nil {
		m.values = map[string]any{}
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
	return m
}

func (m *Mapping) Get(k string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[k]
	return v, ok
}

func (m *Mapping) Has(k string) bool {
	_, ok := m.Get(k)
	return ok
}

// Delete removes k and reports whether it was present.
func (m *Mapping) Delete(k string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.values[k]; !ok {
		return false
	}
	delete(m.values, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (m *Mapping) Range(fn func(k string, v any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Copy returns a shallow copy.
func (m *Mapping) Copy() *Mapping {
	if m == nil {
		return nil
	}
	c := &Mapping{keys: append([]string(nil), m.keys...), values: make(map[string]any, len(m.values))}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// ToMap returns the entries as a Go map. Nested values are not converted.
func (m *Mapping) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

// Equal reports whether both mappings hold equal values under the same keys.
// Key order is not significant.
func (m *Mapping) Equal(o *Mapping) bool {
	if m.Len() != o.Len() {
		return false
	}
	eq := true
	m.Range(func(k string, v any) bool {
		ov, ok := o.Get(k)
		if !ok || !Equal(v, ov) {
			eq = false
		}
		return eq
	})
	return eq
}

// MarshalJSON writes the entries in insertion order. HTML characters are not
// escaped.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.MarshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.MarshalNoEscape(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("modelbind: key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders a mapping node in insertion order.
func (m *Mapping) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	m.Range(func(k string, v any) bool {
		kn := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		vn := &yaml.Node{}
		if err = vn.Encode(v); err != nil {
			err = fmt.Errorf("modelbind: key %q: %w", k, err)
			return false
		}
		node.Content = append(node.Content, kn, vn)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}
