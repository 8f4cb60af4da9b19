package types

import (
	"encoding/json"
	"sort"
)

// Facts is the ordered key/value map accumulated during a run.
// Re-setting an existing key updates its value but keeps its position.
type Facts struct {
	keys   []string
	values map[string]string
}

// NewFacts returns an empty facts map.
func NewFacts() *Facts {
	return &Facts{values: make(map[string]string)}
}

// Set inserts or updates a fact.
func (f *Facts) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns a fact's value.
func (f *Facts) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (f *Facts) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Len returns the number of facts.
func (f *Facts) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Map returns a copy of the facts as a plain map.
func (f *Facts) Map() map[string]string {
	m := make(map[string]string, len(f.values))
	for k, v := range f.values {
		m[k] = v
	}
	return m
}

// Env returns the facts as KEY=value pairs, sorted by key.
func (f *Facts) Env() []string {
	keys := f.Keys()
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+f.values[k])
	}
	return env
}

// Equal reports whether both maps hold the same key/value pairs.
func (f *Facts) Equal(other *Facts) bool {
	if f == nil || other == nil {
		return f.Len() == other.Len()
	}
	if len(f.values) != len(other.values) {
		return false
	}
	for k, v := range f.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the facts as a JSON object.
func (f *Facts) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.values)
}

// UnmarshalJSON decodes a JSON object. Key order is sorted since JSON objects
// carry no order.
func (f *Facts) UnmarshalJSON(data []byte) error {
	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	f.keys = keys
	f.values = m
	return nil
}
