// Package document provides Document, an immutable tree of configuration
// values with dotted-path and key access.
//
// A Document is produced by parsing a YAML, TOML, or JSON file whose top
// level is a mapping. Nested mappings are addressed with dots and sequence
// elements with numeric segments:
//
//	doc.Int("training.epochs")        // 20
//	doc.String("layers.0.activation") // "relu"
//	doc.Value("model.name")           // a top-level key that itself contains a dot
package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Document is an immutable mapping from string keys to values.
// Values are strings, numbers, bools, nil, nested map[string]any, or []any.
type Document struct {
	root map[string]any
}

// New creates a Document from a mapping. The input is deep-copied and
// mappings with non-string keys are normalized to string keys.
func New(m map[string]any) *Document {
	root := make(map[string]any, len(m))
	for k, v := range m {
		root[k] = normalize(v)
	}
	return &Document{root: root}
}

// FromValue creates a Document from a decoded value whose top level must be
// a mapping. It reports false for scalars, sequences, and nil.
func FromValue(v any) (*Document, bool) {
	switch m := normalize(v).(type) {
	case map[string]any:
		return &Document{root: m}, true
	default:
		return nil, false
	}
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	return len(d.root)
}

// Keys returns the top-level keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.root))
	for k := range d.root {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the top-level value stored under key, without splitting on dots.
func (d *Document) Value(key string) (any, bool) {
	v, ok := d.root[key]
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Get resolves a dotted path such as "b.c" or "layers.0.units".
func (d *Document) Get(path string) (any, bool) {
	v, ok := d.lookup(path, false)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// LookupFold resolves a dotted path comparing keys case-insensitively.
// Exact matches win over folded ones.
func (d *Document) LookupFold(path string) (any, bool) {
	v, ok := d.lookup(path, true)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Has reports whether a dotted path resolves to a value.
func (d *Document) Has(path string) bool {
	_, ok := d.lookup(path, false)
	return ok
}

// Sub returns the mapping at path as its own Document.
func (d *Document) Sub(path string) (*Document, bool) {
	v, ok := d.lookup(path, false)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return &Document{root: clone(m).(map[string]any)}, true
}

// String returns the value at path formatted as a string, or "" if unset.
func (d *Document) String(path string) string {
	v, ok := d.lookup(path, false)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// Int returns the integer at path, or 0 if unset or not a whole number.
func (d *Document) Int(path string) int {
	v, ok := d.lookup(path, false)
	if !ok {
		return 0
	}
	n, _ := toInt(v)
	return n
}

// Float returns the number at path, or 0 if unset or not numeric.
func (d *Document) Float(path string) float64 {
	v, ok := d.lookup(path, false)
	if !ok {
		return 0
	}
	f, _ := toFloat(v)
	return f
}

// Bool returns the boolean at path, or false if unset or not a bool.
func (d *Document) Bool(path string) bool {
	v, ok := d.lookup(path, false)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Strings returns the sequence at path as strings. Non-string elements are
// formatted with fmt.Sprint.
func (d *Document) Strings(path string) []string {
	v, ok := d.lookup(path, false)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
			continue
		}
		result = append(result, fmt.Sprint(item))
	}
	return result
}

// Map returns a deep copy of the underlying mapping.
func (d *Document) Map() map[string]any {
	return clone(d.root).(map[string]any)
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.root)
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (any, error) {
	return d.root, nil
}

func (d *Document) lookup(path string, fold bool) (any, bool) {
	if d == nil {
		return nil, false
	}
	if path == "" {
		return d.root, true
	}

	var cur any = d.root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok && fold {
				next, ok = foldKey(node, seg)
			}
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func foldKey(m map[string]any, key string) (any, bool) {
	folder := cases.Fold()
	want := folder.String(key)
	// Sorted iteration keeps the match deterministic when several keys fold together.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if folder.String(k) == want {
			return m[k], true
		}
	}
	return nil, false
}
