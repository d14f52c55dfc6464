// Package document provides the Document value type: a string-keyed nested
// container that is the in-memory form of a mapfile.
//
// After parsing, a Document holds only string leaves and nested *Document
// values. Numeric or collection interpretation is always a property of the
// accessor, not of the stored data: GetInt parses the stored string on every
// call, GetList reinterprets a nested Document whose keys are decimal
// indices, and GetSet does the same while discarding the keys.
//
// Documents built programmatically for writing may hold a wider set of
// values (numbers, slices, sets, maps); the writer in the root package
// reduces those to the stored form.
package document

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Document is a mapping from string keys to values. Keys are unique and
// insertion order is not significant; Keys returns them sorted so that
// iteration and serialization are deterministic.
//
// A Document is not safe for concurrent mutation. Once populated (by the
// parser or by the caller) it may be read concurrently.
type Document struct {
	entries map[string]any
}

// New creates an empty Document.
func New() *Document {
	return &Document{entries: make(map[string]any)}
}

// FromMap creates a Document by copying the entries of m, converting each
// key to its string form.
func FromMap[K comparable, V any](m map[K]V) *Document {
	d := &Document{entries: make(map[string]any, len(m))}
	for k, v := range m {
		d.entries[stringify(k)] = v
	}
	return d
}

// fromMapValue copies an arbitrary map value into a fresh Document,
// converting keys to their string form. Returns false if v is not a map.
func fromMapValue(v any) (*Document, bool) {
	if d, ok := v.(*Document); ok {
		return d, true
	}
	if m, ok := v.(map[string]any); ok {
		d := &Document{entries: make(map[string]any, len(m))}
		for k, val := range m {
			d.entries[k] = val
		}
		return d, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, false
	}
	d := &Document{entries: make(map[string]any, rv.Len())}
	iter := rv.MapRange()
	for iter.Next() {
		d.entries[stringify(iter.Key().Interface())] = iter.Value().Interface()
	}
	return d, true
}

// Set stores value under key, replacing any existing entry.
func (d *Document) Set(key string, value any) {
	if d.entries == nil {
		d.entries = make(map[string]any)
	}
	d.entries[key] = value
}

// Get returns the raw value for key and whether it is present.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.entries)
}

// Keys returns all keys in ascending sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns the document as a plain nested map. Nested Documents are
// converted recursively; all other values are copied as-is.
func (d *Document) Map() map[string]any {
	m := make(map[string]any, len(d.entries))
	for k, v := range d.entries {
		if nested, ok := v.(*Document); ok {
			m[k] = nested.Map()
		} else {
			m[k] = v
		}
	}
	return m
}

// String returns a deterministic debug form with keys in sorted order.
func (d *Document) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, d.entries[k])
	}
	b.WriteByte('}')
	return b.String()
}

// value returns the entry for key or a KeyNotFoundError.
func (d *Document) value(key string) (any, error) {
	v, ok := d.entries[key]
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return v, nil
}

// GetString returns the value for key in its generic string form. If the
// value is a nested Document its textual form is returned; accessors never
// silently traverse.
func (d *Document) GetString(key string) (string, error) {
	v, err := d.value(key)
	if err != nil {
		return "", err
	}
	return stringify(v), nil
}

// GetInt returns the value for key parsed as a base-10 integer. Values
// that are already integers are returned directly; anything else is parsed
// from its string form.
func (d *Document) GetInt(key string) (int, error) {
	v, err := d.value(key)
	if err != nil {
		return 0, err
	}
	return toInt(key, v)
}

// GetDocument returns the value for key as a Document. A nested Document
// is returned as-is; any other map value is copied into a fresh Document
// with keys converted to their string form.
func (d *Document) GetDocument(key string) (*Document, error) {
	v, err := d.value(key)
	if err != nil {
		return nil, err
	}
	if nested, ok := fromMapValue(v); ok {
		return nested, nil
	}
	return nil, &TypeMismatchError{Key: key, Expected: "map", Actual: typeOf(v)}
}

// GetList returns the value for key as an ordered sequence. A nested
// Document is decoded by treating its keys as decimal indices: the result
// is padded with nil up to the highest index encountered, and a duplicate
// index keeps the last value assigned. Slices are copied element-wise.
func (d *Document) GetList(key string) ([]any, error) {
	v, err := d.value(key)
	if err != nil {
		return nil, err
	}
	return toList(key, v)
}

func toList(key string, v any) ([]any, error) {
	switch tv := v.(type) {
	case []any:
		out := make([]any, len(tv))
		copy(out, tv)
		return out, nil
	case *Document:
		return listFromDocument(key, tv)
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Map:
			if nested, ok := fromMapValue(v); ok {
				if isSetMap(rv) {
					return nil, &TypeMismatchError{Key: key, Expected: "list", Actual: typeOf(v)}
				}
				return listFromDocument(key, nested)
			}
		case reflect.Slice, reflect.Array:
			if _, isBytes := v.([]byte); !isBytes {
				out := make([]any, rv.Len())
				for i := 0; i < rv.Len(); i++ {
					out[i] = rv.Index(i).Interface()
				}
				return out, nil
			}
		}
	}
	return nil, &TypeMismatchError{Key: key, Expected: "list", Actual: typeOf(v)}
}

// listFromDocument reconstructs an ordered sequence from a Document whose
// keys are decimal indices.
func listFromDocument(key string, d *Document) ([]any, error) {
	var out []any
	for _, k := range d.Keys() {
		index, err := strconv.Atoi(k)
		if err != nil {
			return nil, &FormatError{Key: key, Value: k, Err: err}
		}
		if index < 0 {
			return nil, &FormatError{Key: key, Value: k, Err: fmt.Errorf("negative index")}
		}
		for index >= len(out) {
			out = append(out, nil)
		}
		out[index] = d.entries[k]
	}
	return out, nil
}

// GetSet returns the value for key as a set of leaf string forms. A nested
// Document is decoded by discarding its keys and collecting the values;
// slices and stored sets are copied with duplicates collapsed. Elements
// that are themselves Documents cannot be represented in an untyped set;
// use SetAs with a document-constructing Codec for those.
func (d *Document) GetSet(key string) (Set[string], error) {
	v, err := d.value(key)
	if err != nil {
		return nil, err
	}
	elems, err := setElements(key, v)
	if err != nil {
		return nil, err
	}
	set := make(Set[string], len(elems))
	for _, e := range elems {
		if _, ok := e.(*Document); ok {
			return nil, &TypeMismatchError{Key: key, Expected: "scalar set element", Actual: typeOf(e)}
		}
		set.Add(stringify(e))
	}
	return set, nil
}

// setElements collects the candidate elements of a set-shaped value. Keys
// of map-shaped values are discarded; only values are kept. Maps with
// struct{} values are treated as stored sets and their keys are the
// elements.
func setElements(key string, v any) ([]any, error) {
	switch tv := v.(type) {
	case *Document:
		elems := make([]any, 0, tv.Len())
		for _, k := range tv.Keys() {
			elems = append(elems, tv.entries[k])
		}
		return elems, nil
	case []any:
		return append([]any(nil), tv...), nil
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Map:
			if isSetMap(rv) {
				elems := make([]any, 0, rv.Len())
				iter := rv.MapRange()
				for iter.Next() {
					elems = append(elems, iter.Key().Interface())
				}
				return elems, nil
			}
			elems := make([]any, 0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				elems = append(elems, iter.Value().Interface())
			}
			return elems, nil
		case reflect.Slice, reflect.Array:
			if _, isBytes := v.([]byte); !isBytes {
				elems := make([]any, rv.Len())
				for i := 0; i < rv.Len(); i++ {
					elems[i] = rv.Index(i).Interface()
				}
				return elems, nil
			}
		}
	}
	return nil, &TypeMismatchError{Key: key, Expected: "set", Actual: typeOf(v)}
}

// isSetMap reports whether rv is a map used as a set (struct{} values).
func isSetMap(rv reflect.Value) bool {
	return rv.Kind() == reflect.Map && rv.Type().Elem() == reflect.TypeOf(struct{}{})
}

// toInt converts a stored value to an integer, parsing its string form
// when it is not already an integer kind.
func toInt(key string, v any) (int, error) {
	rv := reflect.ValueOf(v)
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return int(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int(rv.Uint()), nil
		}
	}
	s := stringify(v)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &FormatError{Key: key, Value: s, Err: err}
	}
	return n, nil
}

// stringify returns the generic string form of a value.
func stringify(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case []byte:
		return string(tv)
	case fmt.Stringer:
		return tv.String()
	}
	return fmt.Sprint(v)
}

func typeOf(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
