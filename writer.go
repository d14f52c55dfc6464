package mapfile

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mapfile/go/document"
)

// Storable is implemented by value types that can reduce themselves to a
// plain map for storage. The writer calls ToMap and encodes the result;
// nested Storable values are reduced recursively. The type of the value
// is not recorded: reading it back is the caller's job, via a
// document.Codec for the type it expects.
type Storable interface {
	ToMap() map[string]any
}

// Marshal encodes a map-shaped value (a *document.Document, any map, or a
// Storable) as the canonical text form: one entry per line, keys in
// ascending sorted order, nested blocks delimited by "key=[" and "]".
// The output ends with a trailing newline.
func Marshal(v any) ([]byte, error) {
	lines, err := Lines(v)
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

// Lines encodes a map-shaped value as an ordered sequence of lines.
func Lines(v any) ([]string, error) {
	if s, ok := v.(Storable); ok {
		v = s.ToMap()
	}
	pairs, ok := mapPairs(v)
	if !ok {
		return nil, &UnsupportedTypeError{Type: valueType(v)}
	}
	var lines []string
	if err := appendMapLines(&lines, pairs); err != nil {
		return nil, err
	}
	return lines, nil
}

// LinesFromSeq encodes a sequence as lines using the index-keyed form:
// decimal indices starting at 0 become the keys. Reading the lines back
// produces a Document; GetList reverses the encoding.
func LinesFromSeq(elems []any) ([]string, error) {
	var lines []string
	if err := appendSeqLines(&lines, elems); err != nil {
		return nil, err
	}
	return lines, nil
}

// pair is a single map entry scheduled for emission.
type pair struct {
	key   string
	value any
}

// mapPairs extracts the entries of a map-shaped value sorted by key.
// Returns false for non-map values, including maps used as sets.
func mapPairs(v any) ([]pair, bool) {
	switch tv := v.(type) {
	case *document.Document:
		pairs := make([]pair, 0, tv.Len())
		for _, k := range tv.Keys() {
			val, _ := tv.Get(k)
			pairs = append(pairs, pair{key: k, value: val})
		}
		return pairs, true
	case map[string]any:
		pairs := make([]pair, 0, len(tv))
		for k, val := range tv {
			pairs = append(pairs, pair{key: k, value: val})
		}
		sortPairs(pairs)
		return pairs, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || isSetMap(rv) {
		return nil, false
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, ok := formatScalar(iter.Key().Interface())
		if !ok {
			key = fmt.Sprint(iter.Key().Interface())
		}
		pairs = append(pairs, pair{key: key, value: iter.Value().Interface()})
	}
	sortPairs(pairs)
	return pairs, true
}

func sortPairs(pairs []pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
}

func appendMapLines(dst *[]string, pairs []pair) error {
	for _, p := range pairs {
		if err := appendEntry(dst, p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}

func appendSeqLines(dst *[]string, elems []any) error {
	for i, e := range elems {
		if err := appendEntry(dst, strconv.Itoa(i), e); err != nil {
			return err
		}
	}
	return nil
}

// appendEntry emits one entry. Map-shaped, sequence-shaped, and set-shaped
// values open a nested block; everything else must be a scalar. Structural
// lines are never escaped.
func appendEntry(dst *[]string, key string, value any) error {
	if s, ok := value.(Storable); ok {
		value = s.ToMap()
	}

	if pairs, ok := mapPairs(value); ok {
		*dst = append(*dst, Escape(key)+"=[")
		if err := appendMapLines(dst, pairs); err != nil {
			return err
		}
		*dst = append(*dst, "]")
		return nil
	}

	if elems, ok := seqElements(value); ok {
		*dst = append(*dst, Escape(key)+"=[")
		if err := appendSeqLines(dst, elems); err != nil {
			return err
		}
		*dst = append(*dst, "]")
		return nil
	}

	scalar, ok := formatScalar(value)
	if !ok {
		return &UnsupportedTypeError{Type: valueType(value)}
	}
	*dst = append(*dst, Escape(key)+"="+Escape(scalar))
	return nil
}

// seqElements extracts the elements of a sequence- or set-shaped value.
// Slices and arrays keep their order; sets (maps with struct{} values)
// are sorted by the elements' scalar form so output is deterministic.
func seqElements(v any) ([]any, bool) {
	if elems, ok := v.([]any); ok {
		return elems, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if _, isBytes := v.([]byte); isBytes {
			return nil, false
		}
		elems := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = rv.Index(i).Interface()
		}
		return elems, true
	case reflect.Map:
		if !isSetMap(rv) {
			return nil, false
		}
		elems := make([]any, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			elems = append(elems, iter.Key().Interface())
		}
		sort.Slice(elems, func(i, j int) bool { return sortForm(elems[i]) < sortForm(elems[j]) })
		return elems, true
	}
	return nil, false
}

func sortForm(v any) string {
	if s, ok := formatScalar(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// isSetMap reports whether rv is a map used as a set (struct{} values).
func isSetMap(rv reflect.Value) bool {
	return rv.Kind() == reflect.Map && rv.Type().Elem() == reflect.TypeOf(struct{}{})
}

// formatScalar converts a value of one of the scalar writable shapes to
// its text form. Returns false for any other shape.
func formatScalar(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case []byte:
		return string(tv), true
	case bool:
		return strconv.FormatBool(tv), true
	case fmt.Stringer:
		return tv.String(), true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return "", false
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), true
	}
	return "", false
}

func valueType(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
