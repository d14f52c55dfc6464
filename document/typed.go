package document

import (
	"fmt"
	"reflect"
	"strconv"
)

// Codec describes how to rebuild a value of type T from its stored form.
// A stored value is either a string leaf or a nested *Document; the codec
// supplies an explicit constructor for each shape it supports. A stored
// value that is already a T is returned without invoking either one.
//
// This replaces runtime constructor lookup with a statically supplied
// capability: value types export a Codec alongside their definition.
//
// Example:
//
//	var positionCodec = document.Codec[Position]{
//		FromDocument: func(d *document.Document) (Position, error) {
//			x, err := d.GetInt("x")
//			...
//		},
//	}
type Codec[T any] struct {
	// FromString constructs a T from a string leaf. Nil if the type has
	// no string representation.
	FromString func(string) (T, error)

	// FromDocument constructs a T from a nested Document. Nil if the type
	// has no document representation.
	FromDocument func(*Document) (T, error)
}

// construct converts a stored value to T. Errors returned by the codec's
// constructors are propagated unchanged.
func (c Codec[T]) construct(key string, v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var zero T
	switch tv := v.(type) {
	case string:
		if c.FromString == nil {
			return zero, &ConstructionError{Key: key, Type: typeName[T](), Reason: "no string constructor"}
		}
		return c.FromString(tv)
	case *Document:
		if c.FromDocument == nil {
			return zero, &ConstructionError{Key: key, Type: typeName[T](), Reason: "no document constructor"}
		}
		return c.FromDocument(tv)
	}
	return zero, &ConstructionError{
		Key:    key,
		Type:   typeName[T](),
		Reason: fmt.Sprintf("stored value has unsupported shape %s", typeOf(v)),
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Strings is a Codec for plain string leaves.
var Strings = Codec[string]{
	FromString: func(s string) (string, error) { return s, nil },
}

// Ints is a Codec for base-10 integer leaves.
var Ints = Codec[int]{
	FromString: strconv.Atoi,
}

// As returns the value for key converted to T via the codec. A value that
// is already a T is returned directly. Absent keys yield KeyNotFoundError;
// constructor failures are propagated unchanged.
func As[T any](d *Document, key string, c Codec[T]) (T, error) {
	v, err := d.value(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.construct(key, v)
}

// ListAs returns the value for key as a freshly built []T, decoding the
// ordered-sequence form (see GetList) and converting every element via
// the codec.
func ListAs[T any](d *Document, key string, c Codec[T]) ([]T, error) {
	elems, err := d.GetList(key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(elems))
	for i, e := range elems {
		item, err := c.construct(fmt.Sprintf("%s[%d]", key, i), e)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// SetAs returns the value for key as a freshly built Set[T], decoding the
// set form (keys discarded, see GetSet) and converting every element via
// the codec. Duplicate elements collapse.
func SetAs[T comparable](d *Document, key string, c Codec[T]) (Set[T], error) {
	v, err := d.value(key)
	if err != nil {
		return nil, err
	}
	elems, err := setElements(key, v)
	if err != nil {
		return nil, err
	}
	set := make(Set[T], len(elems))
	for _, e := range elems {
		item, err := c.construct(key, e)
		if err != nil {
			return nil, err
		}
		set.Add(item)
	}
	return set, nil
}

// CopyInto converts every entry of the document via the codec and inserts
// it into dst. It stops at the first failing key; entries inserted before
// the failure remain in dst.
func CopyInto[T any](d *Document, dst map[string]T, c Codec[T]) error {
	for _, key := range d.Keys() {
		v, err := As(d, key, c)
		if err != nil {
			return err
		}
		dst[key] = v
	}
	return nil
}
