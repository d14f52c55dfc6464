package document

import "sort"

// Set is a map-backed set. The zero value is not usable; create one with
// NewSet or make.
type Set[T comparable] map[T]struct{}

// NewSet creates a Set containing the given items.
func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts item into the set.
func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

// Has reports whether item is in the set.
func (s Set[T]) Has(item T) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of elements.
func (s Set[T]) Len() int {
	return len(s)
}

// Values returns the elements sorted by their string form. The ordering
// makes serialization of sets deterministic.
func (s Set[T]) Values() []T {
	out := make([]T, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return stringify(out[i]) < stringify(out[j])
	})
	return out
}

// Equal reports whether two sets contain the same elements.
func (s Set[T]) Equal(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}
	for item := range s {
		if !other.Has(item) {
			return false
		}
	}
	return true
}
