package collections

import (
	"cmp"
	"fmt"
	"slices"
)

// Set is an unordered set backed by a map with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding vs
func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

// Add inserts vs
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Remove deletes v if present
func (s Set[T]) Remove(v T) {
	delete(s, v)
}

// Has reports whether v is a member
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Members returns the members in map order
func (s Set[T]) Members() []T {
	r := make([]T, 0, len(s))
	for v := range s {
		r = append(r, v)
	}
	return r
}

// Clone returns an independent copy of s
func (s Set[T]) Clone() Set[T] {
	c := make(Set[T], len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

func (s Set[T]) String() string {
	return fmt.Sprintf("%v", s.Members())
}

// Sorted returns the members of s in ascending order, for deterministic output
func Sorted[T cmp.Ordered](s Set[T]) []T {
	r := s.Members()
	slices.Sort(r)
	return r
}
