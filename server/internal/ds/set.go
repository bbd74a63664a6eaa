package ds

import (
	"slices"
)

// Set is a generic set type.
type Set[T comparable] map[T]bool

func NewSet[T comparable](elements ...T) Set[T] {
	s := Set[T]{}
	for _, element := range elements {
		s.Add(element)
	}
	return s
}

// Add adds an element to the set.
func (s Set[T]) Add(element T) {
	s[element] = true
}

// Has returns true if the given element is in the set.
func (s Set[T]) Has(element T) bool {
	return s[element]
}

// Difference (s-o) returns elements that are in the receiver set, but not the
// given set 'o'.
func (s Set[T]) Difference(o Set[T]) Set[T] {
	difference := Set[T]{}
	for element := range s {
		if !o.Has(element) {
			difference.Add(element)
		}
	}
	return difference
}

// Size returns the number of elements in the set.
func (s Set[T]) Size() int {
	return len(s)
}

// ToSlice returns a slice of all the elements in the set.
func (s Set[T]) ToSlice() []T {
	slice := make([]T, s.Size())
	idx := 0
	for element := range s {
		slice[idx] = element
		idx++
	}
	return slice
}

// ToSortedSlice returns a sorted slice of all the elements in the set.
func (s Set[T]) ToSortedSlice(cmp func(a T, b T) int) []T {
	slice := s.ToSlice()
	slices.SortFunc(slice, cmp)

	return slice
}
