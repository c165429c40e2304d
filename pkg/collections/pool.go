// Package collections provides generic containers shared across packages.
package collections

import (
	"sync"
)

// SlicePool is a generic pool for scratch slices.
type SlicePool[T any] struct {
	pool       sync.Pool
	initialCap int
}

// NewSlicePool creates a new slice pool with the given initial capacity.
func NewSlicePool[T any](initialCap int) *SlicePool[T] {
	if initialCap <= 0 {
		initialCap = 64
	}
	p := &SlicePool[T]{initialCap: initialCap}
	p.pool.New = func() interface{} {
		s := make([]T, 0, p.initialCap)
		return &s
	}
	return p
}

// Get gets an empty slice from the pool.
func (p *SlicePool[T]) Get() *[]T {
	return p.pool.Get().(*[]T)
}

// Put zeroes the slice and returns it to the pool. Zeroing drops references
// held by pointer elements so pooled slices never keep values reachable.
func (p *SlicePool[T]) Put(s *[]T) {
	if s == nil {
		return
	}
	clear(*s)
	*s = (*s)[:0]
	p.pool.Put(s)
}

// Set is an insertion-ordered set of comparable values.
type Set[T comparable] struct {
	index map[T]int
	items []T
}

// NewSet creates an empty set.
func NewSet[T comparable]() *Set[T] {
	return &Set[T]{index: make(map[T]int)}
}

// Add inserts v and reports whether it was absent.
func (s *Set[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of items in the set.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items returns the items in insertion order. The slice must not be modified.
func (s *Set[T]) Items() []T {
	return s.items
}
