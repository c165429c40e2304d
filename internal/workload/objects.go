package workload

import (
	"reflect"
	"sync/atomic"
)

// Record, Blob and Link are the object shapes producers register. Each keeps
// a pointer field so collected objects are freed individually.
type Record struct {
	Seq   uint64
	Owner *string
	Cols  [4]int64
}

// Blob models a larger payload.
type Blob struct {
	Seq  uint64
	Data []byte
}

// Link references another registered object.
type Link struct {
	Seq    uint64
	Target any
}

// newObject allocates the shape for seq.
func newObject(seq uint64) any {
	switch seq % 3 {
	case 0:
		return &Record{Seq: seq}
	case 1:
		return &Blob{Seq: seq, Data: make([]byte, 32)}
	default:
		return &Link{Seq: seq}
	}
}

// dictionaryTypes returns n distinct type descriptors. The first three are
// the object shapes so their live objects count as mapped.
func dictionaryTypes(n int) []reflect.Type {
	types := make([]reflect.Type, 0, n)
	for _, t := range []reflect.Type{
		reflect.TypeOf(Record{}),
		reflect.TypeOf(Blob{}),
		reflect.TypeOf(Link{}),
	} {
		if len(types) == n {
			return types
		}
		types = append(types, t)
	}
	elem := reflect.TypeOf(int64(0))
	for i := 1; len(types) < n; i++ {
		types = append(types, reflect.ArrayOf(i, elem))
	}
	return types
}

// Sequence hands out increasing non-zero ids.
type Sequence struct {
	last atomic.Uint64
}

// NewSequence creates a sequence whose first id is start, or 1 if start is 0.
func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	if start > 0 {
		s.last.Store(start - 1)
	}
	return s
}

// Next returns the next id.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// Reserve returns the first of n consecutive ids.
func (s *Sequence) Reserve(n int) uint64 {
	return s.last.Add(uint64(n)) - uint64(n) + 1
}
