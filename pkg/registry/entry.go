package registry

import (
	"reflect"
	"sync/atomic"
)

// State is the observable state of a registry entry.
type State int

const (
	// StateHollow marks an id reserved before its object is known.
	StateHollow State = iota
	// StateLive marks an id bound to a reachable object.
	StateLive
	// StateOrphan marks an id whose object has been collected.
	StateOrphan
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateHollow:
		return "hollow"
	case StateLive:
		return "live"
	case StateOrphan:
		return "orphan"
	default:
		return "unknown"
	}
}

// Entry is a point-in-time view of one registry mapping.
type Entry struct {
	ID     uint64
	Object any
	State  State
}

// IsType reports whether the entry's referent is a type descriptor.
func (e Entry) IsType() bool {
	_, ok := e.Object.(reflect.Type)
	return ok
}

// TypeEntry is a point-in-time view of a type id mapping.
type TypeEntry struct {
	ID   uint64
	Type reflect.Type
}

// entry is a slot cell shared by both indexes. The id never changes; hash is
// 0 exactly while the entry is hollow.
type entry struct {
	id   uint64
	hash atomic.Int32
	ref  atomic.Pointer[reference]
}

func newEntry(id uint64) *entry {
	return &entry{id: id}
}

// bind publishes ref before hash so a reader that sees a non-zero hash also
// sees a reference.
func (e *entry) bind(ref *reference, hash int32) {
	e.ref.Store(ref)
	e.hash.Store(hash)
}

func (e *entry) referent() any {
	r := e.ref.Load()
	if r == nil {
		return nil
	}
	return r.value()
}

func (e *entry) holdsType() bool {
	r := e.ref.Load()
	return r != nil && r.isType()
}

func (e *entry) state() State {
	if e.hash.Load() == 0 {
		return StateHollow
	}
	if e.referent() == nil {
		return StateOrphan
	}
	return StateLive
}

// view dereferences once so Object and State agree.
func (e *entry) view() Entry {
	if e.hash.Load() == 0 {
		return Entry{ID: e.id, State: StateHollow}
	}
	obj := e.referent()
	if obj == nil {
		return Entry{ID: e.id, State: StateOrphan}
	}
	return Entry{ID: e.id, Object: obj, State: StateLive}
}
