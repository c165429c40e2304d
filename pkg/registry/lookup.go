package registry

import (
	"reflect"

	"github.com/objectregistry/pkg/errors"
)

// LookupObjectID returns the id bound to obj, or 0 if obj is not registered.
func (r *Registry) LookupObjectID(obj any) uint64 {
	hash, err := identity(obj)
	if err != nil {
		return 0
	}
	if e := r.gen.Load().findByObject(obj, hash); e != nil {
		return e.id
	}
	return 0
}

// LookupObject returns the live referent of id, or nil if id is unknown,
// hollow or orphaned.
func (r *Registry) LookupObject(id uint64) (any, error) {
	if id == 0 {
		return nil, errors.ErrNullIdentifier
	}
	if e := r.gen.Load().findByID(id); e != nil {
		return e.referent(), nil
	}
	return nil, nil
}

// LookupType returns the type bound to id, or nil if id is unknown or hollow.
// An id bound to a live object that is not a type is an invalid type id.
func (r *Registry) LookupType(id uint64) (reflect.Type, error) {
	obj, err := r.LookupObject(id)
	if err != nil || obj == nil {
		return nil, err
	}
	typ, ok := obj.(reflect.Type)
	if !ok {
		return nil, errors.InvalidTypeID(id, obj)
	}
	return typ, nil
}

// ContainsObjectID reports whether id is tracked in any state. The referent
// is not dereferenced, so orphaned ids still count.
func (r *Registry) ContainsObjectID(id uint64) (bool, error) {
	if id == 0 {
		return false, errors.ErrNullIdentifier
	}
	return r.gen.Load().findByID(id) != nil, nil
}

// StateOf returns the state of id and whether it is tracked at all.
func (r *Registry) StateOf(id uint64) (State, bool, error) {
	if id == 0 {
		return StateHollow, false, errors.ErrNullIdentifier
	}
	e := r.gen.Load().findByID(id)
	if e == nil {
		return StateHollow, false, nil
	}
	return e.state(), true, nil
}
