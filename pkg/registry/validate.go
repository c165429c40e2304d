package registry

import (
	"reflect"

	"github.com/objectregistry/pkg/errors"
)

// TypeMapping is a proposed binding between a type id and a type descriptor,
// as supplied by a type dictionary.
type TypeMapping struct {
	TypeID uint64
	Type   reflect.Type
}

// ValidateExistingTypeMapping checks that m is registered and that neither
// side is bound to something else.
func (r *Registry) ValidateExistingTypeMapping(m TypeMapping) error {
	return r.validateMapping(r.gen.Load(), m, true)
}

// ValidatePossibleTypeMapping checks that m could be registered: neither side
// may be bound to something else, but the mapping itself may be absent.
func (r *Registry) ValidatePossibleTypeMapping(m TypeMapping) error {
	return r.validateMapping(r.gen.Load(), m, false)
}

// ValidateExistingTypeMappings validates every mapping against one snapshot
// and returns the first failure in input order.
func (r *Registry) ValidateExistingTypeMappings(mappings []TypeMapping) error {
	t := r.gen.Load()
	for _, m := range mappings {
		if err := r.validateMapping(t, m, true); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePossibleTypeMappings is the tolerant counterpart of
// ValidateExistingTypeMappings.
func (r *Registry) ValidatePossibleTypeMappings(mappings []TypeMapping) error {
	t := r.gen.Load()
	for _, m := range mappings {
		if err := r.validateMapping(t, m, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) validateMapping(t *tables, m TypeMapping, mustExist bool) error {
	if m.TypeID == 0 {
		return errors.ErrNullIdentifier
	}
	if m.Type == nil {
		return errors.InvalidObject(nil, "nil type")
	}
	hash, err := identity(m.Type)
	if err != nil {
		return err
	}

	found := false
	if e := t.findByID(m.TypeID); e != nil {
		if cur := e.referent(); cur != nil {
			if typ, ok := cur.(reflect.Type); !ok || typ != m.Type {
				return errors.WrongType(m.TypeID, m.Type, cur)
			}
			found = true
		}
	}
	if e := t.findByObject(m.Type, hash); e != nil {
		if e.id != m.TypeID {
			return errors.WrongTypeID(m.Type, m.TypeID, e.id)
		}
		found = true
	}

	if mustExist && !found {
		return errors.UnknownMapping(m.TypeID, m.Type)
	}
	return nil
}

// TypeMappings returns the registry's live type bindings.
func (r *Registry) TypeMappings() []TypeMapping {
	var out []TypeMapping
	r.IterateTypes(func(te TypeEntry) bool {
		out = append(out, TypeMapping{TypeID: te.ID, Type: te.Type})
		return true
	})
	return out
}
