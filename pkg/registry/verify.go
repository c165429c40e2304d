package registry

import (
	"github.com/objectregistry/pkg/errors"
)

// Verify checks the structural invariants of the dual index: every entry sits
// in the slot its id and hash select, bound entries appear in both indexes,
// hollow entries only in the id index, ids and live referents are unique, and
// the entry count matches Size. It locks out mutators while it runs.
func (r *Registry) Verify() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	inID := make(map[*entry]struct{})
	ids := make(map[uint64]struct{})
	owners := make(map[any]uint64)

	for slot := range t.byID {
		b := t.byID[slot].Load()
		if b == nil {
			continue
		}
		for i := range b.cells {
			e := b.cells[i].Load()
			if e == nil {
				continue
			}
			if e.id == 0 {
				return corrupted("entry with zero id in id slot %d", slot)
			}
			if t.idSlot(e.id) != slot {
				return corrupted("id %d found in slot %d, expected %d", e.id, slot, t.idSlot(e.id))
			}
			if _, dup := ids[e.id]; dup {
				return corrupted("id %d tracked twice", e.id)
			}
			ids[e.id] = struct{}{}
			inID[e] = struct{}{}

			h := e.hash.Load()
			if h == 0 {
				continue
			}
			if !bucketHolds(t.byHash[t.hashSlot(h)].Load(), e) {
				return corrupted("id %d missing from identity slot %d", e.id, t.hashSlot(h))
			}
			if obj := e.referent(); obj != nil {
				if other, dup := owners[obj]; dup {
					return corrupted("object bound to ids %d and %d", other, e.id)
				}
				owners[obj] = e.id
			}
		}
	}

	for slot := range t.byHash {
		b := t.byHash[slot].Load()
		if b == nil {
			continue
		}
		for i := range b.cells {
			e := b.cells[i].Load()
			if e == nil {
				continue
			}
			h := e.hash.Load()
			if h == 0 {
				return corrupted("hollow id %d present in identity slot %d", e.id, slot)
			}
			if t.hashSlot(h) != slot {
				return corrupted("id %d found in identity slot %d, expected %d", e.id, slot, t.hashSlot(h))
			}
			if _, ok := inID[e]; !ok {
				return corrupted("id %d present only in identity index", e.id)
			}
		}
	}

	if size := r.Size(); size != len(ids) {
		return corrupted("size is %d but %d entries are indexed", size, len(ids))
	}
	return nil
}

func bucketHolds(b *bucket, e *entry) bool {
	if b == nil {
		return false
	}
	for i := range b.cells {
		if b.cells[i].Load() == e {
			return true
		}
	}
	return false
}

func corrupted(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeIndexCorrupted, format, args...)
}
