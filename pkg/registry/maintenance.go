package registry

import (
	"github.com/objectregistry/pkg/collections"
)

var victimPool = collections.NewSlicePool[*entry](64)

// ClearOrphanEntries removes every entry whose object has been collected and
// returns how many were removed. Hollow entries are kept. Removed orphans no
// longer count towards Size.
func (r *Registry) ClearOrphanEntries() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.sweep(nil)
	if n > 0 {
		r.logger.Debug("registry swept %d orphan entries, size now %d", n, r.Size())
	}
	return n
}

// CleanUp sweeps orphans and rehashes at the current slot length, compacting
// buckets. It returns the number of orphans removed.
func (r *Registry) CleanUp() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.sweep(nil)
	r.rehash(r.gen.Load().length())
	r.logger.Debug("registry cleaned up %d orphan entries, size now %d", n, r.Size())
	return n
}

// ClearWhere removes orphans and every entry for which pred returns true,
// then rehashes at the current slot length. It returns the number of entries
// removed. pred runs with the registry locked and must not call back into it.
func (r *Registry) ClearWhere(pred func(Entry) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.sweep(pred)
	r.rehash(r.gen.Load().length())
	r.logger.Debug("registry cleared %d entries, size now %d", n, r.Size())
	return n
}

// sweep removes orphans, and entries matching pred when pred is non-nil.
// The caller holds r.mu.
func (r *Registry) sweep(pred func(Entry) bool) int {
	t := r.gen.Load()
	victims := victimPool.Get()
	defer victimPool.Put(victims)

	t.each(func(e *entry) bool {
		v := e.view()
		if v.State == StateOrphan || (pred != nil && pred(v)) {
			*victims = append(*victims, e)
		}
		return true
	})
	for _, e := range *victims {
		r.drop(t, e)
	}
	return len(*victims)
}
