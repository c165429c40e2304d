package registry

import "sync/atomic"

// bucket holds the entries that share one slot. Cells are nilled on removal
// and reused by later inserts; the cell array only ever grows.
type bucket struct {
	cells []atomic.Pointer[entry]
}

func newBucket(n int) *bucket {
	return &bucket{cells: make([]atomic.Pointer[entry], n)}
}

type slots []atomic.Pointer[bucket]

// tables is one published generation of the dual index. Both slot arrays
// have the same power-of-two length and share mask.
type tables struct {
	byID     slots
	byHash   slots
	mask     int
	capacity int
}

func newTables(length int, density float64) *tables {
	return &tables{
		byID:     make(slots, length),
		byHash:   make(slots, length),
		mask:     length - 1,
		capacity: capacityFor(length, density),
	}
}

func (t *tables) length() int {
	return t.mask + 1
}

func (t *tables) idSlot(id uint64) int {
	return int(id & uint64(t.mask))
}

func (t *tables) hashSlot(hash int32) int {
	return int(uint32(hash)) & t.mask
}

// insert adds e to the id index and, unless it is hollow, to the identity
// index under its stored hash.
func (t *tables) insert(e *entry) {
	insertCell(&t.byID[t.idSlot(e.id)], e)
	if h := e.hash.Load(); h != 0 {
		insertCell(&t.byHash[t.hashSlot(h)], e)
	}
}

// remove drops e from every index that holds it.
func (t *tables) remove(e *entry) {
	removeCell(&t.byID[t.idSlot(e.id)], e)
	if h := e.hash.Load(); h != 0 {
		removeCell(&t.byHash[t.hashSlot(h)], e)
	}
}

func (t *tables) findByID(id uint64) *entry {
	b := t.byID[t.idSlot(id)].Load()
	if b == nil {
		return nil
	}
	for i := range b.cells {
		if e := b.cells[i].Load(); e != nil && e.id == id {
			return e
		}
	}
	return nil
}

// findByObject returns the entry whose live referent is obj. The hash only
// narrows the search; identity is confirmed on the dereferenced referent.
func (t *tables) findByObject(obj any, hash int32) *entry {
	b := t.byHash[t.hashSlot(hash)].Load()
	if b == nil {
		return nil
	}
	for i := range b.cells {
		e := b.cells[i].Load()
		if e == nil || e.hash.Load() != hash {
			continue
		}
		if ref := e.ref.Load(); ref != nil && ref.value() == obj {
			return e
		}
	}
	return nil
}

// each visits every entry of the id index once. Stop by returning false.
func (t *tables) each(fn func(*entry) bool) {
	for i := range t.byID {
		b := t.byID[i].Load()
		if b == nil {
			continue
		}
		for j := range b.cells {
			if e := b.cells[j].Load(); e != nil {
				if !fn(e) {
					return
				}
			}
		}
	}
}

func insertCell(slot *atomic.Pointer[bucket], e *entry) {
	b := slot.Load()
	if b == nil {
		nb := newBucket(1)
		nb.cells[0].Store(e)
		slot.Store(nb)
		return
	}
	for i := range b.cells {
		if b.cells[i].Load() == nil {
			b.cells[i].Store(e)
			return
		}
	}

	n := len(b.cells)
	nb := newBucket(n * 2)
	for i := 0; i < n; i++ {
		nb.cells[i].Store(b.cells[i].Load())
	}
	nb.cells[n].Store(e)
	slot.Store(nb)
}

func removeCell(slot *atomic.Pointer[bucket], e *entry) bool {
	b := slot.Load()
	if b == nil {
		return false
	}
	for i := range b.cells {
		if b.cells[i].Load() == e {
			b.cells[i].Store(nil)
			return true
		}
	}
	return false
}
