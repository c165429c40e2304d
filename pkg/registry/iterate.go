package registry

import "reflect"

// IterateEntries calls fn for every tracked entry of the current generation
// until fn returns false. It takes no lock; entries registered or removed
// during the walk may or may not be visited.
func (r *Registry) IterateEntries(fn func(Entry) bool) {
	r.gen.Load().each(func(e *entry) bool {
		return fn(e.view())
	})
}

// IterateTypes calls fn for every live type mapping until fn returns false.
func (r *Registry) IterateTypes(fn func(TypeEntry) bool) {
	r.gen.Load().each(func(e *entry) bool {
		if !e.holdsType() {
			return true
		}
		typ, ok := e.referent().(reflect.Type)
		if !ok {
			return true
		}
		return fn(TypeEntry{ID: e.id, Type: typ})
	})
}

// Shape describes how entries are spread over the slot arrays.
type Shape struct {
	SlotLength        int     `json:"slot_length"`
	Capacity          int     `json:"capacity"`
	HashDensity       float64 `json:"hash_density"`
	Size              int     `json:"size"`
	GrowthDisabled    bool    `json:"growth_disabled"`
	UsedIDSlots       int     `json:"used_id_slots"`
	UsedHashSlots     int     `json:"used_hash_slots"`
	LongestIDBucket   int     `json:"longest_id_bucket"`
	LongestHashBucket int     `json:"longest_hash_bucket"`
	// BucketHistogram counts id slots by occupied cells; index 0 is empty slots.
	BucketHistogram []int `json:"bucket_histogram"`
}

// Shape returns bucket statistics for the current generation.
func (r *Registry) Shape() Shape {
	t := r.gen.Load()
	s := Shape{
		SlotLength:     t.length(),
		Capacity:       t.capacity,
		HashDensity:    r.density,
		Size:           r.Size(),
		GrowthDisabled: t.length() >= maxSlotLength,
	}

	for i := range t.byID {
		n := occupied(t.byID[i].Load())
		if n > 0 {
			s.UsedIDSlots++
		}
		if n > s.LongestIDBucket {
			s.LongestIDBucket = n
		}
		for len(s.BucketHistogram) <= n {
			s.BucketHistogram = append(s.BucketHistogram, 0)
		}
		s.BucketHistogram[n]++
	}
	for i := range t.byHash {
		n := occupied(t.byHash[i].Load())
		if n > 0 {
			s.UsedHashSlots++
		}
		if n > s.LongestHashBucket {
			s.LongestHashBucket = n
		}
	}
	return s
}

func occupied(b *bucket) int {
	if b == nil {
		return 0
	}
	n := 0
	for i := range b.cells {
		if b.cells[i].Load() != nil {
			n++
		}
	}
	return n
}
