package registry

import (
	"math"
	"math/bits"
)

const (
	// MinSlotLength is the smallest slot array length a registry uses.
	MinSlotLength = 1024

	// DefaultInitialCapacity is the number of entries a new registry holds
	// before it first grows.
	DefaultInitialCapacity = MinSlotLength

	// DefaultHashDensity is the default ratio of entries to slots.
	DefaultHashDensity = 1.0
)

// maxSlotLength is the largest slot array length. A registry that reaches it
// stops growing and lets its buckets lengthen instead.
var maxSlotLength = 1 << 30

// slotLengthFor returns the power-of-two slot length that holds n entries at
// the given density, clamped to [MinSlotLength, maxSlotLength].
func slotLengthFor(n int, density float64) int {
	want := math.Ceil(float64(n) / density)
	if want >= float64(maxSlotLength) {
		return maxSlotLength
	}
	length := MinSlotLength
	if w := int(want); w > length {
		length = 1 << bits.Len(uint(w-1))
	}
	if length > maxSlotLength {
		return maxSlotLength
	}
	return length
}

// capacityFor returns the number of entries a table of the given length
// holds before it must grow. At the maximum length it never grows.
func capacityFor(length int, density float64) int {
	if length >= maxSlotLength {
		return math.MaxInt
	}
	c := float64(length) * density
	if c >= float64(math.MaxInt) {
		return math.MaxInt
	}
	if c < 1 {
		return 1
	}
	return int(c)
}

// ensureCapacity doubles the table once size reaches capacity. The caller
// holds r.mu.
func (r *Registry) ensureCapacity() {
	t := r.gen.Load()
	size := int(r.size.Load())
	if size < t.capacity || t.length() >= maxSlotLength {
		return
	}

	next := t.length() * 2
	r.rehash(next)
	if next >= maxSlotLength {
		r.logger.Warn("registry reached maximum slot length %d, growth disabled at size %d", next, size)
		return
	}
	r.logger.Debug("registry grew from %d to %d slots at size %d", t.length(), next, size)
}

// rehash rebuilds both indexes at the given length and publishes the result.
// Every entry is carried over, orphans included. The caller holds r.mu.
func (r *Registry) rehash(length int) {
	old := r.gen.Load()
	next := newTables(length, r.density)
	old.each(func(e *entry) bool {
		next.insert(e)
		return true
	})
	r.gen.Store(next)
}

// Shrink reduces the slot length to the smallest power of two that keeps the
// current size under capacity. It reports whether the table shrank.
func (r *Registry) Shrink() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	size := int(r.size.Load())
	target := slotLengthFor(size+1, r.density)
	if target >= t.length() {
		return false
	}
	r.rehash(target)
	r.logger.Debug("registry shrank from %d to %d slots at size %d", t.length(), target, size)
	return true
}
