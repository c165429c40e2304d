package statistics

import (
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/registry"
)

// LoadFactor returns size relative to the table's nominal capacity, slot
// length times density. It stays meaningful once growth is disabled and
// Capacity no longer bounds the size.
func LoadFactor(shape registry.Shape) float64 {
	nominal := float64(shape.SlotLength) * shape.HashDensity
	if nominal <= 0 {
		return 0
	}
	return float64(shape.Size) / nominal
}

// BucketLengths turns the id-slot histogram into per-length slot counts.
// Lengths with no slots are omitted.
func BucketLengths(shape registry.Shape) []model.BucketLength {
	out := make([]model.BucketLength, 0, len(shape.BucketHistogram))
	for length, slots := range shape.BucketHistogram {
		if slots == 0 {
			continue
		}
		pct := 0.0
		if shape.SlotLength > 0 {
			pct = float64(slots) / float64(shape.SlotLength) * 100
		}
		out = append(out, model.BucketLength{
			Length:     length,
			Slots:      slots,
			Percentage: pct,
		})
	}
	return out
}

// MeanBucketLength returns the average length of non-empty id buckets.
func MeanBucketLength(shape registry.Shape) float64 {
	var entries, used int
	for length, slots := range shape.BucketHistogram {
		if length == 0 {
			continue
		}
		entries += length * slots
		used += slots
	}
	if used == 0 {
		return 0
	}
	return float64(entries) / float64(used)
}
