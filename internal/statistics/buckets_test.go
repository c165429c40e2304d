package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/registry"
)

func TestLoadFactor(t *testing.T) {
	tests := []struct {
		name     string
		shape    registry.Shape
		expected float64
	}{
		{"empty", registry.Shape{SlotLength: 1024, HashDensity: 1}, 0},
		{"half", registry.Shape{SlotLength: 1024, HashDensity: 1, Size: 512}, 0.5},
		{"dense", registry.Shape{SlotLength: 1024, HashDensity: 4, Size: 2048}, 0.5},
		{"over nominal once growth stops", registry.Shape{SlotLength: 1024, HashDensity: 1, Size: 3072}, 3},
		{"zero value", registry.Shape{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, LoadFactor(tt.shape), 1e-9)
		})
	}
}

func TestBucketLengths(t *testing.T) {
	shape := registry.Shape{
		SlotLength:      8,
		BucketHistogram: []int{4, 2, 0, 2},
	}

	assert.Equal(t, []model.BucketLength{
		{Length: 0, Slots: 4, Percentage: 50},
		{Length: 1, Slots: 2, Percentage: 25},
		{Length: 3, Slots: 2, Percentage: 25},
	}, BucketLengths(shape))

	assert.Empty(t, BucketLengths(registry.Shape{}))
}

func TestMeanBucketLength(t *testing.T) {
	shape := registry.Shape{BucketHistogram: []int{4, 2, 0, 2}}
	assert.InDelta(t, 2.0, MeanBucketLength(shape), 1e-9)
	assert.Zero(t, MeanBucketLength(registry.Shape{BucketHistogram: []int{10}}))
}
