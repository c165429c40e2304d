package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectregistry/internal/testutil"
)

// TestRegistry_GrowthScenario registers ids 100..104 into a registry whose
// first table holds four entries, so the fourth insert doubles it.
func TestRegistry_GrowthScenario(t *testing.T) {
	r := newTestRegistry(t, WithInitialCapacity(1), WithHashDensity(4.0/1024))
	require.Equal(t, 1024, r.SlotLength())
	require.Equal(t, 4, r.Capacity())

	nodes := testutil.NewNodes("e2e", 5)
	lengths := make([]int, len(nodes))
	for i, n := range nodes {
		created, err := r.RegisterObject(uint64(100+i), n)
		require.NoError(t, err)
		require.True(t, created)
		lengths[i] = r.SlotLength()
	}

	assert.Equal(t, []int{1024, 1024, 1024, 2048, 2048}, lengths)
	assert.Equal(t, 5, r.Size())
	assert.Equal(t, 8, r.Capacity())

	for i, n := range nodes {
		id := uint64(100 + i)
		assert.Equal(t, id, r.LookupObjectID(n))

		obj, err := r.LookupObject(id)
		require.NoError(t, err)
		assert.Same(t, n, obj)
	}
	require.NoError(t, r.Verify())
}
