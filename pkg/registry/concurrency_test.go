package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectregistry/internal/testutil"
)

func TestConcurrent_AddRefFirstWins(t *testing.T) {
	r := newTestRegistry(t, WithInitialCapacity(1), WithHashDensity(8.0/1024))
	shared := testutil.NewNodes("shared", 500)
	const producers = 8

	var wg sync.WaitGroup
	for g := 0; g < producers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for j, n := range shared {
				obj, err := r.AddRef(uint64(g*10000+j+1), n)
				assert.NoError(t, err)
				assert.Same(t, n, obj)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, len(shared), r.Size())
	for _, n := range shared {
		id := r.LookupObjectID(n)
		require.NotZero(t, id)
		obj, err := r.LookupObject(id)
		require.NoError(t, err)
		assert.Same(t, n, obj)
	}
	require.NoError(t, r.Verify())
}

func TestConcurrent_ReadersDuringGrowth(t *testing.T) {
	r := newTestRegistry(t)
	stable := testutil.NewNodes("stable", 64)
	for i, n := range stable {
		_, err := r.RegisterObject(uint64(i+1), n)
		require.NoError(t, err)
	}

	var done atomic.Bool
	var misses atomic.Int64
	var readers sync.WaitGroup
	for g := 0; g < 4; g++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for !done.Load() {
				for i, n := range stable {
					if r.LookupObjectID(n) != uint64(i+1) {
						misses.Add(1)
					}
					if obj, _ := r.LookupObject(uint64(i + 1)); obj != any(n) {
						misses.Add(1)
					}
				}
			}
		}()
	}

	churn := testutil.NewNodes("churn", 6000)
	for i, n := range churn {
		_, err := r.RegisterObject(uint64(1000+i), n)
		require.NoError(t, err)
	}
	done.Store(true)
	readers.Wait()

	assert.Zero(t, misses.Load(), "readers must never observe a partial table")
	assert.Equal(t, 8192, r.SlotLength())
	require.NoError(t, r.Verify())
}

func TestConcurrent_DisjointWriters(t *testing.T) {
	r := newTestRegistry(t)
	const writers = 6
	const perWriter = 400
	nodes := testutil.NewNodes("disjoint", writers*perWriter)

	var wg sync.WaitGroup
	for g := 0; g < writers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				k := g*perWriter + j
				created, err := r.RegisterObject(uint64(k+1), nodes[k])
				assert.NoError(t, err)
				assert.True(t, created)
				if j%4 == 0 {
					removed, err := r.RemoveByID(uint64(k + 1))
					assert.NoError(t, err)
					assert.True(t, removed)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter*3/4, r.Size())
	for k, n := range nodes {
		if k%perWriter%4 == 0 {
			assert.Zero(t, r.LookupObjectID(n))
		} else {
			assert.Equal(t, uint64(k+1), r.LookupObjectID(n))
		}
	}
	require.NoError(t, r.Verify())
}
