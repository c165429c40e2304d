package registry

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectregistry/internal/testutil"
)

// registerTransient binds each id to a fresh node that nothing else
// references once it returns.
//
//go:noinline
func registerTransient(t *testing.T, r *Registry, ids ...uint64) {
	t.Helper()
	for _, id := range ids {
		created, err := r.RegisterObject(id, &testutil.Node{Name: "transient", Value: int64(id)})
		require.NoError(t, err)
		require.True(t, created)
	}
}

// awaitOrphans collects garbage until every id reports StateOrphan.
func awaitOrphans(t *testing.T, r *Registry, ids ...uint64) {
	t.Helper()
	ok := testutil.CollectUntil(func() bool {
		for _, id := range ids {
			if state, _, _ := r.StateOf(id); state != StateOrphan {
				return false
			}
		}
		return true
	})
	require.True(t, ok, "transient objects were not collected")
}

func TestOrphan_ReadsAsAbsent(t *testing.T) {
	r := newTestRegistry(t)
	registerTransient(t, r, 7)
	awaitOrphans(t, r, 7)

	obj, err := r.LookupObject(7)
	require.NoError(t, err)
	assert.Nil(t, obj)

	contains, err := r.ContainsObjectID(7)
	require.NoError(t, err)
	assert.True(t, contains, "orphans stay tracked until swept")
	assert.Equal(t, 1, r.Size())

	obj, err = r.RegisterObjectID(7)
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestOrphan_RebindsWithoutConflict(t *testing.T) {
	r := newTestRegistry(t)
	registerTransient(t, r, 7)
	awaitOrphans(t, r, 7)

	c := &testutil.Node{Name: "replacement"}
	created, err := r.RegisterObject(7, c)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(7), r.LookupObjectID(c))
	assert.Equal(t, 1, r.Size())
	require.NoError(t, r.Verify(), "the old identity slot must be vacated")

	runtime.KeepAlive(c)
}

func TestOrphan_OptionalRegisterRevives(t *testing.T) {
	r := newTestRegistry(t)
	registerTransient(t, r, 8)
	awaitOrphans(t, r, 8)

	c := &testutil.Node{Name: "replacement"}
	obj, err := r.AddRef(8, c)
	require.NoError(t, err)
	assert.Same(t, c, obj)
	assert.Equal(t, uint64(8), r.LookupObjectID(c))
	require.NoError(t, r.Verify())

	runtime.KeepAlive(c)
}

func TestClearOrphanEntries(t *testing.T) {
	r := newTestRegistry(t)
	kept := testutil.NewNodes("kept", 2)

	for _, id := range []uint64{1, 2, 3} {
		_, err := r.RegisterObjectID(id)
		require.NoError(t, err)
	}
	for i, n := range kept {
		_, err := r.RegisterObject(uint64(10+i), n)
		require.NoError(t, err)
	}
	registerTransient(t, r, 20, 21, 22)
	require.Equal(t, 8, r.Size())

	awaitOrphans(t, r, 20, 21, 22)

	assert.Equal(t, 3, r.ClearOrphanEntries())
	assert.Equal(t, 5, r.Size())
	assert.Zero(t, r.ClearOrphanEntries())

	for _, id := range []uint64{1, 2, 3} {
		state, ok, err := r.StateOf(id)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, StateHollow, state)
	}
	for _, id := range []uint64{20, 21, 22} {
		contains, _ := r.ContainsObjectID(id)
		assert.False(t, contains)
	}
	for i, n := range kept {
		assert.Equal(t, uint64(10+i), r.LookupObjectID(n))
	}
	require.NoError(t, r.Verify())

	runtime.KeepAlive(kept)
}

func TestCleanUp(t *testing.T) {
	r := newTestRegistry(t, WithInitialCapacity(1), WithHashDensity(4.0/1024))
	kept := &testutil.Node{Name: "kept"}
	_, err := r.RegisterObject(1, kept)
	require.NoError(t, err)
	registerTransient(t, r, 2, 3, 4, 5)
	length := r.SlotLength()
	require.Equal(t, 2048, length)

	awaitOrphans(t, r, 2, 3, 4, 5)

	assert.Equal(t, 4, r.CleanUp())
	assert.Equal(t, 1, r.Size())
	assert.Equal(t, length, r.SlotLength(), "clean up keeps the slot length")
	assert.Equal(t, uint64(1), r.LookupObjectID(kept))
	require.NoError(t, r.Verify())

	assert.True(t, r.Shrink())
	assert.Equal(t, 1024, r.SlotLength())

	runtime.KeepAlive(kept)
}

func TestClearWhere(t *testing.T) {
	r := newTestRegistry(t)
	nodes := testutil.NewNodes("w", 10)
	for i, n := range nodes {
		_, err := r.RegisterObject(uint64(i+1), n)
		require.NoError(t, err)
	}
	_, err := r.RegisterObjectID(100)
	require.NoError(t, err)

	removed := r.ClearWhere(func(e Entry) bool {
		return e.State == StateLive && e.ID%2 == 0
	})

	assert.Equal(t, 5, removed)
	assert.Equal(t, 6, r.Size())
	for i, n := range nodes {
		id := uint64(i + 1)
		if id%2 == 0 {
			assert.Zero(t, r.LookupObjectID(n))
		} else {
			assert.Equal(t, id, r.LookupObjectID(n))
		}
	}
	state, ok, _ := r.StateOf(100)
	assert.True(t, ok)
	assert.Equal(t, StateHollow, state)
	require.NoError(t, r.Verify())
}

func TestClearWhere_AlsoSweepsOrphans(t *testing.T) {
	r := newTestRegistry(t)
	registerTransient(t, r, 1, 2)
	_, err := r.RegisterObjectID(3)
	require.NoError(t, err)
	awaitOrphans(t, r, 1, 2)

	removed := r.ClearWhere(func(e Entry) bool { return e.State == StateHollow })

	assert.Equal(t, 3, removed)
	assert.Zero(t, r.Size())
	require.NoError(t, r.Verify())
}
