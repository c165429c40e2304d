package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlicePool(t *testing.T) {
	pool := NewSlicePool[int](256)

	s := pool.Get()
	require.NotNil(t, s)
	assert.GreaterOrEqual(t, cap(*s), 256)

	*s = append(*s, 1, 2, 3)
	assert.Len(t, *s, 3)

	pool.Put(s)

	s2 := pool.Get()
	assert.Empty(t, *s2)
}

func TestSlicePool_PutZeroesElements(t *testing.T) {
	pool := NewSlicePool[*int](4)

	s := pool.Get()
	v := 7
	*s = append(*s, &v, &v)
	backing := (*s)[:2]

	pool.Put(s)

	assert.Nil(t, backing[0])
	assert.Nil(t, backing[1])
}

func TestSlicePool_DefaultCapacity(t *testing.T) {
	pool := NewSlicePool[string](0)
	s := pool.Get()
	assert.GreaterOrEqual(t, cap(*s), 64)
	pool.Put(nil)
}

func TestSet(t *testing.T) {
	s := NewSet[string]()

	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, s.Items())
}
