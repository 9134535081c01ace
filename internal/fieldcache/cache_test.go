package fieldcache_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/on-the-ground/fleeting_state/internal/fieldcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	A, B, C string
}

func keyOf(name string) fieldcache.Key {
	return fieldcache.Key{
		Owner: reflect.TypeFor[sample](),
		Name:  name,
		Field: reflect.TypeFor[string](),
	}
}

func TestCache_StoreAndLoad(t *testing.T) {
	c := fieldcache.New[int](4)
	c.Store(keyOf("A"), 0)

	v, ok := c.Load(keyOf("A"))
	require.True(t, ok)
	assert.Equal(t, 0, v)

	_, ok = c.Load(keyOf("B"))
	assert.False(t, ok)
}

func TestCache_RotationKeepsItBounded(t *testing.T) {
	c := fieldcache.New[int](2)
	c.Store(keyOf("A"), 1)
	c.Store(keyOf("B"), 2)
	c.Store(keyOf("C"), 3) // rotates, A and B become the old generation
	c.Store(keyOf("D"), 4)
	c.Store(keyOf("E"), 5) // rotates again, A and B are dropped

	assert.LessOrEqual(t, c.Len(), 4)
	_, ok := c.Load(keyOf("A"))
	assert.False(t, ok)
	v, ok := c.Load(keyOf("C"))
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestCache_LoadOrComputeSkipsErrors(t *testing.T) {
	c := fieldcache.New[int](4)
	calls := 0
	failing := func() (int, error) {
		calls++
		return 0, errors.New("nope")
	}
	_, err := c.LoadOrCompute(keyOf("A"), failing)
	require.Error(t, err)
	_, err = c.LoadOrCompute(keyOf("A"), failing)
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	v, err := c.LoadOrCompute(keyOf("A"), func() (int, error) { return 9, nil })
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	v, err = c.LoadOrCompute(keyOf("A"), failing)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}
