// Package fieldcache memoizes struct field resolutions.
//
// The cache keeps two generations. Stores go to the head generation; once it
// holds maxSize entries the older generation is dropped and the head rotates,
// so memory stays bounded while hot entries survive one rotation.
package fieldcache

import (
	"reflect"
	"sync"
)

// Key identifies a field lookup: the owning struct type, the field name and
// the requested field type.
type Key struct {
	Owner reflect.Type
	Name  string
	Field reflect.Type
}

// Cache is safe for concurrent use.
type Cache[V any] struct {
	mu      sync.RWMutex
	gens    [2]map[Key]V
	headIdx int
	maxSize int
}

func New[V any](maxSize int) *Cache[V] {
	if maxSize <= 0 {
		panic("maxSize should be greater than 0")
	}
	return &Cache[V]{
		gens:    [2]map[Key]V{{}, {}},
		maxSize: maxSize,
	}
}

func (c *Cache[V]) Load(k Key) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.gens[c.headIdx][k]; ok {
		return v, true
	}
	v, ok := c.gens[1-c.headIdx][k]
	return v, ok
}

func (c *Cache[V]) Store(k Key, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.gens[c.headIdx]) >= c.maxSize {
		c.headIdx = 1 - c.headIdx
		c.gens[c.headIdx] = make(map[Key]V, c.maxSize)
	}
	c.gens[c.headIdx][k] = v
}

// LoadOrCompute returns the cached value for k, computing and storing it on a
// miss. Errors are not cached.
func (c *Cache[V]) LoadOrCompute(k Key, compute func() (V, error)) (V, error) {
	if v, ok := c.Load(k); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Store(k, v)
	return v, nil
}

// Len reports the number of entries across both generations.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.gens[0]) + len(c.gens[1])
}
