package hashmap

import (
	"github.com/skybi/chaincache/internal/hashtable"
	"sync"
)

// NormalMap implements the Map interface using normal hash map behaviour.
// Basically it simply wraps a hashtable.Table with a RWMutex mechanism in order to provide thread safety.
type NormalMap[K comparable, V any] struct {
	mtx        sync.RWMutex
	underlying *hashtable.Table[K, V]
}

var _ Map[int, any] = (*NormalMap[int, any])(nil)

// NewNormal creates a new normal thread safe Map.
// The options are passed to the underlying table.
func NewNormal[K comparable, V any](options ...func(*hashtable.Config)) *NormalMap[K, V] {
	return &NormalMap[K, V]{
		underlying: hashtable.New[K, V](options...),
	}
}

// Size returns the amount of stored key-value pairs
func (obj *NormalMap[K, V]) Size() int {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	return obj.underlying.Size()
}

// Has returns whether a value is assigned to the given key
func (obj *NormalMap[K, V]) Has(key K) bool {
	_, ok := obj.Lookup(key)
	return ok
}

// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually or is
// the type's zero value
func (obj *NormalMap[K, V]) Lookup(key K) (V, bool) {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	return obj.underlying.Get(key)
}

// Get returns the value assigned to the given key.
// May be the type's zero value if it was not set using Set before; use Has or Lookup for this information.
func (obj *NormalMap[K, V]) Get(key K) V {
	val, _ := obj.Lookup(key)
	return val
}

// Set sets a key-value pair and returns whether the key was newly created
func (obj *NormalMap[K, V]) Set(key K, value V) bool {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	_, created := obj.underlying.EmplaceOrAssign(key, value)
	return created
}

// Add sets a key-value pair only if no value is assigned to the key yet and returns whether it did so
func (obj *NormalMap[K, V]) Add(key K, value V) bool {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	_, inserted := obj.underlying.Emplace(key, value)
	return inserted
}

// Unset deletes the value assigned to given key and returns whether there was one
func (obj *NormalMap[K, V]) Unset(key K) bool {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	_, removed := obj.underlying.Remove(key)
	return removed
}

// Clear removes every key-value pair but keeps the allocated buckets
func (obj *NormalMap[K, V]) Clear() {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	obj.underlying.Clear()
}

// Keys appends every stored key to dst and returns the amount of appended keys
func (obj *NormalMap[K, V]) Keys(dst hashtable.Sequence[K]) int {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	return obj.underlying.GetKeys(dst)
}

// Rehash grows the underlying table to at least n buckets
func (obj *NormalMap[K, V]) Rehash(n int) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	obj.underlying.Rehash(n)
}

// Stats returns a statistics snapshot of the underlying table
func (obj *NormalMap[K, V]) Stats() hashtable.Stats {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	return obj.underlying.Stats()
}

// BootstrappedManipulation allows a thread safe direct manipulation of the underlying table by wrapping the given
// function in a lock of the underlying mutex
func (obj *NormalMap[K, V]) BootstrappedManipulation(action func(underlying *hashtable.Table[K, V])) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	action(obj.underlying)
}
