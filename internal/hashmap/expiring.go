package hashmap

import (
	"github.com/skybi/chaincache/internal/hashtable"
	"github.com/skybi/chaincache/internal/task"
	"time"
)

type expiringEntry[T any] struct {
	raw      T
	inserted time.Time
}

// ExpiringMap implements the Map interface and wraps the standard NormalMap in order to implement value expiration
type ExpiringMap[K comparable, V any] struct {
	normal      *NormalMap[K, *expiringEntry[V]]
	lifetime    time.Duration
	cleanupTask *task.RepeatingTask
}

var _ Map[int, any] = (*ExpiringMap[int, any])(nil)

// NewExpiring creates a new expiring map whose values exist for a specific lifetime.
// Expired values will not be removed before ScheduleCleanupTask is called.
// Until then this map behaves exactly like a NormalMap.
func NewExpiring[K comparable, V any](lifetime time.Duration, options ...func(*hashtable.Config)) *ExpiringMap[K, V] {
	return &ExpiringMap[K, V]{
		normal:   NewNormal[K, *expiringEntry[V]](options...),
		lifetime: lifetime,
	}
}

// ScheduleCleanupTask schedules the task that cleans up expired values in a specific interval.
// A call to StopCleanupTask as soon as the map is no longer needed is highly recommended because it would not be
// garbage collected otherwise.
func (obj *ExpiringMap[K, V]) ScheduleCleanupTask(tick time.Duration) {
	if obj.cleanupTask != nil {
		return
	}
	obj.cleanupTask = task.NewRepeating(func() {
		obj.sweep()
	}, tick)
	obj.cleanupTask.Start()
}

// StopCleanupTask stops the cleanup task and removes expired values one last time
func (obj *ExpiringMap[K, V]) StopCleanupTask() {
	if obj.cleanupTask == nil {
		return
	}
	obj.cleanupTask.Stop(true)
	obj.cleanupTask = nil
}

// sweep removes every expired value and returns the amount of removed values
func (obj *ExpiringMap[K, V]) sweep() int {
	removed := 0
	obj.normal.BootstrappedManipulation(func(table *hashtable.Table[K, *expiringEntry[V]]) {
		for cursor := table.Begin(); !cursor.IsEnd(); {
			if time.Since(cursor.Value().inserted) > obj.lifetime {
				cursor = table.RemoveAt(cursor)
				removed++
				continue
			}
			cursor.Next()
		}
	})
	return removed
}

func (obj *ExpiringMap[K, V]) wrap(value V) *expiringEntry[V] {
	return &expiringEntry[V]{
		raw:      value,
		inserted: time.Now(),
	}
}

// Size returns the amount of stored key-value pairs
func (obj *ExpiringMap[K, V]) Size() int {
	return obj.normal.Size()
}

// Has returns whether a value is assigned to the given key
func (obj *ExpiringMap[K, V]) Has(key K) bool {
	_, ok := obj.Lookup(key)
	return ok
}

// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually or is
// the type's zero value
func (obj *ExpiringMap[K, V]) Lookup(key K) (V, bool) {
	val, ok := obj.normal.Lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	return val.raw, true
}

// Get returns the value assigned to the given key.
// Will be the type's zero value if it was not set using Set before.
func (obj *ExpiringMap[K, V]) Get(key K) V {
	val, _ := obj.Lookup(key)
	return val
}

// Set sets a key-value pair, restarts its lifetime and returns whether the key was newly created
func (obj *ExpiringMap[K, V]) Set(key K, value V) bool {
	return obj.normal.Set(key, obj.wrap(value))
}

// Add sets a key-value pair only if no value is assigned to the key yet and returns whether it did so
func (obj *ExpiringMap[K, V]) Add(key K, value V) bool {
	return obj.normal.Add(key, obj.wrap(value))
}

// Unset deletes the value assigned to given key and returns whether there was one
func (obj *ExpiringMap[K, V]) Unset(key K) bool {
	return obj.normal.Unset(key)
}

// Clear removes every key-value pair
func (obj *ExpiringMap[K, V]) Clear() {
	obj.normal.Clear()
}

// Keys appends every stored key to dst and returns the amount of appended keys
func (obj *ExpiringMap[K, V]) Keys(dst hashtable.Sequence[K]) int {
	return obj.normal.Keys(dst)
}

// Rehash grows the underlying table to at least n buckets
func (obj *ExpiringMap[K, V]) Rehash(n int) {
	obj.normal.Rehash(n)
}

// Stats returns a statistics snapshot of the underlying table
func (obj *ExpiringMap[K, V]) Stats() hashtable.Stats {
	return obj.normal.Stats()
}
