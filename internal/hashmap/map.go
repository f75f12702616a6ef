package hashmap

import "github.com/skybi/chaincache/internal/hashtable"

// Map represents the interface every map provided by this package has to implement.
// All implementations are safe for concurrent use.
type Map[K comparable, V any] interface {
	// Size returns the amount of stored key-value pairs
	Size() int

	// Has returns whether a value is assigned to the given key
	Has(key K) bool

	// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually or is
	// the type's zero value
	Lookup(key K) (V, bool)

	// Get returns the value assigned to the given key.
	// May be the type's zero value if it was not set using Set before; use Has or Lookup for this information.
	Get(key K) V

	// Set sets a key-value pair and returns whether the key was newly created
	Set(key K, value V) bool

	// Add sets a key-value pair only if no value is assigned to the key yet and returns whether it did so
	Add(key K, value V) bool

	// Unset deletes the value assigned to given key and returns whether there was one
	Unset(key K) bool

	// Clear removes every key-value pair
	Clear()

	// Keys appends every stored key to dst and returns the amount of appended keys
	Keys(dst hashtable.Sequence[K]) int

	// Rehash grows the underlying table to at least n buckets
	Rehash(n int)

	// Stats returns a statistics snapshot of the underlying table
	Stats() hashtable.Stats
}
