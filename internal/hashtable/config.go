package hashtable

import (
	"github.com/rs/zerolog"
	"github.com/skybi/chaincache/internal/hasher"
)

// Config holds the options a Table is created with
type Config struct {
	// buckets is the amount of buckets to allocate up front.
	// Zero or negative values create an empty table that allocates its buckets on the first insertion.
	buckets int

	// keyHasher holds a hasher.Hasher[K] for the table's key type
	keyHasher any

	logger *zerolog.Logger

	onRehash func(from, to int)
}

// WithBuckets pre-sizes the table with n buckets.
// If n is zero or negative, the value is ignored.
func WithBuckets(n int) func(*Config) {
	return func(c *Config) {
		c.buckets = n
	}
}

// WithHasher sets the hash function used for the table's keys.
// The hasher's key type has to match the key type of the table; New panics otherwise.
//
// Usage:
//
//	table := hashtable.New[string, int](hashtable.WithHasher[string](hasher.Func[string](myHash)))
func WithHasher[K any](keyHasher hasher.Hasher[K]) func(*Config) {
	return func(c *Config) {
		if keyHasher != nil {
			c.keyHasher = keyHasher
		}
	}
}

// WithLogger sets the logger rehash events are reported to (debug level)
func WithLogger(logger zerolog.Logger) func(*Config) {
	return func(c *Config) {
		c.logger = &logger
	}
}

// WithRehashHook registers a function that is called after every reallocation of the bucket array.
// from is the bucket count before, to the bucket count after the rehash.
func WithRehashHook(hook func(from, to int)) func(*Config) {
	return func(c *Config) {
		c.onRehash = hook
	}
}
