package hashtable

import (
	"fmt"
	"github.com/rs/zerolog"
	"github.com/skybi/chaincache/internal/hasher"
)

const (
	// MaxLoadFactor is the highest ratio of elements to buckets a table accepts after an insertion
	MaxLoadFactor float32 = 0.75

	// InvalidLoadFactor is reported by LoadFactor for tables without buckets
	InvalidLoadFactor float32 = -1

	// InitialBuckets is the bucket count of tables created from a small set of pairs
	InitialBuckets = 8
)

// Table is a hash table that resolves collisions by separate chaining.
//
// Every bucket holds a singly linked chain of entries in insertion order. The bucket array grows whenever an
// insertion would push the load factor above MaxLoadFactor and never shrinks on removal.
//
// Notes:
//   - The zero value is an empty table ready to use (with the default hasher for K).
//   - Table is not safe for concurrent use; guard it with a lock (see the hashmap package).
type Table[K comparable, V any] struct {
	buckets []bucket[K, V]
	count   int

	keyHasher hasher.Hasher[K]
	logger    *zerolog.Logger
	onRehash  func(from, to int)

	// generation is incremented on every structural modification that invalidates all cursors
	generation uint64
	growths    int
}

// New creates a new table.
//
// Parameters:
//   - options: configuration options (WithBuckets, WithHasher, WithLogger, WithRehashHook)
func New[K comparable, V any](options ...func(*Config)) *Table[K, V] {
	var cfg Config
	for _, o := range options {
		o(&cfg)
	}
	table := &Table[K, V]{}
	table.init(&cfg)
	return table
}

// NewFrom creates a new table holding the given pairs.
// The table starts with InitialBuckets buckets, or more if the pairs would exceed MaxLoadFactor.
// Pairs with a key that is already present are ignored, so the first occurrence of a key wins.
func NewFrom[K comparable, V any](pairs []Pair[K, V], options ...func(*Config)) *Table[K, V] {
	var cfg Config
	for _, o := range options {
		o(&cfg)
	}
	buckets := InitialBuckets
	if exceedsLoadFactor(len(pairs), InitialBuckets) {
		buckets = minBuckets(len(pairs))
	}
	cfg.buckets = max(cfg.buckets, buckets)

	table := &Table[K, V]{}
	table.init(&cfg)
	for _, pair := range pairs {
		table.Emplace(pair.Key, pair.Value)
	}
	return table
}

func (table *Table[K, V]) init(cfg *Config) {
	if cfg.keyHasher != nil {
		keyHasher, ok := cfg.keyHasher.(hasher.Hasher[K])
		if !ok {
			panic(fmt.Errorf("%w: got %T", ErrHasherMismatch, cfg.keyHasher))
		}
		table.keyHasher = keyHasher
	} else {
		table.keyHasher = hasher.Default[K]()
	}
	table.logger = cfg.logger
	table.onRehash = cfg.onRehash
	if cfg.buckets > 0 {
		table.buckets = make([]bucket[K, V], cfg.buckets)
	}
}

// minBuckets returns the bucket count used when growing for n elements: n / MaxLoadFactor (truncated) + 1.
// The result always keeps n / result strictly below MaxLoadFactor.
func minBuckets(n int) int {
	return n*4/3 + 1
}

// exceedsLoadFactor reports whether n / buckets > MaxLoadFactor
func exceedsLoadFactor(n, buckets int) bool {
	return 4*n > 3*buckets
}

func (table *Table[K, V]) hashOf(key K) uint64 {
	if table.keyHasher == nil {
		table.keyHasher = hasher.Default[K]()
	}
	return table.keyHasher.GetHashCode(key)
}

func (table *Table[K, V]) indexOf(hash uint64) int {
	return int(hash % uint64(len(table.buckets)))
}

// ============================================================================
// Size & shape
// ============================================================================

// Size returns the amount of stored key-value pairs
func (table *Table[K, V]) Size() int {
	return table.count
}

// IsEmpty returns whether the table holds no entries
func (table *Table[K, V]) IsEmpty() bool {
	return table.count == 0
}

// BucketCount returns the length of the bucket array
func (table *Table[K, V]) BucketCount() int {
	return len(table.buckets)
}

// BucketSize returns the amount of entries in the bucket at index i.
// It panics if i is out of range.
func (table *Table[K, V]) BucketSize(i int) int {
	return table.buckets[i].count
}

// BucketIndex returns the index of the bucket key belongs to, or -1 if the table has no buckets
func (table *Table[K, V]) BucketIndex(key K) int {
	if len(table.buckets) == 0 {
		return -1
	}
	return table.indexOf(table.hashOf(key))
}

// LoadFactor returns the ratio of entries to buckets, or InvalidLoadFactor if the table has no buckets
func (table *Table[K, V]) LoadFactor() float32 {
	if len(table.buckets) == 0 {
		return InvalidLoadFactor
	}
	return float32(table.count) / float32(len(table.buckets))
}

// HashOf returns the hash code the table computes for key
func (table *Table[K, V]) HashOf(key K) uint64 {
	return table.hashOf(key)
}

// ============================================================================
// Lookup
// ============================================================================

func (table *Table[K, V]) find(hash uint64, key K) *Entry[K, V] {
	if len(table.buckets) == 0 {
		return nil
	}
	for entry := table.buckets[table.indexOf(hash)].head; entry != nil; entry = entry.next {
		if entry.hash == hash && entry.key == key {
			return entry
		}
	}
	return nil
}

// Find returns the entry stored for key, or nil if there is none.
// Entries are matched by their cached hash code first and by key equality second.
func (table *Table[K, V]) Find(key K) *Entry[K, V] {
	return table.find(table.hashOf(key), key)
}

// FindByHash returns the first entry (in chain order) whose cached hash code equals hash, or nil if there is none.
// Keys are not compared, so distinct keys sharing a hash code are indistinguishable to this method.
func (table *Table[K, V]) FindByHash(hash uint64) *Entry[K, V] {
	if len(table.buckets) == 0 {
		return nil
	}
	for entry := table.buckets[table.indexOf(hash)].head; entry != nil; entry = entry.next {
		if entry.hash == hash {
			return entry
		}
	}
	return nil
}

// Contains returns whether a value is stored for key
func (table *Table[K, V]) Contains(key K) bool {
	return table.Find(key) != nil
}

// ContainsByHash returns whether an entry with the given hash code is stored
func (table *Table[K, V]) ContainsByHash(hash uint64) bool {
	return table.FindByHash(hash) != nil
}

// Get returns the value stored for key and a boolean indicating whether it was found
func (table *Table[K, V]) Get(key K) (V, bool) {
	entry := table.Find(key)
	if entry == nil {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// At returns the value stored for key.
// It panics with ErrKeyNotFound if key is not present.
func (table *Table[K, V]) At(key K) V {
	entry := table.Find(key)
	if entry == nil {
		panic(fmt.Errorf("%w: %v", ErrKeyNotFound, key))
	}
	return entry.Value
}

// ============================================================================
// Insertion
// ============================================================================

// insert appends a new entry without checking for duplicates
func (table *Table[K, V]) insert(hash uint64, key K, value V) *Entry[K, V] {
	table.rehashForInsertion(table.count + 1)
	entry := &Entry[K, V]{
		hash:   hash,
		key:    key,
		Value:  value,
		linked: true,
	}
	table.buckets[table.indexOf(hash)].pushBack(entry)
	table.count++
	return entry
}

// Emplace stores value for key unless key is already present.
// It returns the entry stored for key and whether it was newly inserted. An existing entry is left untouched.
func (table *Table[K, V]) Emplace(key K, value V) (*Entry[K, V], bool) {
	hash := table.hashOf(key)
	if entry := table.find(hash, key); entry != nil {
		return entry, false
	}
	return table.insert(hash, key, value), true
}

// EmplaceByHash behaves like Emplace but uses the given hash code instead of hashing key.
// Presence is decided by hash code only (see FindByHash).
// hash must equal HashOf(key); otherwise key-based operations will not find the entry
// and a later Emplace of key stores a second entry.
func (table *Table[K, V]) EmplaceByHash(hash uint64, key K, value V) (*Entry[K, V], bool) {
	if entry := table.FindByHash(hash); entry != nil {
		return entry, false
	}
	return table.insert(hash, key, value), true
}

// EmplaceOrAssign stores value for key, overwriting the value of an existing entry in place.
// It returns the entry stored for key and whether it was newly inserted.
func (table *Table[K, V]) EmplaceOrAssign(key K, value V) (*Entry[K, V], bool) {
	hash := table.hashOf(key)
	if entry := table.find(hash, key); entry != nil {
		entry.Value = value
		return entry, false
	}
	return table.insert(hash, key, value), true
}

// Insert is the Pair form of Emplace
func (table *Table[K, V]) Insert(pair Pair[K, V]) (*Entry[K, V], bool) {
	return table.Emplace(pair.Key, pair.Value)
}

// InsertOrAssign is the Pair form of EmplaceOrAssign
func (table *Table[K, V]) InsertOrAssign(pair Pair[K, V]) (*Entry[K, V], bool) {
	return table.EmplaceOrAssign(pair.Key, pair.Value)
}

// InsertAll inserts every pair whose key is not present yet and returns the amount of inserted pairs.
// The bucket array is grown once up front for all pairs.
func (table *Table[K, V]) InsertAll(pairs ...Pair[K, V]) int {
	return table.insertAll(pairs, false)
}

// InsertOrAssignAll inserts or overwrites every pair and returns the amount of newly inserted pairs.
// The bucket array is grown once up front for all pairs.
func (table *Table[K, V]) InsertOrAssignAll(pairs ...Pair[K, V]) int {
	return table.insertAll(pairs, true)
}

func (table *Table[K, V]) insertAll(pairs []Pair[K, V], assign bool) int {
	if len(pairs) == 0 {
		return 0
	}
	table.rehashForInsertion(table.count + len(pairs))
	inserted := 0
	for _, pair := range pairs {
		hash := table.hashOf(pair.Key)
		if entry := table.find(hash, pair.Key); entry != nil {
			if assign {
				entry.Value = pair.Value
			}
			continue
		}
		table.insert(hash, pair.Key, pair.Value)
		inserted++
	}
	return inserted
}

// Index returns a pointer to the value stored for key, inserting the zero value first if key is not present.
// The pointer stays valid until the entry is removed.
func (table *Table[K, V]) Index(key K) *V {
	hash := table.hashOf(key)
	entry := table.find(hash, key)
	if entry == nil {
		var zero V
		entry = table.insert(hash, key, zero)
	}
	return &entry.Value
}

// ============================================================================
// Removal
// ============================================================================

// Remove deletes the entry stored for key.
// It returns a cursor positioned at the entry following the removed one in iteration order and whether an entry
// was removed. If nothing was removed, the returned cursor is the end cursor.
func (table *Table[K, V]) Remove(key K) (Cursor[K, V], bool) {
	hash := table.hashOf(key)
	return table.removeMatching(hash, func(entry *Entry[K, V]) bool {
		return entry.hash == hash && entry.key == key
	})
}

// RemoveByHash deletes the first entry (in chain order) whose cached hash code equals hash.
// See Remove for the return values.
func (table *Table[K, V]) RemoveByHash(hash uint64) (Cursor[K, V], bool) {
	return table.removeMatching(hash, func(entry *Entry[K, V]) bool {
		return entry.hash == hash
	})
}

// RemoveAt deletes the entry cursor points to and returns a cursor positioned at the following entry.
// It panics if cursor is the end cursor or no longer valid.
func (table *Table[K, V]) RemoveAt(cursor Cursor[K, V]) Cursor[K, V] {
	cursor.mustDeref()
	if cursor.table != table {
		panic(ErrStaleCursor)
	}
	target := cursor.entry
	next, _ := table.removeMatching(target.hash, func(entry *Entry[K, V]) bool {
		return entry == target
	})
	return next
}

func (table *Table[K, V]) removeMatching(hash uint64, match func(*Entry[K, V]) bool) (Cursor[K, V], bool) {
	if len(table.buckets) == 0 {
		return table.End(), false
	}
	idx := table.indexOf(hash)
	b := &table.buckets[idx]

	var prev *Entry[K, V]
	entry := b.head
	for entry != nil && !match(entry) {
		prev = entry
		entry = entry.next
	}
	if entry == nil {
		return table.End(), false
	}

	next := entry.next
	if prev == nil {
		b.head = next
	} else {
		prev.next = next
	}
	if b.tail == entry {
		b.tail = prev
	}
	b.count--
	table.count--
	entry.next = nil
	entry.linked = false

	if next != nil {
		return table.cursorAt(idx, next), true
	}
	return table.cursorFrom(idx + 1), true
}

// Clear removes every entry but keeps the bucket array.
// All cursors are invalidated.
func (table *Table[K, V]) Clear() {
	for i := range table.buckets {
		table.buckets[i].detachAll()
	}
	table.count = 0
	table.generation++
}

// Release removes every entry and drops the bucket array, returning the table to its empty state.
// All cursors are invalidated.
func (table *Table[K, V]) Release() {
	table.Clear()
	table.buckets = nil
}

// ============================================================================
// Rehashing
// ============================================================================

// Rehash grows the bucket array to at least n buckets.
// If n is not greater than the current bucket count, this is a no-op. Otherwise the new bucket count is the larger
// of n and the smallest count that keeps the load factor within MaxLoadFactor, and every entry is relinked into its
// new bucket. All cursors are invalidated.
func (table *Table[K, V]) Rehash(n int) {
	if n <= len(table.buckets) {
		return
	}
	table.rehash(max(n, minBuckets(table.count)))
}

// rehashForInsertion makes room for prospective entries before an insertion
func (table *Table[K, V]) rehashForInsertion(prospective int) {
	if len(table.buckets) == 0 || exceedsLoadFactor(prospective, len(table.buckets)) {
		table.rehash(minBuckets(prospective))
	}
}

func (table *Table[K, V]) rehash(n int) {
	old := table.buckets
	buckets := make([]bucket[K, V], n)
	for i := range old {
		for entry := old[i].head; entry != nil; {
			next := entry.next
			buckets[entry.hash%uint64(n)].pushBack(entry)
			entry = next
		}
	}
	table.buckets = buckets
	table.generation++
	table.growths++

	if table.logger != nil {
		table.logger.Debug().Int("from", len(old)).Int("to", n).Int("entries", table.count).Msg("rehashed hash table")
	}
	if table.onRehash != nil {
		table.onRehash(len(old), n)
	}
}

// ============================================================================
// Copying & comparison
// ============================================================================

// Clone returns a deep copy of the table's structure with the same bucket count, hasher and configuration.
// Values are copied by assignment.
func (table *Table[K, V]) Clone() *Table[K, V] {
	clone := &Table[K, V]{
		keyHasher: table.keyHasher,
		logger:    table.logger,
		onRehash:  table.onRehash,
		count:     table.count,
	}
	if len(table.buckets) > 0 {
		clone.buckets = make([]bucket[K, V], len(table.buckets))
	}
	for i := range table.buckets {
		for entry := table.buckets[i].head; entry != nil; entry = entry.next {
			clone.buckets[i].pushBack(&Entry[K, V]{
				hash:   entry.hash,
				key:    entry.key,
				Value:  entry.Value,
				linked: true,
			})
		}
	}
	return clone
}

// Equal reports whether a and b hold the same keys with equal values
func Equal[K comparable, V comparable](a, b *Table[K, V]) bool {
	return EqualFunc(a, b, func(v1, v2 V) bool {
		return v1 == v2
	})
}

// EqualFunc reports whether a and b hold the same keys with values considered equal by eq
func EqualFunc[K comparable, V1, V2 any](a *Table[K, V1], b *Table[K, V2], eq func(V1, V2) bool) bool {
	if a.Size() != b.Size() {
		return false
	}
	for i := range a.buckets {
		for entry := a.buckets[i].head; entry != nil; entry = entry.next {
			other := b.Find(entry.key)
			if other == nil || !eq(entry.Value, other.Value) {
				return false
			}
		}
	}
	return true
}
