package hashtable

// Entry is a single key-value pair stored in a Table together with its cached hash code.
// An entry is owned by exactly one bucket chain. Pointers to an entry stay valid across rehashes because rehashing
// relinks entries instead of copying them; the entry is detached from its table once it gets removed.
type Entry[K comparable, V any] struct {
	hash uint64
	key  K

	// Value may be modified in place; the key and hash code of an entry never change
	Value V

	next   *Entry[K, V]
	linked bool
}

// Hash returns the cached hash code of the entry's key
func (entry *Entry[K, V]) Hash() uint64 {
	return entry.hash
}

// Key returns the entry's key
func (entry *Entry[K, V]) Key() K {
	return entry.key
}

// Linked returns whether the entry is still stored in a table
func (entry *Entry[K, V]) Linked() bool {
	return entry.linked
}

// Pair is a plain key-value pair used for bulk insertions
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Element is a detached copy of an entry, including its hash code
type Element[K comparable, V any] struct {
	Hash  uint64
	Key   K
	Value V
}

func (entry *Entry[K, V]) element() Element[K, V] {
	return Element[K, V]{
		Hash:  entry.hash,
		Key:   entry.key,
		Value: entry.Value,
	}
}

// bucket is a singly linked chain of entries that share the same bucket index
type bucket[K comparable, V any] struct {
	head  *Entry[K, V]
	tail  *Entry[K, V]
	count int
}

// pushBack appends entry to the end of the chain
func (b *bucket[K, V]) pushBack(entry *Entry[K, V]) {
	entry.next = nil
	if b.tail != nil {
		b.tail.next = entry
	} else {
		b.head = entry
	}
	b.tail = entry
	b.count++
}

// detachAll unlinks every entry of the chain and empties it
func (b *bucket[K, V]) detachAll() {
	for entry := b.head; entry != nil; {
		next := entry.next
		entry.next = nil
		entry.linked = false
		entry = next
	}
	b.head = nil
	b.tail = nil
	b.count = 0
}
