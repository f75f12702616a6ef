package hashtable

import "iter"

// Cursor is a traversal position inside a Table.
//
// Cursors visit entries in ascending bucket order and, inside a bucket, in insertion order. The end cursor has a
// bucket index equal to the bucket count and no entry.
//
// A cursor is invalidated by every rehash, Clear and Release of its table, and by the removal of the entry it points
// to. Using an invalidated cursor panics with ErrStaleCursor; continue iterating after a removal with the cursor
// returned by the removing method instead.
type Cursor[K comparable, V any] struct {
	table      *Table[K, V]
	generation uint64
	index      int
	entry      *Entry[K, V]
}

// Begin returns a cursor positioned at the first entry, or the end cursor if the table is empty
func (table *Table[K, V]) Begin() Cursor[K, V] {
	return table.cursorFrom(0)
}

// End returns the end cursor
func (table *Table[K, V]) End() Cursor[K, V] {
	return table.cursorAt(len(table.buckets), nil)
}

func (table *Table[K, V]) cursorAt(index int, entry *Entry[K, V]) Cursor[K, V] {
	return Cursor[K, V]{
		table:      table,
		generation: table.generation,
		index:      index,
		entry:      entry,
	}
}

// cursorFrom returns a cursor at the head of the first non-empty bucket at or after index
func (table *Table[K, V]) cursorFrom(index int) Cursor[K, V] {
	for index < len(table.buckets) && table.buckets[index].head == nil {
		index++
	}
	if index >= len(table.buckets) {
		return table.End()
	}
	return table.cursorAt(index, table.buckets[index].head)
}

// Valid returns whether the cursor may still be used
func (cursor Cursor[K, V]) Valid() bool {
	if cursor.table == nil || cursor.generation != cursor.table.generation {
		return false
	}
	return cursor.entry == nil || cursor.entry.linked
}

// IsEnd returns whether the cursor is positioned behind the last entry
func (cursor Cursor[K, V]) IsEnd() bool {
	return cursor.entry == nil
}

// Equal returns whether both cursors belong to the same table and point to the same position
func (cursor Cursor[K, V]) Equal(other Cursor[K, V]) bool {
	return cursor.table == other.table && cursor.index == other.index && cursor.entry == other.entry
}

// BucketIndex returns the index of the bucket the cursor is positioned in
func (cursor Cursor[K, V]) BucketIndex() int {
	return cursor.index
}

func (cursor Cursor[K, V]) mustBeValid() {
	if !cursor.Valid() {
		panic(ErrStaleCursor)
	}
}

func (cursor Cursor[K, V]) mustDeref() {
	cursor.mustBeValid()
	if cursor.entry == nil {
		panic(ErrEndCursor)
	}
}

// Next advances the cursor to the following entry, skipping empty buckets.
// It panics if the cursor is invalid or already at the end.
func (cursor *Cursor[K, V]) Next() {
	cursor.mustDeref()
	if next := cursor.entry.next; next != nil {
		cursor.entry = next
		return
	}
	*cursor = cursor.table.cursorFrom(cursor.index + 1)
}

// Entry returns the entry the cursor points to
func (cursor Cursor[K, V]) Entry() *Entry[K, V] {
	cursor.mustDeref()
	return cursor.entry
}

// Hash returns the cached hash code of the current entry
func (cursor Cursor[K, V]) Hash() uint64 {
	return cursor.Entry().hash
}

// Key returns the key of the current entry
func (cursor Cursor[K, V]) Key() K {
	return cursor.Entry().key
}

// Value returns the value of the current entry
func (cursor Cursor[K, V]) Value() V {
	return cursor.Entry().Value
}

// SetValue overwrites the value of the current entry
func (cursor Cursor[K, V]) SetValue(value V) {
	cursor.Entry().Value = value
}

// ============================================================================
// Range-over-func iterators
// ============================================================================

// Entries returns an iterator over all entries in cursor order.
// The yielded entry may be removed during iteration. Modifications that invalidate the position of the following
// entry (a rehash, Clear, or removing that entry) panic with ErrStaleCursor.
func (table *Table[K, V]) Entries() iter.Seq[*Entry[K, V]] {
	return func(yield func(*Entry[K, V]) bool) {
		for cursor := table.Begin(); !cursor.IsEnd(); {
			entry := cursor.entry
			cursor.Next()
			if !yield(entry) {
				return
			}
			cursor.mustBeValid()
		}
	}
}

// All returns an iterator over all key-value pairs in cursor order
func (table *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for entry := range table.Entries() {
			if !yield(entry.key, entry.Value) {
				return
			}
		}
	}
}

// Keys returns an iterator over all keys in cursor order
func (table *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for entry := range table.Entries() {
			if !yield(entry.key) {
				return
			}
		}
	}
}

// Values returns an iterator over all values in cursor order
func (table *Table[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for entry := range table.Entries() {
			if !yield(entry.Value) {
				return
			}
		}
	}
}
