package hashtable

// Sequence is a growable sequence bulk exports append to.
// *dynarray.Array implements it.
type Sequence[T any] interface {
	// Reserve makes room for at least n elements in total
	Reserve(n int)

	// Append appends item to the end of the sequence
	Append(item T)
}

// walk calls fn for every entry in cursor order
func (table *Table[K, V]) walk(fn func(entry *Entry[K, V])) {
	for i := range table.buckets {
		for entry := table.buckets[i].head; entry != nil; entry = entry.next {
			fn(entry)
		}
	}
}

// GetKeys appends every key to dst and returns the amount of appended keys
func (table *Table[K, V]) GetKeys(dst Sequence[K]) int {
	dst.Reserve(table.count)
	table.walk(func(entry *Entry[K, V]) {
		dst.Append(entry.key)
	})
	return table.count
}

// GetValues appends every value to dst and returns the amount of appended values
func (table *Table[K, V]) GetValues(dst Sequence[V]) int {
	dst.Reserve(table.count)
	table.walk(func(entry *Entry[K, V]) {
		dst.Append(entry.Value)
	})
	return table.count
}

// GetElements appends a copy of every entry to dst and returns the amount of appended elements
func (table *Table[K, V]) GetElements(dst Sequence[Element[K, V]]) int {
	dst.Reserve(table.count)
	table.walk(func(entry *Entry[K, V]) {
		dst.Append(entry.element())
	})
	return table.count
}

// FilterKeys appends every key accepted by pred to dst and returns the amount of appended keys
func (table *Table[K, V]) FilterKeys(pred func(key K) bool, dst Sequence[K]) int {
	n := 0
	table.walk(func(entry *Entry[K, V]) {
		if pred(entry.key) {
			dst.Append(entry.key)
			n++
		}
	})
	return n
}

// FilterValues appends every value accepted by pred to dst and returns the amount of appended values
func (table *Table[K, V]) FilterValues(pred func(value V) bool, dst Sequence[V]) int {
	n := 0
	table.walk(func(entry *Entry[K, V]) {
		if pred(entry.Value) {
			dst.Append(entry.Value)
			n++
		}
	})
	return n
}

// FilterElements appends a copy of every entry accepted by pred to dst and returns the amount of appended elements
func (table *Table[K, V]) FilterElements(pred func(element Element[K, V]) bool, dst Sequence[Element[K, V]]) int {
	n := 0
	table.walk(func(entry *Entry[K, V]) {
		element := entry.element()
		if pred(element) {
			dst.Append(element)
			n++
		}
	})
	return n
}
