package dynarray

import "slices"

// growthFactor is applied to the capacity whenever an append does not fit
const growthFactor = 1.5

// Array is a growable sequence of elements with amortized O(1) appends.
// The zero value is an empty array ready to use.
type Array[T any] struct {
	data []T
}

// New creates a new array with room for capacity elements
func New[T any](capacity int) *Array[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Array[T]{
		data: make([]T, 0, capacity),
	}
}

// Of creates a new array holding the given elements
func Of[T any](elements ...T) *Array[T] {
	return &Array[T]{
		data: slices.Clone(elements),
	}
}

// Len returns the amount of stored elements
func (arr *Array[T]) Len() int {
	return len(arr.data)
}

// Cap returns the amount of elements the array can hold without reallocating
func (arr *Array[T]) Cap() int {
	return cap(arr.data)
}

// Reserve makes sure the array can hold at least n elements in total without reallocating.
// If n is not greater than the current capacity, this is a no-op.
func (arr *Array[T]) Reserve(n int) {
	if n > cap(arr.data) {
		arr.data = slices.Grow(arr.data, n-len(arr.data))
	}
}

// Append appends item to the end of the array
func (arr *Array[T]) Append(item T) {
	if len(arr.data) == cap(arr.data) {
		arr.data = slices.Grow(arr.data, int(float64(cap(arr.data))*growthFactor)+1-len(arr.data))
	}
	arr.data = append(arr.data, item)
}

// At returns the element at index i.
// It panics if i is out of range.
func (arr *Array[T]) At(i int) T {
	return arr.data[i]
}

// Set replaces the element at index i
func (arr *Array[T]) Set(i int, item T) {
	arr.data[i] = item
}

// RemoveAt removes the element at index i and shifts the following elements to the left
func (arr *Array[T]) RemoveAt(i int) {
	arr.data = slices.Delete(arr.data, i, i+1)
}

// Slice returns the stored elements.
// The returned slice aliases the array's storage until the next call to Append or Reserve.
func (arr *Array[T]) Slice() []T {
	return arr.data
}

// Clear removes all elements but keeps the allocated capacity
func (arr *Array[T]) Clear() {
	clear(arr.data)
	arr.data = arr.data[:0]
}
