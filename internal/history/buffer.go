// Package history provides a fixed-capacity FIFO buffer for bounded
// in-memory sample and line histories.
package history

import "iter"

// Buffer keeps at most its capacity of items. Pushing onto a full buffer
// evicts the oldest item. The zero capacity is legal: every push evicts the
// pushed item itself and the buffer stays empty.
type Buffer[T any] struct {
	items []T
	head  int // index of the oldest item
	size  int
	cap   int
}

// New creates a buffer holding at most capacity items.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer[T]{
		items: make([]T, capacity),
		cap:   capacity,
	}
}

// Push appends item. When the buffer is full the oldest item is evicted and
// returned with ok=true. With capacity zero the pushed item is its own
// eviction.
func (b *Buffer[T]) Push(item T) (evicted T, ok bool) {
	if b.cap == 0 {
		return item, true
	}
	if b.size == b.cap {
		evicted = b.items[b.head]
		b.items[b.head] = item
		b.head = (b.head + 1) % b.cap
		return evicted, true
	}
	b.items[(b.head+b.size)%b.cap] = item
	b.size++
	return evicted, false
}

// Clear removes all items. Capacity is unchanged.
func (b *Buffer[T]) Clear() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.size = 0
}

// First returns the oldest item.
func (b *Buffer[T]) First() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.items[b.head], true
}

// Last returns the newest item.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.items[(b.head+b.size-1)%b.cap], true
}

// Len returns the number of items currently held.
func (b *Buffer[T]) Len() int { return b.size }

// Cap returns the configured capacity.
func (b *Buffer[T]) Cap() int { return b.cap }

// IsEmpty reports whether the buffer holds no items.
func (b *Buffer[T]) IsEmpty() bool { return b.size == 0 }

// All iterates items oldest to newest. The sequence is restartable and
// reflects the contents at the time each iteration starts.
func (b *Buffer[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(b.items[(b.head+i)%b.cap]) {
				return
			}
		}
	}
}

// Slice copies the current contents oldest to newest.
func (b *Buffer[T]) Slice() []T {
	out := make([]T, 0, b.size)
	for item := range b.All() {
		out = append(out, item)
	}
	return out
}
