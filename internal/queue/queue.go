package queue

import "sync"

// Queue is a generic thread-safe FIFO queue. Popped slots are reclaimed
// lazily so bursts of track points do not reallocate on every drain.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Pop removes and returns the first item. Returns the zero value if empty.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		var zero T
		return zero
	}

	item := q.items[q.head]
	var zero T
	q.items[q.head] = zero // release for GC
	q.head++

	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head >= len(q.items)
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Clear removes all items from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
	q.head = 0
}

// GetAndEmpty returns all items and clears the queue.
func (q *Queue[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := q.items[q.head:]
	q.items = make([]T, 0, cap(q.items))
	q.head = 0
	return result
}
