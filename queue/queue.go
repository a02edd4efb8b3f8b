// Package queue provides a generic priority queue for container/heap.
// The merge cursor uses it to track which input holds the smallest key.
package queue

import (
	"cmp"
	"container/heap"
)

// Compile time check to ensure Queue satisfies the heap interface.
var _ heap.Interface = (*Queue[int, any])(nil)

// Item is an element of a Queue: a value ranked by its priority.
type Item[P cmp.Ordered, V any] struct {
	Priority P
	Value    V
}

// Queue implements heap.Interface over prioritized items. The zero
// value is an empty min-queue; set Max to pop the largest priority
// first instead. Callers drive it through container/heap.
type Queue[P cmp.Ordered, V any] struct {
	Max   bool
	Items []*Item[P, V]
}

// Len returns the number of elements in the queue.
func (q *Queue[P, V]) Len() int { return len(q.Items) }

// Less reports whether the element with index i should sort before the element with index j.
func (q *Queue[P, V]) Less(i, j int) bool {
	if q.Max {
		return q.Items[i].Priority > q.Items[j].Priority
	}
	return q.Items[i].Priority < q.Items[j].Priority
}

// Swap swaps the elements with indexes i and j.
func (q *Queue[P, V]) Swap(i, j int) {
	q.Items[i], q.Items[j] = q.Items[j], q.Items[i]
}

// Push adds x to the queue.
func (q *Queue[P, V]) Push(x any) {
	q.Items = append(q.Items, x.(*Item[P, V]))
}

// Pop removes and returns the last element. Used by heap.Pop, which
// swaps the top there first.
func (q *Queue[P, V]) Pop() any {
	old := q.Items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // Avoid memory leak
	q.Items = old[:n-1]
	return item
}

// Top returns the highest-ranked element without removing it.
func (q *Queue[P, V]) Top() *Item[P, V] {
	return q.Items[0]
}
