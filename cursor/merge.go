package cursor

import (
	"cmp"
	"container/heap"

	"github.com/hupe1980/leapjoin/queue"
)

// Merge is the k-way union of cursors: it yields every key held by at
// least one input, in ascending order, each key once. It implements
// Cursor[K] itself, so a merge can feed a join, another merge, or a
// segment writer when runs are compacted.
//
// A min-heap over the inputs keeps the smallest current key on top, so
// each step costs O(log k). Like a join, a merge owns its inputs for
// its whole lifetime and is single-use.
type Merge[K cmp.Ordered] struct {
	pq        queue.Queue[K, Cursor[K]]
	exhausted bool
}

var _ Cursor[int] = (*Merge[int])(nil)

// NewMerge builds the union of cursors. Inputs that are already
// exhausted are skipped; with no live input the merge starts exhausted.
func NewMerge[K cmp.Ordered](cursors []Cursor[K]) *Merge[K] {
	m := &Merge[K]{}
	for _, c := range cursors {
		if c.Valid() {
			m.pq.Items = append(m.pq.Items, &queue.Item[K, Cursor[K]]{Priority: c.Key(), Value: c})
		}
	}
	heap.Init(&m.pq)
	m.exhausted = m.pq.Len() == 0
	return m
}

// Key implements Cursor.
func (m *Merge[K]) Key() K {
	if m.exhausted {
		panic("cursor: Key on exhausted cursor")
	}
	return m.pq.Top().Priority
}

// Valid implements Cursor.
func (m *Merge[K]) Valid() bool {
	return !m.exhausted
}

// Next implements Cursor. Every input positioned on the current key is
// advanced, so a key present in several inputs is still yielded once.
func (m *Merge[K]) Next() bool {
	if m.exhausted {
		panic("cursor: Next on exhausted cursor")
	}

	cur := m.pq.Top().Priority
	for m.pq.Len() > 0 && m.pq.Top().Priority == cur {
		it := m.pq.Top()
		if it.Value.Next() {
			it.Priority = it.Value.Key()
			heap.Fix(&m.pq, 0)
		} else {
			heap.Pop(&m.pq)
		}
	}

	if m.pq.Len() == 0 {
		m.exhausted = true
		return false
	}
	return true
}

// Seek implements Cursor. Only inputs behind the target move; each is
// sought directly, so skipped stretches cost their inputs one Seek.
func (m *Merge[K]) Seek(target K) bool {
	if m.exhausted {
		panic("cursor: Seek on exhausted cursor")
	}
	if target < m.pq.Top().Priority {
		panic("cursor: Seek moved backward")
	}

	for m.pq.Len() > 0 && m.pq.Top().Priority < target {
		it := m.pq.Top()
		if it.Value.Seek(target) {
			it.Priority = it.Value.Key()
			heap.Fix(&m.pq, 0)
		} else {
			heap.Pop(&m.pq)
		}
	}

	if m.pq.Len() == 0 {
		m.exhausted = true
		return false
	}
	return true
}
