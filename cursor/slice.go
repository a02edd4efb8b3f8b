package cursor

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrNotAscending is returned by NewSliceChecked when the input is not
// strictly ascending (out of order or containing duplicates).
var ErrNotAscending = errors.New("keys must be strictly ascending")

// Slice is a Cursor over an in-memory ascending key slice.
//
// The slice is borrowed, never copied: the caller keeps ownership and must
// not mutate it while the cursor (or a join built on it) is in use.
type Slice[K cmp.Ordered] struct {
	keys []K
	pos  int
}

var _ Cursor[int] = (*Slice[int])(nil)

// NewSlice returns a cursor positioned on the first element of keys.
// keys must be strictly ascending and duplicate-free; this is not
// verified. Use NewSliceChecked for untrusted input. An empty or nil
// slice yields an exhausted cursor.
func NewSlice[K cmp.Ordered](keys []K) *Slice[K] {
	return &Slice[K]{keys: keys}
}

// NewSliceChecked verifies that keys are strictly ascending before
// building the cursor. It returns ErrNotAscending (wrapped with the
// offending positions) otherwise.
func NewSliceChecked[K cmp.Ordered](keys []K) (*Slice[K], error) {
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			return nil, fmt.Errorf("%w: keys[%d] (%v) <= keys[%d] (%v)",
				ErrNotAscending, i, keys[i], i-1, keys[i-1])
		}
	}
	return &Slice[K]{keys: keys}, nil
}

// Key implements Cursor.
func (s *Slice[K]) Key() K {
	if s.pos >= len(s.keys) {
		panic("cursor: Key on exhausted cursor")
	}
	return s.keys[s.pos]
}

// Valid implements Cursor.
func (s *Slice[K]) Valid() bool {
	return s.pos < len(s.keys)
}

// Next implements Cursor.
func (s *Slice[K]) Next() bool {
	if s.pos >= len(s.keys) {
		panic("cursor: Next on exhausted cursor")
	}
	s.pos++
	return s.pos < len(s.keys)
}

// Seek implements Cursor. It gallops forward in doubling steps to bracket
// the target, then binary-searches the bracket, so a seek over d skipped
// elements costs O(log d) comparisons.
func (s *Slice[K]) Seek(target K) bool {
	n := len(s.keys)
	if s.pos >= n {
		panic("cursor: Seek on exhausted cursor")
	}
	if target < s.keys[s.pos] {
		panic("cursor: Seek moved backward")
	}
	if s.keys[s.pos] >= target {
		return true
	}

	// Invariant entering the search: keys[lo] < target <= keys[hi]
	// (or hi == n).
	bound := 1
	for s.pos+bound < n && s.keys[s.pos+bound] < target {
		bound <<= 1
	}
	lo := s.pos + bound/2
	hi := s.pos + bound
	if hi > n {
		hi = n
	}
	for lo+1 < hi {
		mid := lo + (hi-lo)/2
		if s.keys[mid] < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	s.pos = hi
	return hi < n
}
