package cursor

import (
	"cmp"
	"iter"
)

// Cursor is a forward-only cursor over a strictly ascending, finite key
// sequence. It is the capability every join input must provide.
//
// A cursor is either positioned on a key (Valid returns true) or
// exhausted. Exhaustion is terminal. Calling Key, Next or Seek on an
// exhausted cursor is a programmer error and panics; the join coordinator
// never does so, and callers driving a cursor directly must check Valid
// (or the bool results) themselves.
//
// Implementations are not safe for concurrent use unless documented
// otherwise.
type Cursor[K cmp.Ordered] interface {
	// Key returns the key the cursor is positioned on.
	// It panics if the cursor is exhausted.
	Key() K

	// Valid reports whether the cursor is positioned on a key. It is
	// false once the cursor has passed the last element, and stays false.
	Valid() bool

	// Next advances by exactly one element and reports whether the
	// cursor is still positioned on a key. The new key, if any, is
	// strictly greater than the previous one. It panics if the cursor is
	// already exhausted.
	Next() bool

	// Seek advances to the first key >= target and reports whether the
	// cursor is still positioned on a key. Seeks are monotonic: target
	// must be >= the current key, and seeking backward panics. Seek must
	// be at least as cheap as calling Next until Key() >= target;
	// index-backed implementations should do better than linear.
	// It panics if the cursor is exhausted.
	Seek(target K) bool
}

// Compare orders two cursors by their current keys. It panics if either
// cursor is exhausted; an exhausted cursor has no key to compare.
func Compare[K cmp.Ordered](a, b Cursor[K]) int {
	if !a.Valid() || !b.Valid() {
		panic("cursor: Compare on exhausted cursor")
	}
	return cmp.Compare(a.Key(), b.Key())
}

// All returns a single-use iterator over the remaining keys of c,
// consuming the cursor as it goes. It works for any Cursor, including a
// join.
func All[K cmp.Ordered](c Cursor[K]) iter.Seq[K] {
	return func(yield func(K) bool) {
		for c.Valid() {
			if !yield(c.Key()) {
				return
			}
			if !c.Next() {
				return
			}
		}
	}
}

// Collect drains c and returns its remaining keys. A nil result means the
// cursor was already exhausted.
func Collect[K cmp.Ordered](c Cursor[K]) []K {
	var keys []K
	for k := range All(c) {
		keys = append(keys, k)
	}
	return keys
}
