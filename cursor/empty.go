package cursor

import "cmp"

// emptyCursor is the canonical exhausted cursor. Every operation besides
// Valid is a contract violation, exactly as on any other spent cursor.
type emptyCursor[K cmp.Ordered] struct{}

// Empty returns a cursor over no keys. It is exhausted from the start:
// Valid reports false and Key, Next and Seek panic.
func Empty[K cmp.Ordered]() Cursor[K] {
	return emptyCursor[K]{}
}

func (emptyCursor[K]) Key() K {
	panic("cursor: Key on exhausted cursor")
}

func (emptyCursor[K]) Valid() bool { return false }

func (emptyCursor[K]) Next() bool {
	panic("cursor: Next on exhausted cursor")
}

func (emptyCursor[K]) Seek(K) bool {
	panic("cursor: Seek on exhausted cursor")
}
