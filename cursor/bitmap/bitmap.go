package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/leapjoin/cursor"
)

// Cursor walks a roaring bitmap in ascending order. Seeks map directly
// onto the bitmap iterator's container-skipping advance, so leaping over
// a sparse stretch never touches the containers in between.
//
// The bitmap is borrowed: it must not be modified while the cursor is in
// use.
type Cursor struct {
	it    roaring.IntPeekable
	cur   uint32
	valid bool
}

var _ cursor.Cursor[uint32] = (*Cursor)(nil)

// New returns a cursor positioned on the smallest value of rb. An empty
// bitmap yields an exhausted cursor.
func New(rb *roaring.Bitmap) *Cursor {
	c := &Cursor{it: rb.Iterator()}
	if c.it.HasNext() {
		c.cur = c.it.Next()
		c.valid = true
	}
	return c
}

// Key implements cursor.Cursor.
func (c *Cursor) Key() uint32 {
	if !c.valid {
		panic("bitmap: Key on exhausted cursor")
	}
	return c.cur
}

// Valid implements cursor.Cursor.
func (c *Cursor) Valid() bool {
	return c.valid
}

// Next implements cursor.Cursor.
func (c *Cursor) Next() bool {
	if !c.valid {
		panic("bitmap: Next on exhausted cursor")
	}
	if !c.it.HasNext() {
		c.valid = false
		return false
	}
	c.cur = c.it.Next()
	return true
}

// Seek implements cursor.Cursor.
func (c *Cursor) Seek(target uint32) bool {
	if !c.valid {
		panic("bitmap: Seek on exhausted cursor")
	}
	if target < c.cur {
		panic("bitmap: Seek moved backward")
	}
	if target == c.cur {
		return true
	}

	c.it.AdvanceIfNeeded(target)
	if !c.it.HasNext() {
		c.valid = false
		return false
	}
	c.cur = c.it.Next()
	return true
}
