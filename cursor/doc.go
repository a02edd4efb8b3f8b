// Package cursor defines the seekable cursor capability that leapjoin
// intersects over, plus the in-memory realizations of it.
//
// A Cursor walks a strictly ascending, duplicate-free key sequence in one
// direction. Besides single steps it supports Seek, which jumps forward to
// the first key >= a target without visiting the keys in between. Any data
// source that can answer "first key >= target" efficiently can participate
// in a join: slices (this package), roaring bitmaps (cursor/bitmap),
// on-disk sorted runs (segment), or a nested join itself.
//
// Merge is the dual of a join: the deduplicated union of cursors,
// itself a Cursor, used when runs are folded together.
//
// # Contract
//
// Cursors are forward-only and single-use. Operating on an exhausted
// cursor, or seeking backward, is a programmer error and panics; see the
// Cursor docs for the exact preconditions. Construction-time validation is
// available where input cannot be trusted (NewSliceChecked).
//
// # Usage
//
//	c := cursor.NewSlice([]int{1, 4, 9, 16})
//	for c.Valid() {
//	    fmt.Println(c.Key())
//	    if !c.Next() {
//	        break
//	    }
//	}
//
// Or, using the range-over-func form:
//
//	for k := range cursor.All(c) {
//	    fmt.Println(k)
//	}
package cursor
