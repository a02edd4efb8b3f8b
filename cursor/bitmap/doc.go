// Package bitmap adapts roaring bitmaps to the cursor interface.
//
// Roaring bitmaps are the natural in-memory representation for dense
// posting sets: compressed, cheap to build, and with an iterator that can
// skip whole containers on advance. Wrapping one in a Cursor makes it a
// join input alongside slice and segment cursors.
//
// # Usage
//
//	rb1 := roaring.BitmapOf(0, 1, 3, 4, 5, 6, 7, 8, 9, 11)
//	rb2 := roaring.BitmapOf(0, 2, 6, 7, 8, 9, 11)
//
//	j, err := leapjoin.New([]cursor.Cursor[uint32]{
//		bitmap.New(rb1),
//		bitmap.New(rb2),
//	})
//
// For a one-shot intersection of plain bitmaps, roaring.And is faster;
// the cursor pays off when bitmaps join against inputs roaring cannot
// see, such as on-disk segments, or when the consumer needs seek-driven
// skipping.
package bitmap
