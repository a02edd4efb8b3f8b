// Package segment reads and writes sorted key runs as immutable,
// block compressed files.
//
// A segment stores a strictly ascending sequence of uint64 keys in
// delta varint encoded blocks, each compressed independently and
// checksummed. The block index and a fixed size footer sit at the end
// of the file, so segments can be produced by pure streaming writers:
//
//	+---------+---------+- ... -+---------+-------------+--------+
//	| block 0 | block 1 |       | block N | block index | footer |
//	+---------+---------+- ... -+---------+-------------+--------+
//
// Each stored block is [raw length u32][stored length u32][payload];
// equal lengths mean the payload is stored raw. The index holds one
// fixed size entry per block with its first key, offset, length and
// CRC32C, which gives cursors logarithmic seeks and lets every read be
// verified before use.
//
// Reading goes through blobstore.Blob, with a zero-copy fast path when
// the blob is memory mapped. Cursors implement cursor.Cursor[uint64],
// so segments feed joins directly.
package segment
