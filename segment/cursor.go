package segment

import (
	"context"
	"encoding/binary"
	"fmt"
	"slices"
	"sort"

	"github.com/hupe1980/leapjoin/cursor"
	"github.com/hupe1980/leapjoin/internal/hash"
)

// Cursor iterates a segment in ascending key order, loading one block
// at a time. Scratch buffers are reused across block loads, so a scan
// allocates only on the first block and when a larger block shows up.
//
// The Cursor interface has no error return on Next and Seek; a cursor
// that hits an IO or corruption error becomes exhausted and records
// the error for Err.
type Cursor struct {
	r   *Reader
	ctx context.Context // bounds every block fetch this cursor makes

	blockIdx int
	keys     []uint64 // decoded keys of the loaded block
	pos      int

	readBuf   []byte // scratch: stored block bytes on the ReadAt path
	decompBuf []byte // scratch: decompressed payload

	err       error
	exhausted bool
}

var _ cursor.Cursor[uint64] = (*Cursor)(nil)

// NewCursor returns a cursor positioned on the first key of the
// segment, exhausted when the segment is empty. Cursors are
// independent of each other but must not outlive their Reader.
func (r *Reader) NewCursor(ctx context.Context) (*Cursor, error) {
	c := &Cursor{r: r, ctx: ctx, blockIdx: -1}
	if r.footer.keyCount == 0 {
		c.exhausted = true
		return c, nil
	}
	if err := c.loadBlock(0); err != nil {
		return nil, err
	}
	return c, nil
}

// Key returns the current key. It panics when the cursor is exhausted.
func (c *Cursor) Key() uint64 {
	if c.exhausted {
		panic("segment: Key on exhausted cursor")
	}
	return c.keys[c.pos]
}

// Valid reports whether the cursor is positioned on a key.
func (c *Cursor) Valid() bool {
	return !c.exhausted
}

// Next advances to the following key. It panics when the cursor is
// exhausted.
func (c *Cursor) Next() bool {
	if c.exhausted {
		panic("segment: Next on exhausted cursor")
	}

	c.pos++
	if c.pos < len(c.keys) {
		return true
	}
	if c.blockIdx+1 >= len(c.r.index) {
		c.exhausted = true
		return false
	}
	if err := c.loadBlock(c.blockIdx + 1); err != nil {
		c.fail(err)
		return false
	}
	return true
}

// Seek positions the cursor on the first key >= target, using the
// block index to skip blocks entirely. It panics when the cursor is
// exhausted or when target is behind the current key.
func (c *Cursor) Seek(target uint64) bool {
	if c.exhausted {
		panic("segment: Seek on exhausted cursor")
	}
	if target < c.keys[c.pos] {
		panic("segment: Seek moved backward")
	}

	// Fast path: the target is within the loaded block.
	if target <= c.keys[len(c.keys)-1] {
		i, _ := slices.BinarySearch(c.keys[c.pos:], target)
		c.pos += i
		return true
	}

	// Last block whose first key is <= target. The current key is at
	// least this block's first key, so idx never falls before blockIdx.
	idx := sort.Search(len(c.r.index), func(i int) bool {
		return c.r.index[i].firstKey > target
	}) - 1

	if idx != c.blockIdx {
		if err := c.loadBlock(idx); err != nil {
			c.fail(err)
			return false
		}
	}

	i, _ := slices.BinarySearch(c.keys, target)
	if i < len(c.keys) {
		c.pos = i
		return true
	}

	// The target falls in the gap after this block; the answer is the
	// next block's first key.
	if idx+1 >= len(c.r.index) {
		c.exhausted = true
		return false
	}
	if err := c.loadBlock(idx + 1); err != nil {
		c.fail(err)
		return false
	}
	return true
}

// Err returns the first IO or corruption error the cursor hit, or nil.
// An errored cursor reports Valid() == false like an exhausted one, so
// callers that must tell failure from exhaustion check Err after the
// scan.
func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) fail(err error) {
	c.err = err
	c.exhausted = true
}

// loadBlock fetches, verifies and decodes block i into c.keys.
func (c *Cursor) loadBlock(i int) error {
	e := c.r.index[i]

	var stored []byte
	if c.r.data != nil {
		stored = c.r.data[e.offset : e.offset+uint64(e.length)]
	} else {
		if cap(c.readBuf) < int(e.length) {
			c.readBuf = make([]byte, e.length)
		}
		stored = c.readBuf[:e.length]
		if _, err := c.r.blob.ReadAt(c.ctx, stored, int64(e.offset)); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}

	if c.r.verifyChecksum && hash.CRC32C(stored) != e.crc {
		return fmt.Errorf("%w: block %d", ErrChecksum, i)
	}

	rawLen := int(binary.LittleEndian.Uint32(stored[0:4]))
	storedLen := int(binary.LittleEndian.Uint32(stored[4:8]))
	payload := stored[blockHeaderSize:]
	if storedLen != len(payload) {
		return fmt.Errorf("%w: block %d header says %d stored bytes, index says %d",
			ErrCorrupted, i, storedLen, len(payload))
	}

	// A block whose stored length equals its raw length was stored raw.
	if storedLen != rawLen {
		out, err := decompressBlock(c.r.footer.compression, payload, rawLen, c.decompBuf)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		c.decompBuf = out
		payload = out
	}

	if c.keys == nil {
		c.keys = make([]uint64, 0, c.r.footer.blockSize)
	}
	c.keys = c.keys[:0]

	var key uint64
	for off := 0; off < len(payload); {
		v, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return fmt.Errorf("%w: block %d has a truncated varint", ErrCorrupted, i)
		}
		off += n

		if len(c.keys) == 0 {
			key = v
		} else {
			next := key + v
			if v == 0 || next < key {
				return fmt.Errorf("%w: block %d keys not ascending", ErrCorrupted, i)
			}
			key = next
		}
		c.keys = append(c.keys, key)
	}

	if len(c.keys) == 0 || c.keys[0] != e.firstKey {
		return fmt.Errorf("%w: block %d first key does not match index", ErrCorrupted, i)
	}

	c.blockIdx = i
	c.pos = 0
	return nil
}
