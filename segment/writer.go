package segment

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/leapjoin/blobstore"
	"github.com/hupe1980/leapjoin/internal/hash"
)

// DefaultBlockSize is the default number of keys per block. Delta
// varint encoding puts a typical block in the single-digit KB range,
// a good unit for both range reads and block caches.
const DefaultBlockSize = 4096

// WriterOption configures segment writing.
type WriterOption func(*writerOptions)

type writerOptions struct {
	blockSize   int
	compression CompressionType
}

// WithBlockSize sets the maximum number of keys per block.
func WithBlockSize(n int) WriterOption {
	return func(o *writerOptions) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithCompression sets the block compression. The default is
// CompressionZstd.
func WithCompression(c CompressionType) WriterOption {
	return func(o *writerOptions) {
		if c.valid() {
			o.compression = c
		}
	}
}

// Writer streams a sorted key run into a segment blob. Keys must be
// appended strictly ascending; blocks, the block index and the footer
// are emitted purely sequentially, so any WritableBlob works as the
// sink, including pipe-backed multipart uploads.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	w           blobstore.WritableBlob
	blockSize   int
	compression CompressionType

	block  []uint64 // keys of the block being filled
	count  uint64
	minKey uint64
	maxKey uint64
	index  []indexEntry
	offset uint64 // bytes written so far

	payload []byte // scratch: delta varint encoding
	compBuf []byte // scratch: compression output
	lz4c    lz4.Compressor

	closed bool
}

// NewWriter creates a Writer emitting into w. The caller keeps
// ownership of w on error: a failed Writer leaves the blob unpublished
// and the caller may discard it.
func NewWriter(w blobstore.WritableBlob, optFns ...WriterOption) *Writer {
	o := writerOptions{
		blockSize:   DefaultBlockSize,
		compression: CompressionZstd,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	return &Writer{
		w:           w,
		blockSize:   o.blockSize,
		compression: o.compression,
		block:       make([]uint64, 0, o.blockSize),
	}
}

// Append adds the next key. Keys must be strictly ascending; a key at
// or below the previous one returns ErrOutOfOrder.
func (w *Writer) Append(key uint64) error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.count > 0 && key <= w.maxKey {
		return fmt.Errorf("%w: key %d after %d", ErrOutOfOrder, key, w.maxKey)
	}

	if w.count == 0 {
		w.minKey = key
	}
	w.maxKey = key
	w.count++

	w.block = append(w.block, key)
	if len(w.block) >= w.blockSize {
		return w.flushBlock()
	}
	return nil
}

// Count returns the number of keys appended so far.
func (w *Writer) Count() uint64 {
	return w.count
}

// Close flushes the last block, writes the index and footer, syncs and
// publishes the blob. On error the blob is not published.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	if err := w.flushBlock(); err != nil {
		return err
	}

	indexBytes := encodeIndex(w.index)
	if _, err := w.w.Write(indexBytes); err != nil {
		return err
	}

	f := footer{
		compression: w.compression,
		blockSize:   uint32(w.blockSize),
		keyCount:    w.count,
		blockCount:  uint32(len(w.index)),
		indexCRC:    hash.CRC32C(indexBytes),
		minKey:      w.minKey,
		maxKey:      w.maxKey,
		indexOffset: w.offset,
	}
	if _, err := w.w.Write(f.encode()); err != nil {
		return err
	}

	if err := w.w.Sync(); err != nil {
		return err
	}
	return w.w.Close()
}

// flushBlock delta-encodes the pending keys, compresses them if that
// pays off, and appends the stored block plus its index entry.
func (w *Writer) flushBlock() error {
	if len(w.block) == 0 {
		return nil
	}

	w.payload = w.payload[:0]
	var prev uint64
	for i, k := range w.block {
		if i == 0 {
			w.payload = binary.AppendUvarint(w.payload, k)
		} else {
			w.payload = binary.AppendUvarint(w.payload, k-prev)
		}
		prev = k
	}

	stored := w.payload
	if out, ok := w.compress(w.payload); ok {
		stored = out
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(w.payload)))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(stored)))

	h := hash.NewCRC32C()
	h.Write(hdr[:])
	h.Write(stored)

	if _, err := w.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(stored); err != nil {
		return err
	}

	length := uint32(blockHeaderSize + len(stored))
	w.index = append(w.index, indexEntry{
		firstKey: w.block[0],
		offset:   w.offset,
		length:   length,
		crc:      h.Sum32(),
	})
	w.offset += uint64(length)
	w.block = w.block[:0]
	return nil
}

// compress returns the compressed payload and true when compression is
// enabled and actually shrinks the block; otherwise the block is stored
// raw. Readers tell the two apart by comparing stored and raw lengths.
func (w *Writer) compress(raw []byte) ([]byte, bool) {
	switch w.compression {
	case CompressionZstd:
		w.compBuf = zstdEncoder.EncodeAll(raw, w.compBuf[:0])
		if len(w.compBuf) >= len(raw) {
			return nil, false
		}
		return w.compBuf, true

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(raw))
		if cap(w.compBuf) < bound {
			w.compBuf = make([]byte, bound)
		}
		n, err := w.lz4c.CompressBlock(raw, w.compBuf[:bound])
		if err != nil || n == 0 || n >= len(raw) {
			return nil, false
		}
		return w.compBuf[:n], true

	default:
		return nil, false
	}
}

// Write creates the blob name in store and writes keys as one segment.
// It is the one-call path for materializing an in-memory run.
func Write(ctx context.Context, store blobstore.BlobStore, name string, keys []uint64, optFns ...WriterOption) error {
	wb, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	w := NewWriter(wb, optFns...)
	for _, k := range keys {
		if err := w.Append(k); err != nil {
			return err
		}
	}
	return w.Close()
}
