package segment

import (
	"context"
	"fmt"

	"github.com/hupe1980/leapjoin/blobstore"
	"github.com/hupe1980/leapjoin/internal/hash"
)

// Reader reads a segment blob. When the blob is memory mapped, blocks
// decode straight out of the mapping; otherwise every block load is a
// single ranged read.
//
// A Reader is safe for concurrent use. Decode state lives on cursors,
// so one Reader can serve many cursors at once.
type Reader struct {
	blob           blobstore.Blob
	data           []byte // non-nil on the zero-copy path
	footer         footer
	index          []indexEntry
	verifyChecksum bool
}

type readerOptions struct {
	verifyChecksum bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

// WithVerifyChecksum controls the per-block CRC32C check on block
// loads. It defaults to true. The footer and block index are always
// verified at Open regardless of this setting.
func WithVerifyChecksum(verify bool) ReaderOption {
	return func(o *readerOptions) {
		o.verifyChecksum = verify
	}
}

// Open validates the footer and block index of blob and returns a
// Reader. Only the footer and index are read here; key blocks load
// lazily as cursors touch them.
func Open(ctx context.Context, blob blobstore.Blob, optFns ...ReaderOption) (*Reader, error) {
	opts := readerOptions{verifyChecksum: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	size := blob.Size()
	if size < footerSize {
		return nil, fmt.Errorf("%w: %d bytes is smaller than a footer", ErrCorrupted, size)
	}

	var data []byte
	if m, ok := blob.(blobstore.Mappable); ok {
		b, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		data = b
	}

	r := &Reader{blob: blob, data: data, verifyChecksum: opts.verifyChecksum}

	fbuf, err := r.readAt(ctx, size-footerSize, footerSize)
	if err != nil {
		return nil, err
	}
	f, err := decodeFooter(fbuf)
	if err != nil {
		return nil, err
	}

	indexLen := int64(f.blockCount) * indexEntrySize
	if int64(f.indexOffset)+indexLen+footerSize != size {
		return nil, fmt.Errorf("%w: index at %d with %d blocks does not line up with %d byte blob",
			ErrCorrupted, f.indexOffset, f.blockCount, size)
	}

	ibuf, err := r.readAt(ctx, int64(f.indexOffset), int(indexLen))
	if err != nil {
		return nil, err
	}
	if hash.CRC32C(ibuf) != f.indexCRC {
		return nil, fmt.Errorf("%w: block index", ErrChecksum)
	}
	index, err := decodeIndex(ibuf, f.blockCount)
	if err != nil {
		return nil, err
	}
	if err := validateIndex(index, f.indexOffset); err != nil {
		return nil, err
	}

	r.footer = f
	r.index = index
	return r, nil
}

// Count returns the number of keys in the segment.
func (r *Reader) Count() uint64 {
	return r.footer.keyCount
}

// MinKey returns the smallest key. Meaningful only when Count > 0.
func (r *Reader) MinKey() uint64 {
	return r.footer.minKey
}

// MaxKey returns the largest key. Meaningful only when Count > 0.
func (r *Reader) MaxKey() uint64 {
	return r.footer.maxKey
}

// Compression returns the block compression the segment was written
// with.
func (r *Reader) Compression() CompressionType {
	return r.footer.compression
}

// Close closes the underlying blob. Cursors must not be used after
// their Reader is closed.
func (r *Reader) Close() error {
	return r.blob.Close()
}

// readAt returns length bytes at off, borrowing from the mapping when
// one is available.
func (r *Reader) readAt(ctx context.Context, off int64, length int) ([]byte, error) {
	if r.data != nil {
		if off < 0 || off+int64(length) > int64(len(r.data)) {
			return nil, fmt.Errorf("%w: read [%d,%d) beyond %d mapped bytes",
				ErrCorrupted, off, off+int64(length), len(r.data))
		}
		return r.data[off : off+int64(length)], nil
	}

	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}
	if _, err := r.blob.ReadAt(ctx, buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}
