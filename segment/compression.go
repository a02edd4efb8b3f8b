package segment

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the per-block compression of a segment.
type CompressionType uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone CompressionType = 0
	// CompressionLZ4 trades ratio for very cheap decompression.
	CompressionLZ4 CompressionType = 1
	// CompressionZstd is the default; delta-encoded key blocks compress
	// well and decompression stays off the join's critical path until a
	// block is first touched.
	CompressionZstd CompressionType = 2
)

func (c CompressionType) valid() bool {
	return c <= CompressionZstd
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Shared zstd coders; EncodeAll and DecodeAll are safe for concurrent
// use. Encoder concurrency is 1 since blocks are small and writers
// already parallelize across segments.
var (
	zstdEncoder = mustZstdEncoder()
	zstdDecoder = mustZstdDecoder()
)

func mustZstdEncoder() *zstd.Encoder {
	e, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic(err)
	}
	return e
}

func mustZstdDecoder() *zstd.Decoder {
	d, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	return d
}

// decompressBlock expands a stored block payload to rawLen bytes,
// reusing scratch when it has capacity. A payload that fails to expand
// to exactly rawLen is corrupted.
func decompressBlock(c CompressionType, stored []byte, rawLen int, scratch []byte) ([]byte, error) {
	switch c {
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(stored, scratch[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupted, err)
		}
		if len(out) != rawLen {
			return nil, fmt.Errorf("%w: block expands to %d bytes, want %d", ErrCorrupted, len(out), rawLen)
		}
		return out, nil

	case CompressionLZ4:
		if cap(scratch) < rawLen {
			scratch = make([]byte, rawLen)
		}
		n, err := lz4.UncompressBlock(stored, scratch[:rawLen])
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupted, err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: block expands to %d bytes, want %d", ErrCorrupted, n, rawLen)
		}
		return scratch[:n], nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupted, uint8(c))
	}
}
