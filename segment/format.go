package segment

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/leapjoin/internal/hash"
)

// Magic identifies a segment file ("LFJ1" when written little-endian).
const Magic uint32 = 0x314A464C

// FormatVersion is the current on-disk format version.
const FormatVersion uint32 = 1

const (
	footerSize      = 64
	indexEntrySize  = 24
	blockHeaderSize = 8
)

var (
	// ErrInvalidMagic is returned when a blob is not a segment file.
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrInvalidVersion is returned for format versions this build does
	// not understand.
	ErrInvalidVersion = errors.New("unsupported format version")
	// ErrChecksum is returned when stored and computed checksums differ.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrCorrupted is returned when the file structure is inconsistent
	// beyond a plain checksum mismatch.
	ErrCorrupted = errors.New("corrupted segment")
	// ErrOutOfOrder is returned by Writer.Append when keys are not
	// strictly ascending.
	ErrOutOfOrder = errors.New("keys must be strictly ascending")
	// ErrWriterClosed is returned when appending to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// footer is the fixed-size trailer of a segment file. The footer sits at
// the end so segments can be produced by pure streaming writers, which
// matters for backends like S3 multipart uploads that cannot seek.
//
// Layout (little-endian):
//
//	off  size  field
//	  0     4  magic
//	  4     4  format version
//	  8     1  compression (+3 pad)
//	 12     4  block size (max keys per block)
//	 16     8  key count
//	 24     4  block count
//	 28     4  index CRC32C
//	 32     8  min key
//	 40     8  max key
//	 48     8  index offset
//	 56     4  footer CRC32C (over bytes 0..55)
//	 60     4  reserved
type footer struct {
	compression CompressionType
	blockSize   uint32
	keyCount    uint64
	blockCount  uint32
	indexCRC    uint32
	minKey      uint64
	maxKey      uint64
	indexOffset uint64
}

func (f footer) encode() []byte {
	buf := make([]byte, footerSize)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], FormatVersion)
	buf[8] = byte(f.compression)
	binary.LittleEndian.PutUint32(buf[12:16], f.blockSize)
	binary.LittleEndian.PutUint64(buf[16:24], f.keyCount)
	binary.LittleEndian.PutUint32(buf[24:28], f.blockCount)
	binary.LittleEndian.PutUint32(buf[28:32], f.indexCRC)
	binary.LittleEndian.PutUint64(buf[32:40], f.minKey)
	binary.LittleEndian.PutUint64(buf[40:48], f.maxKey)
	binary.LittleEndian.PutUint64(buf[48:56], f.indexOffset)
	binary.LittleEndian.PutUint32(buf[56:60], hash.CRC32C(buf[:56]))
	return buf
}

func decodeFooter(buf []byte) (footer, error) {
	if len(buf) != footerSize {
		return footer{}, fmt.Errorf("%w: footer is %d bytes, want %d", ErrCorrupted, len(buf), footerSize)
	}
	if magic := binary.LittleEndian.Uint32(buf[0:4]); magic != Magic {
		return footer{}, fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(buf[4:8]); version != FormatVersion {
		return footer{}, fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}
	if crc := hash.CRC32C(buf[:56]); crc != binary.LittleEndian.Uint32(buf[56:60]) {
		return footer{}, fmt.Errorf("%w: footer", ErrChecksum)
	}

	f := footer{
		compression: CompressionType(buf[8]),
		blockSize:   binary.LittleEndian.Uint32(buf[12:16]),
		keyCount:    binary.LittleEndian.Uint64(buf[16:24]),
		blockCount:  binary.LittleEndian.Uint32(buf[24:28]),
		indexCRC:    binary.LittleEndian.Uint32(buf[28:32]),
		minKey:      binary.LittleEndian.Uint64(buf[32:40]),
		maxKey:      binary.LittleEndian.Uint64(buf[40:48]),
		indexOffset: binary.LittleEndian.Uint64(buf[48:56]),
	}
	if !f.compression.valid() {
		return footer{}, fmt.Errorf("%w: unknown compression %d", ErrCorrupted, buf[8])
	}
	return f, nil
}

// indexEntry describes one key block. The CRC covers the stored block
// region, header included.
type indexEntry struct {
	firstKey uint64
	offset   uint64
	length   uint32
	crc      uint32
}

func encodeIndex(entries []indexEntry) []byte {
	buf := make([]byte, len(entries)*indexEntrySize)
	for i, e := range entries {
		p := buf[i*indexEntrySize:]
		binary.LittleEndian.PutUint64(p[0:8], e.firstKey)
		binary.LittleEndian.PutUint64(p[8:16], e.offset)
		binary.LittleEndian.PutUint32(p[16:20], e.length)
		binary.LittleEndian.PutUint32(p[20:24], e.crc)
	}
	return buf
}

func decodeIndex(buf []byte, count uint32) ([]indexEntry, error) {
	if len(buf) != int(count)*indexEntrySize {
		return nil, fmt.Errorf("%w: index is %d bytes, want %d", ErrCorrupted, len(buf), int(count)*indexEntrySize)
	}

	entries := make([]indexEntry, count)
	for i := range entries {
		p := buf[i*indexEntrySize:]
		entries[i] = indexEntry{
			firstKey: binary.LittleEndian.Uint64(p[0:8]),
			offset:   binary.LittleEndian.Uint64(p[8:16]),
			length:   binary.LittleEndian.Uint32(p[16:20]),
			crc:      binary.LittleEndian.Uint32(p[20:24]),
		}
	}
	return entries, nil
}

// validateIndex checks structural invariants: blocks are contiguous
// from offset 0 up to the index, and first keys strictly ascend.
func validateIndex(entries []indexEntry, indexOffset uint64) error {
	var next uint64
	for i, e := range entries {
		if e.offset != next {
			return fmt.Errorf("%w: block %d at offset %d, want %d", ErrCorrupted, i, e.offset, next)
		}
		if e.length <= blockHeaderSize {
			return fmt.Errorf("%w: block %d has length %d", ErrCorrupted, i, e.length)
		}
		if i > 0 && e.firstKey <= entries[i-1].firstKey {
			return fmt.Errorf("%w: block %d first key %d not ascending", ErrCorrupted, i, e.firstKey)
		}
		next = e.offset + uint64(e.length)
	}
	if next != indexOffset {
		return fmt.Errorf("%w: blocks end at %d, index starts at %d", ErrCorrupted, next, indexOffset)
	}
	return nil
}
