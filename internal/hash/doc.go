// Package hash provides the checksum used for on-disk data integrity.
//
// All segment and catalog checksums use CRC32-Castagnoli (CRC32C):
// hardware accelerated on x86 (SSE4.2) and ARM (CRC extension), and the
// same polynomial RocksDB, LevelDB and iSCSI settled on.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
