// Package mmap provides read-only memory-mapped file access.
//
// Memory mapping gives segment readers zero-copy access to key blocks:
// the kernel pages data in on demand and shares clean pages across
// processes, which matters when many concurrent joins touch the same
// large segment files.
//
// # Usage
//
//	m, err := mmap.Open("segment.lfj")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy view of the whole file
//	m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) access hints
//   - Windows: CreateFileMapping/MapViewOfFile; Advise is a no-op
//
// A File is safe for concurrent reads. Close is idempotent, but callers
// must ensure no goroutine still uses a Bytes() slice after Close.
package mmap
