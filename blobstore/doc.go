// Package blobstore provides storage abstraction for immutable blobs:
// segment files and catalog state.
//
// BlobStore is the interface for reading and writing data blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap-backed zero-copy reads
//   - MemoryStore: in-memory store for tests
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//   - minio.Store: any S3-compatible endpoint via the MinIO client
//
// # Wrappers
//
//   - CachingStore: block-level read caching over any store
//   - ThrottledStore: read throughput and concurrency limits
//
// Wrappers compose; a typical remote deployment stacks
// CachingStore(ThrottledStore(s3.Store)).
//
// # Custom Implementations
//
// Implement BlobStore to plug in other backends. For remote backends,
// serve ReadRange as a single ranged request; segment readers use it to
// fetch a run of blocks in one round trip. Blobs that can expose their
// full contents without copying should also implement Mappable, which
// segment readers prefer over ReadAt.
package blobstore
