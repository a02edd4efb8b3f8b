package cache

import "context"

// Key identifies one cached block of a named blob.
type Key struct {
	// Path is the blob name within its store.
	Path string
	// Block is the block index within the blob.
	Block uint64
}

// BlockCache is a byte-oriented cache for immutable blocks. Returned
// slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok is false on a miss.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a block. Implementations may copy or retain b; the
	// caller must treat it as immutable afterwards.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Close releases resources such as background workers.
	Close() error
	// Stats returns cumulative hit and miss counts.
	Stats() (hits, misses int64)
}
