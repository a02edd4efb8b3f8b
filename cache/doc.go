// Package cache provides block caches for blob reads.
//
// Segment access is block-oriented: a join touches a handful of blocks
// per input, and the same hot blocks recur across queries. The caches
// here sit between blobstore.CachingStore and a (typically remote)
// backend:
//
//   - LRUBlockCache: single in-memory LRU, byte-bounded
//   - ShardedLRUBlockCache: 64-way sharded LRU for concurrent joins
//   - DiskBlockCache: filesystem-backed second tier with background
//     writes, surviving process restarts
//
// All caches implement BlockCache and treat cached slices as immutable.
package cache
