package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUBlockCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(1024)

	key := Key{Path: "seg-1", Block: 0}
	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, []byte("block data"))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("block data"), got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUBlockCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(30)

	c.Set(ctx, Key{Path: "a"}, make([]byte, 10))
	c.Set(ctx, Key{Path: "b"}, make([]byte, 10))
	c.Set(ctx, Key{Path: "c"}, make([]byte, 10))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get(ctx, Key{Path: "a"})
	require.True(t, ok)

	c.Set(ctx, Key{Path: "d"}, make([]byte, 10))

	_, ok = c.Get(ctx, Key{Path: "b"})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{Path: "a"})
	assert.True(t, ok)
	assert.Equal(t, int64(30), c.Size())
}

func TestLRUBlockCache_OversizedBlockNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(8)

	c.Set(ctx, Key{Path: "big"}, make([]byte, 16))

	_, ok := c.Get(ctx, Key{Path: "big"})
	assert.False(t, ok)
	assert.Equal(t, int64(0), c.Size())
}

func TestLRUBlockCache_UpdateExisting(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(1024)

	key := Key{Path: "seg-1", Block: 3}
	c.Set(ctx, key, []byte("old"))
	c.Set(ctx, key, []byte("newer value"))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("newer value"), got)
	assert.Equal(t, int64(len("newer value")), c.Size())
}

func TestLRUBlockCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(1024)

	for blk := range uint64(4) {
		c.Set(ctx, Key{Path: "seg-1", Block: blk}, []byte{byte(blk)})
	}
	c.Set(ctx, Key{Path: "seg-2", Block: 0}, []byte{9})

	c.Invalidate(func(key Key) bool { return key.Path == "seg-1" })

	for blk := range uint64(4) {
		_, ok := c.Get(ctx, Key{Path: "seg-1", Block: blk})
		assert.False(t, ok)
	}
	_, ok := c.Get(ctx, Key{Path: "seg-2", Block: 0})
	assert.True(t, ok)
}

func TestShardedLRUBlockCache(t *testing.T) {
	ctx := context.Background()
	c := NewShardedLRUBlockCache(1 << 20)
	defer c.Close()

	for blk := range uint64(256) {
		c.Set(ctx, Key{Path: "seg-1", Block: blk}, []byte{byte(blk)})
	}
	for blk := range uint64(256) {
		got, ok := c.Get(ctx, Key{Path: "seg-1", Block: blk})
		require.True(t, ok, "block %d", blk)
		assert.Equal(t, []byte{byte(blk)}, got)
	}

	hits, misses := c.Stats()
	assert.Equal(t, int64(256), hits)
	assert.Equal(t, int64(0), misses)
	assert.Equal(t, int64(256), c.Size())

	c.Invalidate(func(key Key) bool { return key.Block%2 == 0 })

	_, ok := c.Get(ctx, Key{Path: "seg-1", Block: 2})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{Path: "seg-1", Block: 3})
	assert.True(t, ok)
}

func TestShardedLRUBlockCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewShardedLRUBlockCache(1 << 20)
	defer c.Close()

	done := make(chan struct{})
	for g := range 8 {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := range 500 {
				key := Key{Path: fmt.Sprintf("seg-%d", g), Block: uint64(i)}
				c.Set(ctx, key, []byte{byte(i)})
				c.Get(ctx, key)
			}
		}(g)
	}
	for range 8 {
		<-done
	}
}
