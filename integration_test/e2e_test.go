package integration_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leapjoin/blobstore"
	"github.com/hupe1980/leapjoin/cache"
	"github.com/hupe1980/leapjoin/catalog"
	"github.com/hupe1980/leapjoin/segment"
	"github.com/hupe1980/leapjoin/testutil"
)

func TestE2E_PublishAndJoin(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewLocalStore(t.TempDir())
	store := catalog.NewStore(bs)

	rng := testutil.NewRNG(1)
	universe := rng.SortedUnique(20_000, 48)

	// 1. Publish three overlapping runs under one runset, each with a
	// different block compression
	compressions := []segment.CompressionType{
		segment.CompressionNone,
		segment.CompressionLZ4,
		segment.CompressionZstd,
	}

	c, err := store.Load(ctx)
	require.NoError(t, err)

	var subsets [][]uint64
	for i, comp := range compressions {
		keys := rng.Subset(universe, 0.6)
		subsets = append(subsets, keys)

		path := fmt.Sprintf("runs/events-%06d.lfj", i+1)
		require.NoError(t, segment.Write(ctx, bs, path, keys,
			segment.WithCompression(comp), segment.WithBlockSize(512)))

		run, err := store.ScanRun(ctx, path)
		require.NoError(t, err)
		c.AddRun("events", run)
	}
	require.NoError(t, store.Save(ctx, c))

	// 2. A fresh process: reload and intersect
	reader := catalog.NewStore(bs)
	loaded, err := reader.Load(ctx)
	require.NoError(t, err)

	x, err := reader.OpenJoin(ctx, loaded, "events")
	require.NoError(t, err)

	want := testutil.Intersect(subsets...)
	require.Equal(t, want, x.Collect())
	require.NoError(t, x.Err())
	require.NoError(t, x.Close())

	// 3. Compact the runset and publish the rewrite
	_, err = store.Compact(ctx, c, "events", "runs/events-compacted.lfj")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, c))

	// The old catalog blobs and runs are still in place; a reader
	// holding the previous version keeps working
	x, err = reader.OpenJoin(ctx, loaded, "events")
	require.NoError(t, err)
	require.Equal(t, want, x.Collect())
	require.NoError(t, x.Close())

	// A reader that reloads sees the single compacted run. A one-run
	// join streams that run unchanged, the deduplicated union, which
	// contains every key of the original intersection
	reloaded, err := reader.Load(ctx)
	require.NoError(t, err)
	rs, err := reloaded.Runset("events")
	require.NoError(t, err)
	require.Len(t, rs.Runs, 1)

	x, err = reader.OpenJoin(ctx, reloaded, "events")
	require.NoError(t, err)
	union := x.Collect()
	require.NoError(t, x.Err())
	require.NoError(t, x.Close())
	require.Subset(t, union, want)

	// 4. Two catalog versions exist
	names, err := bs.List(ctx, catalog.CatalogFileName)
	require.NoError(t, err)
	require.Len(t, names, 2)
}

func TestE2E_CachedRangedReads(t *testing.T) {
	ctx := context.Background()
	local := blobstore.NewLocalStore(t.TempDir())

	rng := testutil.NewRNG(2)
	universe := rng.SortedUnique(30_000, 32)

	writer := catalog.NewStore(local)
	c, err := writer.Load(ctx)
	require.NoError(t, err)

	var subsets [][]uint64
	for i := range 4 {
		keys := rng.Subset(universe, 0.5)
		subsets = append(subsets, keys)

		path := fmt.Sprintf("runs/part-%06d.lfj", i+1)
		require.NoError(t, segment.Write(ctx, local, path, keys, segment.WithBlockSize(1024)))

		run, err := writer.ScanRun(ctx, path)
		require.NoError(t, err)
		c.AddRun("parts", run)
	}
	require.NoError(t, writer.Save(ctx, c))

	// Throttling hides the mmap fast path, so every block goes through
	// ranged reads; the cache sits in front of them, as it would on S3.
	remote := blobstore.NewThrottledStore(local, blobstore.Limits{})
	cached := blobstore.NewCachingStore(remote, cache.NewShardedLRUBlockCache(4<<20), 4096)

	store := catalog.NewStore(cached)
	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	want := testutil.Intersect(subsets...)

	// Cold pass and warm pass agree with the in-memory reference
	for range 2 {
		x, err := store.OpenJoin(ctx, loaded, "parts")
		require.NoError(t, err)
		require.Equal(t, want, x.Collect())
		require.NoError(t, x.Err())
		require.NoError(t, x.Close())
	}
}
