package leapjoin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leapjoin/cursor"
	"github.com/hupe1980/leapjoin/testutil"
)

func TestJoinShards(t *testing.T) {
	rng := testutil.NewRNG(7)
	base := rng.SortedUnique(6000, 4)
	a := rng.Subset(base, 0.6)
	b := rng.Subset(base, 0.6)
	want := testutil.Intersect(a, b)

	const numShards = 4
	parts := testutil.Partition([][]uint64{a, b}, numShards)

	for _, limit := range []int{0, 1, 2} {
		// Cursors are single-use, so each run gets fresh shards.
		shards := make([][]cursor.Cursor[uint64], numShards)
		for i, part := range parts {
			shards[i] = []cursor.Cursor[uint64]{
				cursor.NewSlice(part[0]),
				cursor.NewSlice(part[1]),
			}
		}

		results, err := JoinShards(context.Background(), shards, limit)
		require.NoError(t, err)
		require.Len(t, results, numShards)

		// Range-partitioned shards concatenate back to the full result.
		var got []uint64
		for _, r := range results {
			got = append(got, r...)
		}
		assert.Equal(t, want, got, "limit %d", limit)
	}
}

func TestJoinShards_NoShards(t *testing.T) {
	results, err := JoinShards[uint64](context.Background(), nil, 0)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestJoinShards_InvalidLimit(t *testing.T) {
	_, err := JoinShards[uint64](context.Background(), nil, -1)

	assert.ErrorIs(t, err, ErrInvalidShardLimit)
}

func TestJoinShards_ShardFailure(t *testing.T) {
	shards := [][]cursor.Cursor[int]{
		{cursor.NewSlice([]int{1, 2, 3})},
		{cursor.NewSlice([]int{1, 2}), nil},
	}

	_, err := JoinShards(context.Background(), shards, 1)
	require.Error(t, err)

	var shardErr *ShardError
	require.ErrorAs(t, err, &shardErr)
	assert.Equal(t, 1, shardErr.Shard)
	assert.ErrorIs(t, err, ErrNilCursor)
}

func TestJoinShards_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shards := [][]cursor.Cursor[int]{
		{cursor.NewSlice([]int{1, 2, 3})},
	}

	_, err := JoinShards(ctx, shards, 0)
	require.Error(t, err)

	var shardErr *ShardError
	require.ErrorAs(t, err, &shardErr)
	assert.ErrorIs(t, err, context.Canceled)
}
