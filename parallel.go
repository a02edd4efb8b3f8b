package leapjoin

import (
	"cmp"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/leapjoin/cursor"
)

// JoinShards runs one independent join per shard and returns the
// per-shard intersections in shard order. Each shard is a complete set of
// cursors covering one slice of the keyspace; when the shards partition
// the keyspace in ascending ranges, concatenating the results yields the
// full intersection in order.
//
// Shards never share cursors: correctness of a single join depends on
// strictly sequential ring traversal, so parallelism only ever happens
// between joins, not inside one. limit bounds the number of concurrently
// running shard joins; 0 means no bound.
//
// The first shard failure cancels the group and is returned as a
// *ShardError. Cancellation is checked between shards, not inside a
// running alignment loop.
func JoinShards[K cmp.Ordered](ctx context.Context, shards [][]cursor.Cursor[K], limit int, optFns ...Option) ([][]K, error) {
	if limit < 0 {
		return nil, ErrInvalidShardLimit
	}
	o := applyOptions(optFns)

	results := make([][]K, len(shards))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, curs := range shards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return &ShardError{Shard: i, cause: err}
			}

			j, err := New(curs, optFns...)
			if err != nil {
				o.logger.LogShardJoin(ctx, i, 0, err)
				return &ShardError{Shard: i, cause: err}
			}

			results[i] = j.Collect()
			o.logger.LogShardJoin(ctx, i, len(results[i]), nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
