// Package leapjoin computes the intersection of k sorted key sequences
// with the leapfrog join: a worst-case-optimal multiway merge that seeks
// lagging cursors forward instead of comparing sequences pairwise. It is
// the intersection primitive underlying sorted-index query engines.
//
// # Quick Start
//
// In-memory sequences:
//
//	j := leapjoin.FromSlices([][]int{
//	    {0, 1, 3, 4, 5, 6, 7, 8, 9, 11},
//	    {0, 2, 6, 7, 8, 9, 11},
//	})
//	for k := range j.All() {
//	    fmt.Println(k) // 0 6 7 8 9 11
//	}
//
// Heterogeneous inputs — anything satisfying cursor.Cursor joins,
// including other joins:
//
//	j, _ := leapjoin.New([]cursor.Cursor[uint32]{
//	    bitmap.New(rb),            // roaring bitmap
//	    cursor.NewSlice(recent),   // in-memory slice
//	})
//
// On-disk runs via the segment and catalog packages:
//
//	store := catalog.NewStore(blobstore.NewLocalStore("./data"))
//	cat, _ := store.Load(ctx)
//	ix, _ := store.OpenJoin(ctx, cat, "users")
//	defer ix.Close()
//	keys := ix.Collect()
//
// # Iteration Model
//
// A join is itself a cursor: Key returns the aligned key, Next advances
// to the next aligned key, Seek skips ahead in the intersection, Valid
// reports exhaustion. Exhaustion is terminal. Misusing an exhausted join
// (Key/Next/Seek) is a programmer error and panics, like misusing any
// cursor in this module; construction problems are ordinary errors.
//
// # Parallelism
//
// A single join is strictly sequential by design. For large keyspaces,
// partition the inputs into disjoint key ranges and run one join per
// shard with JoinShards, which fans out over an errgroup with a
// concurrency limit.
//
// # Key Features
//
//   - Worst-case-optimal k-way sorted intersection
//   - Generic over any ordered key type
//   - Pluggable inputs: slices, roaring bitmaps, compressed on-disk runs
//   - Cloud-native run storage (S3/MinIO via blobstore, DynamoDB commits)
//   - Joins compose: a join is a valid input to another join
package leapjoin
