// Package testutil provides testing utilities for leapjoin.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating sorted key sequences and computing
// ground-truth intersections to verify join results against.
//
// # Key Generation
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.SortedUnique(10_000, 8)       // gaps uniform in [1, 8]
//	skew := rng.SortedUniqueZipf(10_000, 1.2) // Zipf-distributed gaps
//	sub := rng.Subset(keys, 0.5)              // random ordered subset
//
// # Ground Truth
//
//	want := testutil.Intersect(s1, s2, s3)
package testutil
