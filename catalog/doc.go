// Package catalog versions named families of runs ("runsets") in a
// blob store.
//
// A catalog is a JSON document listing, per runset, the immutable
// segment runs that make it up. Every Save writes a new numbered
// CATALOG blob and then flips the CURRENT pointer; published state is
// never mutated, so readers either see the old catalog or the new one,
// complete. On backends with a conditional CURRENT update, such as the
// S3+DynamoDB commit store, concurrent publishers are detected and can
// reload and retry.
//
// OpenJoin connects catalogs to the join side: it opens every run of a
// runset as a segment cursor and returns their intersection. Compact
// folds an accumulated runset back into a single run with a k-way
// merge.
package catalog
