// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "runs/")
//
//	blob, err := store.Open(ctx, "orders/RUN-000001.lfj")
//
// Blocks are fetched with ranged GETs, so a join over remote runs
// downloads only the blocks its cursors visit. Wrap the store with
// blobstore.NewCachingStore to keep hot blocks on local disk.
//
// Catalog publishing with multiple writers needs compare-and-swap on
// the CURRENT pointer, which plain S3 lacks. NewDDBCommitStore layers
// DynamoDB conditional writes on top:
//
//	commit := s3.NewDDBCommitStore(store, ddbClient, "leapjoin-commits", "s3://my-bucket/runs/")
//
// # Features
//
//   - Range reads for efficient partial block fetches
//   - Multipart uploads for large run segments
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - DynamoDB-backed commit store for atomic CURRENT updates
//   - S3 Express One Zone store for latency-sensitive lookups
package s3
