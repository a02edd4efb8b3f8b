package blobstore

import (
	"context"
	"io"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limits configures read throttling for a ThrottledStore. Zero values
// mean unlimited.
type Limits struct {
	// ReadBytesPerSec caps sustained read throughput across all blobs
	// opened through the store.
	ReadBytesPerSec int64
	// MaxConcurrentReads caps in-flight reads. Ranged readers count as
	// one read from ReadRange until Close.
	MaxConcurrentReads int64
}

// ThrottledStore wraps a BlobStore and throttles reads, to keep
// background work such as cache warming or bulk verification from
// starving foreground joins of backend throughput.
//
// Writes, deletes and listings pass through unthrottled. Blobs opened
// through a ThrottledStore never expose the Mappable fast path: a
// zero-copy mapping would bypass the limiter entirely.
type ThrottledStore struct {
	inner   BlobStore
	limiter *rate.Limiter       // nil when unlimited
	sem     *semaphore.Weighted // nil when unlimited
}

var _ BlobStore = (*ThrottledStore)(nil)

// NewThrottledStore creates a ThrottledStore over inner with the given
// limits.
func NewThrottledStore(inner BlobStore, limits Limits) *ThrottledStore {
	s := &ThrottledStore{inner: inner}
	if limits.ReadBytesPerSec > 0 {
		// Burst of one second's allowance; larger reads wait in chunks.
		s.limiter = rate.NewLimiter(rate.Limit(limits.ReadBytesPerSec), int(limits.ReadBytesPerSec))
	}
	if limits.MaxConcurrentReads > 0 {
		s.sem = semaphore.NewWeighted(limits.MaxConcurrentReads)
	}
	return s
}

// Open opens a blob whose reads are throttled.
func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{inner: b, store: s}, nil
}

// Create passes through to the inner store.
func (s *ThrottledStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put passes through to the inner store.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	return s.inner.Put(ctx, name, data)
}

// Delete passes through to the inner store.
func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// acquireRead blocks until a read slot is available.
func (s *ThrottledStore) acquireRead(ctx context.Context) error {
	if s.sem == nil {
		return nil
	}
	return s.sem.Acquire(ctx, 1)
}

func (s *ThrottledStore) releaseRead() {
	if s.sem != nil {
		s.sem.Release(1)
	}
}

// waitBytes blocks until n bytes of read allowance are available,
// waiting in burst-sized chunks for requests above the burst.
func (s *ThrottledStore) waitBytes(ctx context.Context, n int) error {
	if s.limiter == nil {
		return nil
	}
	burst := s.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

type throttledBlob struct {
	inner Blob
	store *ThrottledStore
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := b.store.acquireRead(ctx); err != nil {
		return 0, err
	}
	defer b.store.releaseRead()

	if err := b.store.waitBytes(ctx, len(p)); err != nil {
		return 0, err
	}
	return b.inner.ReadAt(ctx, p, off)
}

func (b *throttledBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := b.store.acquireRead(ctx); err != nil {
		return nil, err
	}

	rc, err := b.inner.ReadRange(ctx, off, length)
	if err != nil {
		b.store.releaseRead()
		return nil, err
	}
	return &throttledRangeReader{inner: rc, ctx: ctx, store: b.store}, nil
}

func (b *throttledBlob) Size() int64 {
	return b.inner.Size()
}

func (b *throttledBlob) Close() error {
	return b.inner.Close()
}

// throttledRangeReader holds its read slot until Close and meters the
// streamed bytes.
type throttledRangeReader struct {
	inner  io.ReadCloser
	ctx    context.Context
	store  *ThrottledStore
	closed bool
}

func (r *throttledRangeReader) Read(p []byte) (int, error) {
	if err := r.store.waitBytes(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.inner.Read(p)
}

func (r *throttledRangeReader) Close() error {
	if !r.closed {
		r.closed = true
		r.store.releaseRead()
	}
	return r.inner.Close()
}
