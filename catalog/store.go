package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/leapjoin"
	"github.com/hupe1980/leapjoin/blobstore"
	"github.com/hupe1980/leapjoin/codec"
	"github.com/hupe1980/leapjoin/segment"
)

// StoreOption configures a catalog store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	codec  codec.Codec
	logger *leapjoin.Logger
}

// WithCodec sets the encoding of newly written catalogs.
func WithCodec(c codec.Codec) StoreOption {
	return func(o *storeOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets structured logging for catalog operations. Pass nil
// to disable logging.
func WithLogger(logger *leapjoin.Logger) StoreOption {
	return func(o *storeOptions) {
		if logger == nil {
			logger = leapjoin.NoopLogger()
		}
		o.logger = logger
	}
}

// Store reads and writes catalogs in a blob store.
//
// Save publishes the catalog under a new numbered name and then flips
// the CURRENT pointer, so readers always load a complete catalog.
// Single-writer deployments get atomicity from the blob store's
// publish-on-close semantics alone; multi-writer deployments pair the
// store with a backend that makes the CURRENT update conditional, such
// as the S3+DynamoDB commit store, and retry Save after reloading on
// conflict.
type Store struct {
	bs     blobstore.BlobStore
	codec  codec.Codec
	logger *leapjoin.Logger
	mu     sync.Mutex
}

// NewStore creates a catalog store on top of bs.
func NewStore(bs blobstore.BlobStore, optFns ...StoreOption) *Store {
	o := storeOptions{
		codec:  codec.Default,
		logger: leapjoin.NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	return &Store{
		bs:     bs,
		codec:  o.codec,
		logger: o.logger,
	}
}

// Load loads the catalog CURRENT points at. A store that has never been
// saved to yields an empty catalog with ID 0.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readAll(ctx, CurrentFileName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return &Catalog{Version: CurrentVersion}, nil
	}
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(string(current))
	data, err := s.readAll(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", name, err)
	}

	var c Catalog
	if err := s.codec.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", name, err)
	}
	if c.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported catalog version: %d (expected %d)", c.Version, CurrentVersion)
	}

	return &c, nil
}

// Save publishes c as the next catalog version; on return c.ID holds
// the published number. Previously published catalog blobs stay in
// place, so older readers keep working until they reload CURRENT.
func (s *Store) Save(ctx context.Context, c *Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Version = CurrentVersion
	c.ID++

	name := fmt.Sprintf("%s-%06d.json", CatalogFileName, c.ID)
	data, err := s.codec.Marshal(c)
	if err != nil {
		return err
	}

	if err := s.bs.Put(ctx, name, data); err != nil {
		return fmt.Errorf("catalog %s: %w", name, err)
	}
	if err := s.bs.Put(ctx, CurrentFileName, []byte(name)); err != nil {
		return fmt.Errorf("current pointer: %w", err)
	}

	s.logger.Debug("catalog published",
		"id", c.ID,
		"name", name,
		"runsets", len(c.Runsets),
	)
	return nil
}

// ScanRun opens the segment at path and returns its Run entry with the
// stats filled from the segment footer.
func (s *Store) ScanRun(ctx context.Context, path string) (Run, error) {
	blob, err := s.bs.Open(ctx, path)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", path, err)
	}

	r, err := segment.Open(ctx, blob)
	if err != nil {
		blob.Close()
		return Run{}, fmt.Errorf("run %s: %w", path, err)
	}
	defer r.Close()

	return Run{
		Path:   path,
		Count:  r.Count(),
		MinKey: r.MinKey(),
		MaxKey: r.MaxKey(),
	}, nil
}

func (s *Store) readAll(ctx context.Context, name string) ([]byte, error) {
	blob, err := s.bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	return blobstore.ReadAll(ctx, blob)
}
