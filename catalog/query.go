package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/leapjoin"
	"github.com/hupe1980/leapjoin/cursor"
	"github.com/hupe1980/leapjoin/segment"
)

// Intersection is a join over every run of one runset, together with
// the segment readers backing it. It satisfies cursor.Cursor[uint64]
// through the embedded join; Close releases the readers.
type Intersection struct {
	*leapjoin.Join[uint64]

	cursors []*segment.Cursor
	readers []*segment.Reader
}

// OpenJoin opens every run of the named runset as a segment cursor and
// builds the join over them. A runset with zero runs yields an
// immediately exhausted intersection, matching the core's 0-way join
// semantics.
//
// The caller owns the returned Intersection and must Close it.
func (s *Store) OpenJoin(ctx context.Context, c *Catalog, runset string, optFns ...leapjoin.Option) (*Intersection, error) {
	rs, err := c.Runset(runset)
	if err != nil {
		return nil, err
	}

	x := &Intersection{}
	ok := false
	defer func() {
		if !ok {
			x.Close()
		}
	}()

	curs := make([]cursor.Cursor[uint64], 0, len(rs.Runs))
	for _, run := range rs.Runs {
		blob, err := s.bs.Open(ctx, run.Path)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.Path, err)
		}

		r, err := segment.Open(ctx, blob)
		if err != nil {
			blob.Close()
			return nil, fmt.Errorf("run %s: %w", run.Path, err)
		}
		x.readers = append(x.readers, r)

		sc, err := r.NewCursor(ctx)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.Path, err)
		}
		x.cursors = append(x.cursors, sc)
		curs = append(curs, sc)
	}

	j, err := leapjoin.New(curs, optFns...)
	if err != nil {
		return nil, err
	}
	x.Join = j

	s.logger.WithRunset(runset).Debug("runset join opened",
		"runs", len(rs.Runs),
		"exhausted", !j.Valid(),
	)

	ok = true
	return x, nil
}

// Err returns the first read error any of the runs hit, or nil. A
// failed cursor looks exhausted to the join, so callers that must tell
// IO failure from a completed intersection check Err after draining.
func (x *Intersection) Err() error {
	for _, c := range x.cursors {
		if err := c.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all segment readers. The join must not be used after
// Close.
func (x *Intersection) Close() error {
	var errs []error
	for _, r := range x.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	x.readers = nil
	return errors.Join(errs...)
}
