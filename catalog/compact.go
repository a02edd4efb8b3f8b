package catalog

import (
	"context"
	"fmt"

	"github.com/hupe1980/leapjoin/cursor"
	"github.com/hupe1980/leapjoin/segment"
)

// Compact merges every run of the named runset into one new run at dst
// and rewrites the runset in c to reference only that run. Keys present
// in several runs are written once. The catalog is modified in place;
// publishing the rewrite and deleting the old run blobs stay with the
// caller, so readers of the previous catalog version are never broken
// mid-join.
func (s *Store) Compact(ctx context.Context, c *Catalog, runset, dst string, optFns ...segment.WriterOption) (Run, error) {
	rs, err := c.Runset(runset)
	if err != nil {
		return Run{}, err
	}

	readers := make([]*segment.Reader, 0, len(rs.Runs))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	segCurs := make([]*segment.Cursor, 0, len(rs.Runs))
	curs := make([]cursor.Cursor[uint64], 0, len(rs.Runs))
	for _, run := range rs.Runs {
		blob, err := s.bs.Open(ctx, run.Path)
		if err != nil {
			return Run{}, fmt.Errorf("run %s: %w", run.Path, err)
		}

		r, err := segment.Open(ctx, blob)
		if err != nil {
			blob.Close()
			return Run{}, fmt.Errorf("run %s: %w", run.Path, err)
		}
		readers = append(readers, r)

		sc, err := r.NewCursor(ctx)
		if err != nil {
			return Run{}, fmt.Errorf("run %s: %w", run.Path, err)
		}
		segCurs = append(segCurs, sc)
		curs = append(curs, sc)
	}

	wb, err := s.bs.Create(ctx, dst)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", dst, err)
	}

	w := segment.NewWriter(wb, optFns...)
	m := cursor.NewMerge(curs)
	for m.Valid() {
		if err := w.Append(m.Key()); err != nil {
			return Run{}, fmt.Errorf("run %s: %w", dst, err)
		}
		if !m.Next() {
			break
		}
	}

	// A failed source cursor looks exhausted to the merge; surface it
	// before the new run is published.
	for i, sc := range segCurs {
		if err := sc.Err(); err != nil {
			return Run{}, fmt.Errorf("run %s: %w", rs.Runs[i].Path, err)
		}
	}

	if err := w.Close(); err != nil {
		return Run{}, fmt.Errorf("run %s: %w", dst, err)
	}

	run, err := s.ScanRun(ctx, dst)
	if err != nil {
		return Run{}, err
	}
	c.Runsets[runset] = Runset{Runs: []Run{run}}

	s.logger.WithRunset(runset).Debug("runset compacted",
		"runs", len(rs.Runs),
		"dst", dst,
		"keys", run.Count,
	)
	return run, nil
}
