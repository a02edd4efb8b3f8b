package leapjoin

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/hupe1980/leapjoin/cursor"
)

// Stats are cumulative counters describing the work a join has performed.
type Stats struct {
	K       int   // number of input cursors
	Aligned int64 // alignments achieved, one per key position observed
	Steps   int64 // single-element advances issued to inputs
	Seeks   int64 // seeks issued to inputs
	Rounds  int64 // alignment loop iterations
}

// Join intersects k cursors with the leapfrog algorithm. It implements
// cursor.Cursor[K] itself, so the intersection can be drained with
// Next/Key like any other cursor, and a join can serve as the input of
// another join.
//
// The join owns the ordering of its inputs for its whole lifetime: once
// handed to New, the cursors must not be advanced by anyone else. A Join
// is single-use and not safe for concurrent use; run independent joins on
// independent goroutines instead (see JoinShards).
type Join[K cmp.Ordered] struct {
	cursors []cursor.Cursor[K]
	ring    []int // permutation of cursor indices, ascending by current key
	pos     int   // current ring slot
	stats   Stats

	exhausted bool
	start     time.Time

	logger    *Logger
	collector MetricsCollector
}

var _ cursor.Cursor[int] = (*Join[int])(nil)

// New builds a join over the given cursors and runs the initial alignment
// pass. Inputs may be heterogeneous: anything satisfying cursor.Cursor
// participates, including other joins.
//
// A join over zero inputs, or over inputs of which any is already
// exhausted, is exhausted from the start; neither is an error. A nil
// cursor is: it returns ErrNilCursor.
func New[K cmp.Ordered](cursors []cursor.Cursor[K], optFns ...Option) (*Join[K], error) {
	o := applyOptions(optFns)
	start := time.Now()

	for i, c := range cursors {
		if c == nil {
			err := fmt.Errorf("%w: input %d", ErrNilCursor, i)
			o.metricsCollector.RecordInit(len(cursors), time.Since(start), err)
			o.logger.LogInit(len(cursors), false, err)
			return nil, err
		}
	}

	j := newJoin(cursors, o, start)
	o.metricsCollector.RecordInit(j.stats.K, time.Since(start), nil)
	o.logger.LogInit(j.stats.K, j.exhausted, nil)
	return j, nil
}

// FromSlices builds a join over in-memory ascending key slices. Each
// slice must be strictly ascending and duplicate-free; the slices are
// borrowed, not copied. Empty slices are legal and yield an immediately
// exhausted join.
func FromSlices[K cmp.Ordered](seqs [][]K, optFns ...Option) *Join[K] {
	o := applyOptions(optFns)
	start := time.Now()

	curs := make([]cursor.Cursor[K], len(seqs))
	for i, s := range seqs {
		curs[i] = cursor.NewSlice(s)
	}

	j := newJoin(curs, o, start)
	o.metricsCollector.RecordInit(j.stats.K, time.Since(start), nil)
	o.logger.LogInit(j.stats.K, j.exhausted, nil)
	return j
}

func newJoin[K cmp.Ordered](curs []cursor.Cursor[K], o options, start time.Time) *Join[K] {
	j := &Join[K]{
		cursors:   slices.Clone(curs),
		ring:      make([]int, len(curs)),
		start:     start,
		logger:    o.logger,
		collector: o.metricsCollector,
	}
	j.stats.K = len(j.cursors)

	if len(j.cursors) == 0 {
		j.exhaust()
		return j
	}
	for i, c := range j.cursors {
		j.ring[i] = i
		if !c.Valid() {
			j.exhaust()
			return j
		}
	}

	slices.SortFunc(j.ring, func(a, b int) int {
		return cmp.Compare(j.cursors[a].Key(), j.cursors[b].Key())
	})
	j.search()
	return j
}

// search runs the alignment loop. The ring slot before pos holds the
// largest current key; the cursor at pos seeks up to it, the position
// rotates, and the loop repeats until all k cursors agree on one key or
// an input runs out. Seeks only move forward, so each full lap either
// converges or strictly raises the running maximum; the maximum is
// bounded by the largest key of any input, which guarantees termination.
func (j *Join[K]) search() {
	maxKey := j.cursors[j.ring[j.prevPos()]].Key()
	for {
		j.stats.Rounds++
		cur := j.cursors[j.ring[j.pos]]
		if cur.Key() == maxKey {
			j.stats.Aligned++
			return
		}
		j.stats.Seeks++
		if !cur.Seek(maxKey) {
			j.exhaust()
			return
		}
		maxKey = cur.Key()
		j.pos = j.nextPos()
	}
}

func (j *Join[K]) prevPos() int {
	return (j.pos + len(j.ring) - 1) % len(j.ring)
}

func (j *Join[K]) nextPos() int {
	return (j.pos + 1) % len(j.ring)
}

// Key returns the key all inputs are currently aligned on.
// It panics if the join is exhausted.
func (j *Join[K]) Key() K {
	if j.exhausted {
		panic("leapjoin: Key on exhausted join")
	}
	return j.cursors[j.ring[j.pos]].Key()
}

// Valid reports whether the join is positioned on an aligned key.
func (j *Join[K]) Valid() bool {
	return !j.exhausted
}

// Next advances past the current aligned key and realigns, reporting
// whether another aligned key exists. It panics if the join is exhausted.
func (j *Join[K]) Next() bool {
	if j.exhausted {
		panic("leapjoin: Next on exhausted join")
	}
	j.stats.Steps++
	if !j.cursors[j.ring[j.pos]].Next() {
		j.exhaust()
		return false
	}
	j.pos = j.nextPos()
	j.search()
	return !j.exhausted
}

// Seek advances the intersection to the first aligned key >= target and
// reports whether one exists. Like cursor seeks it is monotonic: target
// must be >= Key(). It panics if the join is exhausted.
func (j *Join[K]) Seek(target K) bool {
	if j.exhausted {
		panic("leapjoin: Seek on exhausted join")
	}
	if target < j.cursors[j.ring[j.pos]].Key() {
		panic("leapjoin: Seek moved backward")
	}
	j.stats.Seeks++
	if !j.cursors[j.ring[j.pos]].Seek(target) {
		j.exhaust()
		return false
	}
	j.pos = j.nextPos()
	j.search()
	return !j.exhausted
}

// All returns a single-use iterator over the remaining intersection.
func (j *Join[K]) All() iter.Seq[K] {
	return cursor.All[K](j)
}

// Collect drains the join and returns the remaining intersection.
// A nil result means the join was already exhausted.
func (j *Join[K]) Collect() []K {
	return cursor.Collect[K](j)
}

// Stats returns a snapshot of the join's counters.
func (j *Join[K]) Stats() Stats {
	return j.stats
}

func (j *Join[K]) exhaust() {
	if j.exhausted {
		return
	}
	j.exhausted = true

	elapsed := time.Since(j.start)
	j.collector.RecordExhaust(j.stats.K, j.stats.Aligned, elapsed)
	j.logger.LogExhaust(j.stats.K, j.stats.Aligned, elapsed)
}
