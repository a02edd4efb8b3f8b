package leapjoin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leapjoin/cursor"
	"github.com/hupe1980/leapjoin/testutil"
)

var (
	tab1 = []int{0, 1, 3, 4, 5, 6, 7, 8, 9, 11}
	tab2 = []int{0, 2, 6, 7, 8, 9, 11}
	tab3 = []int{2, 4, 5, 8, 10}
)

func TestJoin_TwoWay(t *testing.T) {
	j := FromSlices([][]int{tab1, tab2})

	assert.Equal(t, []int{0, 6, 7, 8, 9, 11}, j.Collect())
	assert.False(t, j.Valid())
}

func TestJoin_ThreeWay(t *testing.T) {
	j := FromSlices([][]int{tab1, tab2, tab3})

	require.True(t, j.Valid())
	assert.Equal(t, 8, j.Key())

	assert.False(t, j.Next())
	assert.False(t, j.Valid())
}

func TestJoin_SingleInputIsPassthrough(t *testing.T) {
	j := FromSlices([][]int{tab1})

	assert.Equal(t, tab1, j.Collect())
}

func TestJoin_ZeroInputsIsExhausted(t *testing.T) {
	j := FromSlices[int](nil)

	assert.False(t, j.Valid())
	assert.Nil(t, j.Collect())
}

func TestJoin_EmptyInputIsExhausted(t *testing.T) {
	t.Run("single empty", func(t *testing.T) {
		j := FromSlices([][]int{nil})
		assert.False(t, j.Valid())
	})

	t.Run("empty among nonempty", func(t *testing.T) {
		j := FromSlices([][]int{tab1, nil, tab2})
		assert.False(t, j.Valid())
	})

	t.Run("empty cursor among nonempty", func(t *testing.T) {
		j, err := New([]cursor.Cursor[int]{
			cursor.NewSlice(tab1),
			cursor.Empty[int](),
		})
		require.NoError(t, err)
		assert.False(t, j.Valid())
	})
}

func TestJoin_NilCursor(t *testing.T) {
	_, err := New([]cursor.Cursor[int]{cursor.NewSlice(tab1), nil})

	assert.ErrorIs(t, err, ErrNilCursor)
}

func TestJoin_DisjointInputs(t *testing.T) {
	j := FromSlices([][]int{{1, 3, 5}, {2, 4, 6}})

	assert.False(t, j.Valid())
}

func TestJoin_Seek(t *testing.T) {
	t.Run("skips ahead in the intersection", func(t *testing.T) {
		j := FromSlices([][]int{tab1, tab2})
		require.Equal(t, 0, j.Key())

		require.True(t, j.Seek(7))
		assert.Equal(t, 7, j.Key())

		// Seeking to the current key is a no-op.
		require.True(t, j.Seek(7))
		assert.Equal(t, 7, j.Key())

		// Target between intersection keys lands on the next one.
		require.True(t, j.Seek(10))
		assert.Equal(t, 11, j.Key())

		assert.False(t, j.Seek(12))
		assert.False(t, j.Valid())
	})

	t.Run("equivalent to repeated next", func(t *testing.T) {
		rng := testutil.NewRNG(1)
		base := rng.SortedUnique(4000, 6)
		seqs := [][]uint64{rng.Subset(base, 0.6), rng.Subset(base, 0.6), rng.Subset(base, 0.6)}

		for _, target := range []uint64{0, 100, 1000, 5000, base[len(base)-1] + 1} {
			seeked := FromSlices(seqs)
			stepped := FromSlices(seqs)

			var sok bool
			if seeked.Valid() && seeked.Key() <= target {
				sok = seeked.Seek(target)
			} else {
				sok = seeked.Valid()
			}

			nok := stepped.Valid()
			for nok && stepped.Key() < target {
				nok = stepped.Next()
			}

			require.Equal(t, nok, sok, "target %d", target)
			if sok {
				require.Equal(t, stepped.Key(), seeked.Key(), "target %d", target)
			}
		}
	})
}

func TestJoin_MatchesReferenceIntersection(t *testing.T) {
	rng := testutil.NewRNG(1337)

	t.Run("uniform", func(t *testing.T) {
		base := rng.SortedUnique(10_000, 4)
		seqs := [][]uint64{
			rng.Subset(base, 0.5),
			rng.Subset(base, 0.5),
			rng.Subset(base, 0.5),
			rng.Subset(base, 0.5),
		}

		got := FromSlices(seqs).Collect()
		want := testutil.Intersect(seqs...)
		assert.Equal(t, want, got)
	})

	t.Run("zipf", func(t *testing.T) {
		s1 := rng.SortedUniqueZipf(5000, 1.1)
		s2 := rng.SortedUniqueZipf(5000, 1.3)
		s3 := rng.SortedUnique(5000, 3)

		got := FromSlices([][]uint64{s1, s2, s3}).Collect()
		want := testutil.Intersect(s1, s2, s3)
		assert.Equal(t, want, got)
	})
}

func TestJoin_OutputStrictlyAscending(t *testing.T) {
	rng := testutil.NewRNG(99)
	base := rng.SortedUnique(8000, 3)
	seqs := [][]uint64{rng.Subset(base, 0.7), rng.Subset(base, 0.7)}

	j := FromSlices(seqs)

	prev := uint64(0)
	first := true
	for k := range j.All() {
		if !first {
			require.Greater(t, k, prev)
		}
		prev = k
		first = false
	}
	assert.False(t, j.Valid())
}

func TestJoin_KeyStableBetweenAdvances(t *testing.T) {
	j := FromSlices([][]int{tab1, tab2})

	for j.Valid() {
		k := j.Key()
		assert.Equal(t, k, j.Key())
		assert.Equal(t, k, j.Key())
		if !j.Next() {
			break
		}
	}
}

func TestJoin_Composes(t *testing.T) {
	inner := FromSlices([][]int{tab1, tab2}) // [0 6 7 8 9 11]

	outer, err := New([]cursor.Cursor[int]{
		inner,
		cursor.NewSlice([]int{6, 8, 10, 11}),
	})
	require.NoError(t, err)

	assert.Equal(t, []int{6, 8, 11}, outer.Collect())
}

func TestJoin_ContractViolations(t *testing.T) {
	t.Run("exhausted join", func(t *testing.T) {
		j := FromSlices([][]int{{1}, {2}})
		require.False(t, j.Valid())

		assert.Panics(t, func() { j.Key() })
		assert.Panics(t, func() { j.Next() })
		assert.Panics(t, func() { j.Seek(3) })
	})

	t.Run("backward seek", func(t *testing.T) {
		j := FromSlices([][]int{tab1, tab2})
		require.True(t, j.Seek(8))

		assert.Panics(t, func() { j.Seek(5) })
	})
}

func TestJoin_Stats(t *testing.T) {
	j := FromSlices([][]int{tab1, tab2, tab3})
	got := j.Collect()

	stats := j.Stats()
	assert.Equal(t, 3, stats.K)
	assert.Equal(t, int64(len(got)), stats.Aligned)
	assert.Positive(t, stats.Seeks)
	assert.Positive(t, stats.Rounds)
}

func TestJoin_Metrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	j := FromSlices([][]int{tab1, tab2}, WithMetricsCollector(metrics))
	got := j.Collect()

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.InitCount)
	assert.Equal(t, int64(0), stats.InitErrors)
	assert.Equal(t, int64(1), stats.ExhaustCount)
	assert.Equal(t, int64(len(got)), stats.AlignedTotal)

	_, err := New([]cursor.Cursor[int]{nil}, WithMetricsCollector(metrics))
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GetStats().InitErrors)
}
