package cursor

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leapjoin/testutil"
)

func union(seqs ...[]uint64) []uint64 {
	seen := make(map[uint64]struct{})
	for _, s := range seqs {
		for _, k := range s {
			seen[k] = struct{}{}
		}
	}
	out := make([]uint64, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func mergeOf(seqs ...[]uint64) *Merge[uint64] {
	curs := make([]Cursor[uint64], len(seqs))
	for i, s := range seqs {
		curs[i] = NewSlice(s)
	}
	return NewMerge(curs)
}

func TestMerge_Union(t *testing.T) {
	rng := testutil.NewRNG(7)
	universe := rng.SortedUnique(2000, 16)

	seqs := make([][]uint64, 4)
	for i := range seqs {
		seqs[i] = rng.Subset(universe, 0.4)
	}

	got := Collect[uint64](mergeOf(seqs...))
	require.Equal(t, union(seqs...), got)
}

func TestMerge_DuplicatesAcrossInputs(t *testing.T) {
	m := mergeOf(
		[]uint64{1, 3, 5, 7},
		[]uint64{1, 2, 3, 8},
		[]uint64{3, 5, 9},
	)
	require.Equal(t, []uint64{1, 2, 3, 5, 7, 8, 9}, Collect[uint64](m))
}

func TestMerge_Inputs(t *testing.T) {
	t.Run("single input passes through", func(t *testing.T) {
		keys := []uint64{2, 4, 6}
		require.Equal(t, keys, Collect[uint64](mergeOf(keys)))
	})

	t.Run("exhausted inputs are skipped", func(t *testing.T) {
		m := NewMerge([]Cursor[uint64]{
			Empty[uint64](),
			NewSlice([]uint64{1, 2}),
			Empty[uint64](),
		})
		require.Equal(t, []uint64{1, 2}, Collect[uint64](m))
	})

	t.Run("no live inputs", func(t *testing.T) {
		m := NewMerge([]Cursor[uint64]{Empty[uint64]()})
		require.False(t, m.Valid())
	})

	t.Run("no inputs at all", func(t *testing.T) {
		m := NewMerge[uint64](nil)
		require.False(t, m.Valid())
	})
}

func TestMerge_Seek(t *testing.T) {
	rng := testutil.NewRNG(8)
	universe := rng.SortedUnique(1000, 8)
	seqs := [][]uint64{
		rng.Subset(universe, 0.5),
		rng.Subset(universe, 0.5),
		rng.Subset(universe, 0.5),
	}
	all := union(seqs...)

	t.Run("matches linear scan", func(t *testing.T) {
		m := mergeOf(seqs...)
		for m.Valid() {
			target := m.Key() + 1 + uint64(rng.Intn(50))
			ok := m.Seek(target)

			i, _ := slices.BinarySearch(all, target)
			if i == len(all) {
				require.False(t, ok)
				break
			}
			require.True(t, ok)
			require.Equal(t, all[i], m.Key())
		}
	})

	t.Run("equal to current is a no-op", func(t *testing.T) {
		m := mergeOf(seqs...)
		k := m.Key()
		require.True(t, m.Seek(k))
		require.Equal(t, k, m.Key())
	})

	t.Run("past the end exhausts", func(t *testing.T) {
		m := mergeOf(seqs...)
		require.False(t, m.Seek(all[len(all)-1]+1))
		require.False(t, m.Valid())
	})
}

func TestMerge_ContractViolations(t *testing.T) {
	t.Run("exhausted use panics", func(t *testing.T) {
		m := mergeOf([]uint64{1})
		require.False(t, m.Next())

		require.Panics(t, func() { m.Key() })
		require.Panics(t, func() { m.Next() })
		require.Panics(t, func() { m.Seek(2) })
	})

	t.Run("backward seek panics", func(t *testing.T) {
		m := mergeOf([]uint64{1, 5, 9})
		require.True(t, m.Seek(5))
		require.Panics(t, func() { m.Seek(4) })
	})
}

func TestMerge_Composes(t *testing.T) {
	inner := mergeOf([]uint64{1, 4}, []uint64{2, 4})
	outer := NewMerge([]Cursor[uint64]{
		inner,
		NewSlice([]uint64{3, 5}),
	})
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, Collect[uint64](outer))
}
