package testutil

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SortedUnique generates n strictly ascending uint64 keys starting near
// zero, with gaps uniform in [1, maxGap]. maxGap < 1 is treated as 1,
// which produces the dense sequence 0..n-1.
func (r *RNG) SortedUnique(n, maxGap int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxGap < 1 {
		maxGap = 1
	}
	keys := make([]uint64, n)
	var k uint64
	for i := range keys {
		keys[i] = k
		k += 1 + uint64(r.rand.Intn(maxGap))
	}
	return keys
}

// SortedUnique32 is SortedUnique for uint32 keys.
func (r *RNG) SortedUnique32(n, maxGap int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxGap < 1 {
		maxGap = 1
	}
	keys := make([]uint32, n)
	var k uint32
	for i := range keys {
		keys[i] = k
		k += 1 + uint32(r.rand.Intn(maxGap))
	}
	return keys
}

// SortedUniqueZipf generates n strictly ascending uint64 keys whose gaps
// follow a truncated Zipf distribution with exponent s > 1: mostly dense
// stretches interrupted by occasional long jumps. Skewed inputs exercise
// the seek path far harder than uniform gaps do.
func (r *RNG) SortedUniqueZipf(n int, s float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]uint64, n)
	var k uint64
	for i := range keys {
		keys[i] = k
		k += uint64(r.zipfLocked(1024, s))
	}
	return keys
}

// zipfLocked samples from a truncated Zipf distribution over [1, n] via
// inverse transform sampling. Caller must hold mu.
func (r *RNG) zipfLocked(n int, s float64) int {
	u := r.rand.Float64()
	// Normalization constant for P(x) proportional to x^-s.
	var norm float64
	for x := 1; x <= n; x++ {
		norm += math.Pow(float64(x), -s)
	}
	var cum float64
	for x := 1; x <= n; x++ {
		cum += math.Pow(float64(x), -s) / norm
		if u <= cum {
			return x
		}
	}
	return n
}

// Subset returns a random ordered subset of keys where each element is
// kept with probability p. The input is not modified.
func (r *RNG) Subset(keys []uint64, p float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, 0, int(float64(len(keys))*p)+1)
	for _, k := range keys {
		if r.rand.Float64() < p {
			out = append(out, k)
		}
	}
	return out
}

// Intersect computes the ground-truth intersection of strictly ascending,
// duplicate-free sequences: the keys present in every sequence, ascending.
// A call with no sequences returns nil.
func Intersect[K cmp.Ordered](seqs ...[]K) []K {
	if len(seqs) == 0 {
		return nil
	}

	counts := make(map[K]int, len(seqs[0]))
	for _, k := range seqs[0] {
		counts[k] = 1
	}
	for _, seq := range seqs[1:] {
		for _, k := range seq {
			if counts[k] > 0 {
				counts[k]++
			}
		}
	}

	var out []K
	for k, c := range counts {
		if c == len(seqs) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// Partition splits each ascending set into n contiguous key ranges and
// returns them indexed [shard][set]. All sets are cut at the same range
// bounds, so the shard-local intersections concatenate to the global one.
// Shards covering an empty stretch of the key space hold empty slices.
func Partition(sets [][]uint64, n int) [][][]uint64 {
	var maxKey uint64
	for _, set := range sets {
		if len(set) > 0 && set[len(set)-1] > maxKey {
			maxKey = set[len(set)-1]
		}
	}
	width := maxKey/uint64(n) + 1

	out := make([][][]uint64, n)
	for i := range out {
		lo, hi := uint64(i)*width, uint64(i+1)*width
		part := make([][]uint64, len(sets))
		for s, set := range sets {
			start, _ := slices.BinarySearch(set, lo)
			end, _ := slices.BinarySearch(set, hi)
			part[s] = set[start:end]
		}
		out[i] = part
	}
	return out
}
