// Package vrprand centralizes deterministic random generation for every
// stochastic operator in the solver (recreate perturbation, ruin sampling,
// result-selector noise, hyper-heuristic weighted sampling).
//
// Goals:
//   - Determinism: same master seed ⇒ identical search trajectory, so runs
//     are reproducible across platforms and across a single-threaded vs.
//     parallel evolution loop.
//   - Encapsulation: one factory, no time-based sources hidden anywhere.
//   - Independence: parallel operators must not share a *rand.Rand (it is
//     not goroutine-safe); each worker/thread derives its own stream from
//     a parent seed plus a stream identifier.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/rng.go (SplitMix64
// derivation), generalized from TSP multi-start restarts to arbitrary
// solver components (workers, operators, generations).
package vrprand

import "math/rand"

// defaultSeed is used when a caller passes seed==0, keeping "no seed
// configured" reproducible rather than silently falling back to a
// time-based source.
const defaultSeed int64 = 1

// Source wraps a non-thread-safe *rand.Rand; each worker or operator holds
// its own Source, derived from a parent via Derive.
type Source struct {
	rng *rand.Rand
}

// New returns a deterministic Source seeded directly from seed.
// seed==0 is remapped to defaultSeed so "the zero value" stays reproducible.
func New(seed int64) *Source {
	if seed == 0 {
		seed = defaultSeed
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Derive creates an independent deterministic substream from s and a stream
// identifier (e.g. a worker index or a stable operator name hash). Two calls
// with the same (s state, stream) at the same point in the call sequence
// always produce the same child stream; two different stream ids derived
// from the same s never correlate.
//
// Complexity: O(1).
func (s *Source) Derive(stream uint64) *Source {
	parent := s.rng.Int63()
	return &Source{rng: rand.New(rand.NewSource(deriveSeed(parent, stream)))}
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed using a SplitMix64-style avalanche finalizer: small input changes
// produce large, well-distributed output changes, which keeps derived
// streams from correlating even for adjacent stream ids.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// Intn returns a pseudo-random number in [0, n).
func (s *Source) Intn(n int) int { return s.rng.Intn(n) }

// IntRange returns a pseudo-random number in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Bool returns true with probability p (clamped to [0,1]).
func (s *Source) Bool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// Shuffle permutes n elements in place via swap(i, j), using Fisher-Yates.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Perm returns a pseudo-random permutation of [0, n).
func (s *Source) Perm(n int) []int { return s.rng.Perm(n) }
