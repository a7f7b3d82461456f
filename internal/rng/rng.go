// Package rng provides the injectable randomness used by valuation and projection.
package rng

import "math/rand/v2"

// Source is the subset of *rand.Rand the engine draws from.
// Implementations need not be safe for concurrent use; create one per analysis.
type Source interface {
	Float64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Factory creates a fresh Source for one analysis request.
type Factory func() Source

// New returns a deterministic Source for the given seed.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewFactory returns a Factory. A zero seed yields independently seeded sources;
// a non-zero seed yields identical sequences for every request.
func NewFactory(seed uint64) Factory {
	if seed == 0 {
		return func() Source {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return func() Source { return New(seed) }
}

// Between draws uniformly from [lo, hi). It returns lo when hi <= lo.
func Between(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}
