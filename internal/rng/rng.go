// Package rng provides the deterministic pseudo-random source used by
// scholar generation, expedition resolution, and offer rolls ().
// A Source is seeded once at service construction and is not safe for
// concurrent use; callers hold the game service's single-writer lock
// around every call, .
package rng

import "math/rand"

// Source is a seeded deterministic RNG. The zero value is not usable;
// construct with New.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded with seed. The same seed always produces
// the same sequence of draws, so a game can be replayed from its event
// log plus this seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// RandInt returns a uniform integer in [lo, hi] inclusive.
func (s *Source) RandInt(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

// Uniform returns a uniform float64 in [0, 1).
func (s *Source) Uniform() float64 {
	return s.r.Float64()
}

// Choice returns a uniformly random element of items. Panics if items is empty.
func Choice[T any](s *Source, items []T) T {
	if len(items) == 0 {
		panic("rng: Choice called with empty slice")
	}
	return items[s.r.Intn(len(items))]
}

// Sample returns k distinct elements drawn from items without replacement.
// If k >= len(items), a shuffled copy of items is returned.
func Sample[T any](s *Source, items []T, k int) []T {
	cp := make([]T, len(items))
	copy(cp, items)
	s.r.Shuffle(len(cp), func(i, j int) { cp[i], cp[j] = cp[j], cp[i] })
	if k >= len(cp) || k < 0 {
		return cp
	}
	return cp[:k]
}
