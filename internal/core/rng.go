package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// Float64Range returns a uniform value in [a, b). When b <= a it returns a.
func (r *RNG) Float64Range(a, b float64) float64 {
	if b <= a {
		return a
	}
	return a + r.r.Float64()*(b-a)
}

// IntRange returns a uniform integer in [a, b], both ends inclusive.
func (r *RNG) IntRange(a, b int) int {
	if b <= a {
		return a
	}
	return a + r.r.IntN(b-a+1)
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
