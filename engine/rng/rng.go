// Package rng provides the single seedable random source a match draws from.
package rng

import (
	"math"
	"math/rand"
)

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every draw, enabling replay from (seed, position).
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Roll returns a uniformly distributed integer in [1, sides].
// Source values in the biased tail are rejected and redrawn.
func (r *RNG) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	n := int64(sides)
	limit := math.MaxInt64 - math.MaxInt64%n
	for {
		v := r.src.Int63()
		r.pos++
		if v < limit {
			return int(v%n) + 1
		}
	}
}

// Intn returns a random integer in [0, n). n <= 0 yields 0.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.Roll(n) - 1
}

// Float64 returns a random float in [0, 1).
func (r *RNG) Float64() float64 {
	r.pos++
	return float64(r.src.Int63()>>10) / (1 << 53)
}

// Chance reports whether a draw falls under probability p.
func (r *RNG) Chance(p float64) bool {
	return r.Float64() < p
}

// Shuffle permutes n elements with swap, Fisher-Yates from the top.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.Intn(i+1))
	}
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	roll := r.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Position returns the number of source values consumed since creation.
// A rejected Roll draw counts too.
func (r *RNG) Position() int64 {
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
// Position counts every Int63 taken from the source, so this
// reproduces the exact state.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}
