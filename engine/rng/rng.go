// Package rng implements the shared linear congruential generator that
// drives every random decision in a battle. The seed lives on the battle
// state so the draw stream survives save/load and can be replayed.
package rng

import "github.com/nathoo/battlecore/types"

const (
	multiplier = 1664525
	increment  = 1013904223
	modulus    = 1 << 32
)

// Step returns the seed that follows seed.
func Step(seed uint32) uint32 {
	return seed*multiplier + increment
}

// Next advances the battle's seed by one step and returns a draw in [0, 1).
// Position increments with every draw.
func Next(s *types.BattleState) float64 {
	s.RNGSeed = Step(s.RNGSeed)
	s.RNGPosition++
	return float64(s.RNGSeed) / modulus
}

// Chance draws once and reports whether the draw fell below p.
func Chance(s *types.BattleState, p float64) bool {
	return Next(s) < p
}

// Intn draws once and returns an integer in [0, n). n must be positive.
func Intn(s *types.BattleState, n int) int {
	i := int(Next(s) * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// WeightedSelect returns an index chosen by weighted random selection.
// Non-positive weights are never chosen. Returns -1 when no weight is
// positive, without drawing.
func WeightedSelect(s *types.BattleState, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := Next(s) * total
	cumulative := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if roll < cumulative {
			return i
		}
	}
	return last
}
