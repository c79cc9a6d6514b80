// Package rules implements the pure combat formulas (hit, crit, elemental
// and tag resistance) and the condition trees used by selectors, onlyIf
// filters and usability predicates.
package rules

import (
	"math"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// HitChance returns the probability that user hits target:
// BaseHit + 0.02*(userLv-targetLv) + 0.01*(userAtk-targetDef), clamped to
// [DodgeFloor, HitCeil].
func HitChance(b types.Balance, user, target *types.Actor) float64 {
	lv := float64(user.Stats.Level - target.Stats.Level)
	edge := state.Effective(user, "atk") - state.Effective(target, "def")
	return clamp(b.BaseHit+0.02*lv+0.01*edge, b.DodgeFloor, b.HitCeil)
}

// CritChance returns the probability that a hit is critical:
// BaseCrit + 0.01*max(0, userLv-targetLv) + 0.005*max(0, userAtk-targetDef),
// clamped to [0, 1].
func CritChance(b types.Balance, user, target *types.Actor) float64 {
	lv := math.Max(0, float64(user.Stats.Level-target.Stats.Level))
	edge := math.Max(0, state.Effective(user, "atk")-state.Effective(target, "def"))
	return clamp(b.BaseCrit+0.01*lv+0.005*edge, 0, 1)
}

// ElementMultiplier looks up the attacking element's row in the element
// matrix. The first target tag present as a column wins; otherwise the
// row's "neutral" entry applies; otherwise 1.
func ElementMultiplier(b types.Balance, element string, target *types.Actor) float64 {
	row, ok := b.Elements[element]
	if !ok {
		return 1
	}
	for _, tag := range target.Tags {
		if m, ok := row[tag]; ok {
			return m
		}
	}
	if m, ok := row["neutral"]; ok {
		return m
	}
	return 1
}

// TagResistanceMultiplier is the product of the configured resistance of
// every tag the target carries. Tags without an entry contribute 1.
func TagResistanceMultiplier(b types.Balance, target *types.Actor) float64 {
	m := 1.0
	for _, tag := range target.Tags {
		if r, ok := b.TagResist[tag]; ok {
			m *= r
		}
	}
	return m
}

// StatusResistMultiplier is the product of every active status's
// resistance entry for element.
func StatusResistMultiplier(statuses map[string]*types.RuntimeStatus, element string, target *types.Actor) float64 {
	if element == "" {
		return 1
	}
	m := 1.0
	for _, st := range target.Statuses {
		tmpl := statuses[st.ID]
		if tmpl == nil {
			continue
		}
		if r, ok := tmpl.Resist[element]; ok {
			m *= r
		}
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
