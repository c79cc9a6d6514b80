// Package targeting resolves selectors into ordered lists of actor ids.
package targeting

import (
	"sort"

	"github.com/nathoo/battlecore/engine/rng"
	"github.com/nathoo/battlecore/engine/rules"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// Candidates gathers the selector's side pool for userID, dropping dead
// actors unless IncludeDead is set, then applies the condition filter.
// Actors that fled are never candidates.
// The "any" side lists the user's allies first.
func Candidates(s *types.BattleState, sel types.Selector, userID string) []string {
	var pool []string
	switch sel.Side {
	case types.SideSelf:
		pool = []string{userID}
	case types.SideAlly:
		pool = state.Allies(s, userID)
	case types.SideEnemy:
		pool = state.Opponents(s, userID)
	case types.SideAny:
		pool = append(append([]string(nil), state.Allies(s, userID)...), state.Opponents(s, userID)...)
	}

	var out []string
	for _, id := range pool {
		a := s.Actors[id]
		if a == nil || state.HasTag(a, "fled") {
			continue
		}
		if !a.Alive && !sel.IncludeDead {
			continue
		}
		if !rules.EvalCondition(sel.Condition, a) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Resolve returns the target ids chosen by sel for userID. Random mode
// consumes exactly one draw from the battle RNG per target picked.
func Resolve(s *types.BattleState, sel types.Selector, userID string) []string {
	user := s.Actors[userID]
	if user == nil {
		return nil
	}

	if sel.Mode == types.ModeSelf {
		if !user.Alive && !sel.IncludeDead {
			return nil
		}
		return []string{userID}
	}

	cands := Candidates(s, sel, userID)
	if len(cands) == 0 {
		return nil
	}

	switch sel.Mode {
	case types.ModeSingle:
		return cands[:1]

	case types.ModeAll:
		return cands

	case types.ModeRandom:
		n := limit(sel.Count, len(cands))
		picked := append([]string(nil), cands...)
		for i := 0; i < n; i++ {
			j := i + rng.Intn(s, len(picked)-i)
			picked[i], picked[j] = picked[j], picked[i]
		}
		return picked[:n]

	case types.ModeLowest, types.ModeHighest:
		metric := sel.OfWhat
		if metric == "" {
			metric = "hpPct"
		}
		sorted := append([]string(nil), cands...)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, _ := state.Metric(s.Actors[sorted[i]], metric)
			b, _ := state.Metric(s.Actors[sorted[j]], metric)
			if sel.Mode == types.ModeLowest {
				return a < b
			}
			return a > b
		})
		return sorted[:limit(sel.Count, len(sorted))]

	case types.ModeCondition:
		return cands[:limit(sel.Count, len(cands))]
	}
	return nil
}

// limit caps n at max; n <= 0 means no cap.
func limit(n, max int) int {
	if n <= 0 || n > max {
		return max
	}
	return n
}
