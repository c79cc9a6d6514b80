package status

import (
	"github.com/nathoo/battlecore/engine/effects"
	"github.com/nathoo/battlecore/engine/rules"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// DamageResult describes one damage application.
type DamageResult struct {
	Amount   int // after multipliers, before shields
	Absorbed int
	Dealt    int // HP actually lost
	Killed   bool
}

// DealDamage applies raw damage of element from sourceID to targetID:
// element, tag and status resistance multipliers, then shields, then HP.
// It logs each step and never rolls.
func (e *Engine) DealDamage(s *types.BattleState, sourceID, targetID string, raw float64, element, label string) DamageResult {
	target := s.Actors[targetID]
	if target == nil || !target.Alive {
		return DamageResult{}
	}
	mult := rules.ElementMultiplier(e.Balance, element, target) *
		rules.TagResistanceMultiplier(e.Balance, target) *
		rules.StatusResistMultiplier(e.Statuses, element, target)
	amount := max(0, effects.Round(raw*mult))

	res := DamageResult{Amount: amount}
	if amount == 0 {
		state.Logf(s, "%s is unharmed by %s.", target.Name, label)
		return res
	}

	left := e.AbsorbDamage(s, targetID, amount, element)
	res.Absorbed = amount - left
	if left == 0 {
		return res
	}

	res.Dealt, res.Killed = effects.ApplyDamage(target, left)
	if element != "" {
		state.Logf(s, "%s takes %d %s damage.", target.Name, res.Dealt, element)
	} else {
		state.Logf(s, "%s takes %d damage.", target.Name, res.Dealt)
	}
	if res.Killed {
		e.killed(s, target)
	}
	return res
}

// GrantShield adds amount to the named shield pool on targetID, creating
// it at the end of the pool order if absent. With replace, an existing
// pool is overwritten instead. An element restricts the pool to damage of
// that element.
func (e *Engine) GrantShield(s *types.BattleState, targetID, id string, amount int, element, fromStatus string, replace bool) {
	a := s.Actors[targetID]
	if a == nil {
		return
	}
	if amount <= 0 {
		state.Logf(s, "The %s shield on %s holds nothing.", id, a.Name)
		return
	}
	pools := s.Shields[targetID]
	for i := range pools {
		if pools[i].ID != id {
			continue
		}
		if replace {
			pools[i].Remaining = amount
		} else {
			pools[i].Remaining += amount
		}
		if element != "" {
			pools[i].Element = element
		}
		state.Logf(s, "%s's %s shield now holds %d.", a.Name, id, pools[i].Remaining)
		return
	}
	if s.Shields == nil {
		s.Shields = map[string][]types.Shield{}
	}
	s.Shields[targetID] = append(pools, types.Shield{ID: id, Remaining: amount, Element: element, FromStatus: fromStatus})
	state.Logf(s, "%s gains a %s shield (%d).", a.Name, id, amount)
}

// AbsorbDamage runs amount through targetID's shields in insertion order
// and returns what is left for HP. Depleted pools shatter and are removed.
func (e *Engine) AbsorbDamage(s *types.BattleState, targetID string, amount int, element string) int {
	pools := s.Shields[targetID]
	if len(pools) == 0 || amount <= 0 {
		return amount
	}
	name := state.DisplayName(s, targetID)
	kept := pools[:0]
	for _, sh := range pools {
		if amount > 0 && (sh.Element == "" || sh.Element == element) {
			took := min(sh.Remaining, amount)
			sh.Remaining -= took
			amount -= took
			state.Logf(s, "%s's %s shield absorbs %d damage.", name, sh.ID, took)
			if sh.Remaining == 0 {
				state.Logf(s, "%s's %s shield shatters!", name, sh.ID)
				continue
			}
		}
		kept = append(kept, sh)
	}
	if len(kept) == 0 {
		delete(s.Shields, targetID)
	} else {
		s.Shields[targetID] = kept
	}
	return amount
}

// ReleaseShields drops every shield on targetID granted by fromStatus.
func (e *Engine) ReleaseShields(s *types.BattleState, targetID, fromStatus string) {
	pools := s.Shields[targetID]
	kept := pools[:0]
	for _, sh := range pools {
		if sh.FromStatus == fromStatus {
			state.Logf(s, "%s's %s shield fades.", state.DisplayName(s, targetID), sh.ID)
			continue
		}
		kept = append(kept, sh)
	}
	if len(kept) == 0 {
		delete(s.Shields, targetID)
	} else {
		s.Shields[targetID] = kept
	}
}

// ShieldTotal returns the total absorption left on targetID.
func ShieldTotal(s *types.BattleState, targetID string) int {
	total := 0
	for _, sh := range s.Shields[targetID] {
		total += sh.Remaining
	}
	return total
}
