package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/nathoo/battlecore/engine/rng"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/engine/status"
	"github.com/nathoo/battlecore/engine/targeting"
	"github.com/nathoo/battlecore/types"
)

// ChooseAction picks a skill for an AI-controlled actor by weighted random
// selection over the skills it can use right now. A skill's weight is its
// AIWeight times the actor's preference for each of the skill's tags.
// A taunted actor aims single-target attacks at its taunter; targets is
// nil when the skill's own selector should decide. Returns nil when
// nothing is usable, without drawing.
func (e *Engine) ChooseAction(actorID string) (action *types.RuntimeAction, targets []string) {
	s := e.State
	a := s.Actors[actorID]
	if a == nil || !a.Alive {
		return nil, nil
	}

	var options []*types.RuntimeAction
	var weights []float64
	for _, id := range a.Skills {
		sk := e.Tables.Skills[id]
		if sk == nil {
			e.Logger.Warn("actor knows unknown skill", zap.String("actor", actorID), zap.String("skill", id))
			continue
		}
		if e.cannotUse(&sk.RuntimeAction, a) != "" || !e.hasTargets(&sk.RuntimeAction, actorID) {
			continue
		}
		w := sk.AIWeight
		for _, tag := range sk.Tags {
			if p, ok := a.AIPrefs[tag]; ok {
				w *= p
			}
		}
		options = append(options, &sk.RuntimeAction)
		weights = append(weights, w)
	}

	i := rng.WeightedSelect(s, weights)
	if i < 0 {
		return nil, nil
	}
	action = options[i]

	if src, ok := status.TauntSource(s, actorID); ok && forcedByTaunt(action.Selector) {
		if contains(targeting.Candidates(s, action.Selector, actorID), src) {
			targets = []string{src}
		}
	}
	return action, targets
}

// forcedByTaunt reports whether a selector picks a single opponent, the
// case a taunt redirects.
func forcedByTaunt(sel types.Selector) bool {
	if sel.Side != types.SideEnemy {
		return false
	}
	switch sel.Mode {
	case types.ModeSingle, types.ModeRandom, types.ModeLowest, types.ModeHighest:
		return true
	}
	return false
}

func (e *Engine) hasTargets(action *types.RuntimeAction, userID string) bool {
	if action.Selector.Mode == types.ModeSelf {
		return true
	}
	return len(targeting.Candidates(e.State, action.Selector, userID)) > 0
}

// EnemyTurn lets an AI-controlled actor act once.
func (e *Engine) EnemyTurn(actorID string) types.UseResult {
	return e.enemyTurn(context.Background(), actorID)
}

func (e *Engine) enemyTurn(ctx context.Context, actorID string) types.UseResult {
	s := e.State
	action, targets := e.ChooseAction(actorID)
	if action == nil {
		start := len(s.Log)
		state.Logf(s, "%s hesitates.", state.DisplayName(s, actorID))
		return types.UseResult{OK: true, Log: append([]string(nil), s.Log[start:]...), State: s}
	}
	return e.UseContext(ctx, action, actorID, targets)
}

// ProcessLoot hands out rewards for every enemy that was defeated (not one
// that fled): each drop rolls its chance once, XP and gold go to every
// surviving player, and items go to the shared inventory.
func (e *Engine) ProcessLoot() {
	s := e.State
	xp, gold := 0, 0
	for _, id := range s.Enemies {
		a := s.Actors[id]
		if a == nil || a.Alive || state.HasTag(a, "fled") {
			continue
		}
		xp += a.Stats.XP
		gold += a.Stats.Gold
		for _, d := range a.Loot {
			if !rng.Chance(s, d.Chance) {
				continue
			}
			qty := max(1, d.Qty)
			state.AddItem(s, d.Item, qty)
			state.Logf(s, "%s dropped %s x%d.", a.Name, e.itemName(d.Item), qty)
		}
	}

	if xp == 0 && gold == 0 {
		return
	}
	rewarded := 0
	for _, id := range s.Players {
		if a := s.Actors[id]; a != nil && a.Alive {
			a.Stats.XP += xp
			a.Stats.Gold += gold
			rewarded++
		}
	}
	if rewarded > 0 {
		state.Logf(s, "The party gains %d XP and %d gold.", xp, gold)
	}
}
