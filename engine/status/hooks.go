package status

import (
	"go.uber.org/zap"

	"github.com/nathoo/battlecore/engine/effects"
	"github.com/nathoo/battlecore/engine/rng"
	"github.com/nathoo/battlecore/engine/rules"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/engine/targeting"
	"github.com/nathoo/battlecore/types"
)

// Fire runs one hook of an active status on holderID. ctx carries extra
// formula inputs (for damage hooks, "damage"). Hook effects never roll to
// hit or crit.
func (e *Engine) Fire(s *types.BattleState, holderID, statusID string, hook types.Hook, ctx types.EvalContext) {
	a := s.Actors[holderID]
	if a == nil {
		return
	}
	i := state.FindStatus(a, statusID)
	if i < 0 {
		return
	}
	e.fire(s, holderID, a.Statuses[i], hook, ctx)
}

// FireAll runs hook on every status active on holderID, in application
// order.
func (e *Engine) FireAll(s *types.BattleState, holderID string, hook types.Hook, ctx types.EvalContext) {
	a := s.Actors[holderID]
	if a == nil {
		return
	}
	for _, id := range statusIDs(a) {
		if !a.Alive {
			return
		}
		e.Fire(s, holderID, id, hook, ctx)
	}
}

func (e *Engine) fire(s *types.BattleState, holderID string, st types.Status, hook types.Hook, ctx types.EvalContext) {
	tmpl := e.Statuses[st.ID]
	if tmpl == nil || len(tmpl.Hooks[hook]) == 0 {
		return
	}
	if e.depth >= maxHookDepth {
		state.Logf(s, "%s's %s fizzles.", state.DisplayName(s, holderID), e.name(st.ID))
		e.Logger.Warn("hook chain too deep",
			zap.String("status", st.ID), zap.String("hook", string(hook)), zap.String("holder", holderID))
		return
	}
	e.depth++
	defer func() { e.depth-- }()

	// The source is credited with the effects; it falls back to the holder.
	userID := st.Source
	if s.Actors[userID] == nil {
		userID = holderID
	}

	hctx := types.EvalContext{"turn": float64(s.Turn), "stacks": float64(st.Stacks), "turns": float64(st.Turns)}
	for k, v := range ctx {
		hctx[k] = v
	}

	for _, eff := range tmpl.Hooks[hook] {
		targets := []string{holderID}
		if eff.Selector != nil {
			targets = targeting.Resolve(s, *eff.Selector, holderID)
		}
		if len(targets) == 0 {
			state.Logf(s, "%s's %s finds no target.", state.DisplayName(s, holderID), e.name(st.ID))
			continue
		}
		for _, tid := range targets {
			e.runEffect(s, eff, userID, tid, st.ID, hctx)
		}
		if s.Ended != nil {
			return
		}
	}
}

// runEffect dispatches one hook effect against one target.
func (e *Engine) runEffect(s *types.BattleState, eff types.RuntimeEffect, userID, targetID, statusID string, ctx types.EvalContext) {
	user, target := s.Actors[userID], s.Actors[targetID]
	if target == nil {
		return
	}
	if eff.OnlyIf != nil && !rules.EvalCondition(eff.OnlyIf, target) {
		state.Logf(s, "%s is unaffected by %s.", target.Name, e.name(statusID))
		return
	}
	v, ok := e.Value(s, eff, user, target, ctx, e.name(statusID))
	if !ok {
		return
	}

	switch eff.Kind {
	case types.EffectDamage:
		if !target.Alive {
			state.Logf(s, "%s is already down.", target.Name)
			return
		}
		e.DealDamage(s, userID, targetID, v, eff.Element, e.name(statusID))
	case types.EffectHeal:
		e.Heal(s, target, v, e.name(statusID))
	case types.EffectResource:
		e.Resource(s, target, eff.Resource, v, e.name(statusID))
	case types.EffectApplyStatus:
		e.Apply(s, targetID, eff.Status, e.Duration(eff.Status, eff.Turns, v), eff.Stacks, userID)
	case types.EffectCleanseStatus:
		e.Cleanse(s, targetID, eff.Tags)
	case types.EffectShield:
		id := eff.ShieldID
		if id == "" {
			id = statusID
		}
		e.GrantShield(s, targetID, id, effects.Round(v), eff.Element, statusID, eff.Replace)
	case types.EffectTaunt:
		e.ApplyTaunt(s, targetID, userID, e.TauntTurns(eff, v))
	case types.EffectFlee:
		e.Flee(s, targetID, v)
	case types.EffectRevive:
		e.Revive(s, target, v)
	case types.EffectModifyStat:
		e.ModifyStat(s, target, eff.Stat, v)
	default:
		state.Logf(s, "%s has no effect on %s.", e.name(statusID), target.Name)
		e.Logger.Error("unhandled effect kind", zap.String("kind", string(eff.Kind)), zap.String("status", statusID))
	}
}

// Value resolves an effect's magnitude for one user/target pair. A
// resolution failure is logged and reported as !ok so the caller skips
// the effect.
func (e *Engine) Value(s *types.BattleState, eff types.RuntimeEffect, user, target *types.Actor, ctx types.EvalContext, label string) (float64, bool) {
	if eff.Value.Resolve == nil {
		return 0, true
	}
	v, err := eff.Value.Resolve(user, target, ctx)
	if err != nil {
		state.Logf(s, "%s fails to take effect on %s.", label, target.Name)
		e.Logger.Warn("effect value failed",
			zap.String("source", label), zap.String("kind", string(eff.Kind)),
			zap.String("target", target.ID), zap.Error(err))
		return 0, false
	}
	return v, true
}

// TauntTurns is how long a taunt effect lasts: explicit turns or the rounded value.
func (e *Engine) TauntTurns(eff types.RuntimeEffect, v float64) int {
	if eff.Turns != nil {
		return *eff.Turns
	}
	return effects.Round(v)
}

// Heal restores HP and logs the outcome.
func (e *Engine) Heal(s *types.BattleState, target *types.Actor, v float64, label string) int {
	if !target.Alive {
		state.Logf(s, "%s is down and cannot be healed.", target.Name)
		return 0
	}
	n := effects.ApplyHeal(target, effects.Round(v))
	if n == 0 {
		state.Logf(s, "%s is already at full health.", target.Name)
		return 0
	}
	state.Logf(s, "%s recovers %d HP from %s.", target.Name, n, label)
	return n
}

// Resource adds v (negative drains) to hp, sta or mp and logs the
// direction of the change.
func (e *Engine) Resource(s *types.BattleState, target *types.Actor, resource string, v float64, label string) int {
	if resource == "" {
		resource = effects.HP
	}
	n, err := effects.ApplyResource(target, resource, effects.Round(v))
	if err != nil {
		state.Logf(s, "%s has no effect on %s.", label, target.Name)
		e.Logger.Warn("resource effect failed", zap.String("source", label), zap.Error(err))
		return 0
	}
	switch {
	case n > 0:
		state.Logf(s, "%s restores %d %s to %s.", label, n, resource, target.Name)
	case n < 0:
		state.Logf(s, "%s drains %d %s from %s.", label, -n, resource, target.Name)
		if !target.Alive {
			e.killed(s, target)
		}
	default:
		state.Logf(s, "%s's %s does not change.", target.Name, resource)
	}
	return n
}

// Revive brings a dead actor back with v HP (at least 1).
func (e *Engine) Revive(s *types.BattleState, target *types.Actor, v float64) bool {
	if state.HasTag(target, "fled") {
		state.Logf(s, "%s has left the battle and cannot be revived.", target.Name)
		return false
	}
	if !effects.Revive(target, effects.Round(v)) {
		state.Logf(s, "%s is not down.", target.Name)
		return false
	}
	state.Logf(s, "%s is revived with %d HP!", target.Name, target.Stats.HP)
	return true
}

// ModifyStat changes a base stat by v and logs it.
func (e *Engine) ModifyStat(s *types.BattleState, target *types.Actor, stat string, v float64) int {
	wasAlive := target.Alive
	n, err := effects.ModifyStat(target, stat, effects.Round(v))
	if err != nil {
		state.Logf(s, "%s cannot have %q changed.", target.Name, stat)
		e.Logger.Warn("modifyStat failed", zap.String("target", target.ID), zap.Error(err))
		return 0
	}
	switch {
	case n > 0:
		state.Logf(s, "%s's %s rises by %d.", target.Name, stat, n)
	case n < 0:
		state.Logf(s, "%s's %s falls by %d.", target.Name, stat, -n)
	default:
		state.Logf(s, "%s's %s does not change.", target.Name, stat)
	}
	if wasAlive && !target.Alive {
		e.killed(s, target)
	}
	return n
}

// Flee rolls an escape attempt for actorID. chance <= 0 uses the balance
// default. A player escaping ends the battle; an enemy escaping leaves it.
func (e *Engine) Flee(s *types.BattleState, actorID string, chance float64) bool {
	a := s.Actors[actorID]
	if a == nil || !a.Alive {
		return false
	}
	if chance <= 0 {
		chance = e.Balance.FleeChance
	}
	if !rng.Chance(s, chance) {
		state.Logf(s, "%s tries to flee but fails!", a.Name)
		return false
	}
	state.Logf(s, "%s flees the battle!", a.Name)
	if state.SideOf(s, actorID) == state.SidePlayer {
		if s.Ended == nil {
			s.Ended = &types.Ended{Reason: types.EndFled}
		}
		return true
	}
	a.Alive = false
	a.Stats.HP = 0
	a.Tags = append(a.Tags, "fled")
	delete(s.Taunts, actorID)
	return true
}

// killed logs a death and clears the actor's taunt.
func (e *Engine) killed(s *types.BattleState, a *types.Actor) {
	state.Logf(s, "%s is defeated!", a.Name)
	delete(s.Taunts, a.ID)
}
