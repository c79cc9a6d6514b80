package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/nathoo/battlecore/engine/effects"
	"github.com/nathoo/battlecore/engine/events"
	"github.com/nathoo/battlecore/engine/rng"
	"github.com/nathoo/battlecore/engine/rules"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/engine/targeting"
	"github.com/nathoo/battlecore/types"
)

// Use executes action for userID. explicit, when non-empty, replaces the
// action's own target resolution; ids that the selector could not pick
// are dropped. A rejected action leaves the battle unchanged apart from
// the log line explaining the rejection.
func (e *Engine) Use(action *types.RuntimeAction, userID string, explicit []string) types.UseResult {
	return e.UseContext(context.Background(), action, userID, explicit)
}

// UseContext is Use with a parent context for tracing.
func (e *Engine) UseContext(ctx context.Context, action *types.RuntimeAction, userID string, explicit []string) types.UseResult {
	_, span := e.Tracer.Start(ctx, "battle.action")
	defer span.End()
	span.SetAttributes(
		attribute.String("actor", userID),
		attribute.String("action", action.ID),
		attribute.String("kind", string(action.Kind)),
		attribute.Int("turn", e.State.Turn),
	)

	s := e.State
	if s.Ended != nil {
		// Terminal: the battle itself is not touched, not even its log.
		span.SetAttributes(attribute.Bool("ok", false))
		return types.UseResult{OK: false, Log: []string{"The battle is already over."}, State: s}
	}

	start := len(s.Log)
	ok := e.execute(action, userID, explicit)
	span.SetAttributes(attribute.Bool("ok", ok))
	if s.Ended != nil {
		span.SetAttributes(attribute.String("ended", string(s.Ended.Reason)))
	}
	return types.UseResult{OK: ok, Log: append([]string(nil), s.Log[start:]...), State: s}
}

// UseSkill looks up a compiled skill and uses it.
func (e *Engine) UseSkill(skillID, userID string, targets []string) types.UseResult {
	sk := e.Tables.Skills[skillID]
	if sk == nil {
		return e.unknownAction("skill", skillID)
	}
	return e.Use(&sk.RuntimeAction, userID, targets)
}

// UseItem looks up a compiled item and uses it from the shared inventory.
func (e *Engine) UseItem(itemID, userID string, targets []string) types.UseResult {
	item := e.Tables.Items[itemID]
	if item == nil {
		return e.unknownAction("item", itemID)
	}
	return e.Use(&item.RuntimeAction, userID, targets)
}

func (e *Engine) unknownAction(kind, id string) types.UseResult {
	s := e.State
	if s.Ended != nil {
		return types.UseResult{OK: false, Log: []string{"The battle is already over."}, State: s}
	}
	start := len(s.Log)
	state.Logf(s, "Nothing happens: %q is not a known %s.", id, kind)
	e.Logger.Warn("unknown action", zap.String("kind", kind), zap.String("id", id))
	return types.UseResult{OK: false, Log: append([]string(nil), s.Log[start:]...), State: s}
}

// execute runs the action state machine: checks, targets, costs, effects,
// outcome. It reports whether the action went ahead.
func (e *Engine) execute(action *types.RuntimeAction, userID string, explicit []string) bool {
	s := e.State
	user := s.Actors[userID]
	if user == nil {
		state.Logf(s, "Nothing happens: %q is not in this battle.", userID)
		e.Logger.Warn("unknown user", zap.String("actor", userID), zap.String("action", action.ID))
		return false
	}
	if !user.Alive {
		state.Logf(s, "%s is down and cannot act.", user.Name)
		return false
	}
	if reason := e.cannotUse(action, user); reason != "" {
		state.Logf(s, "%s", reason)
		e.Logger.Debug("action rejected", zap.String("actor", userID), zap.String("action", action.ID), zap.String("reason", reason))
		return false
	}

	targets := e.baseTargets(action, userID, explicit)
	if len(targets) == 0 {
		state.Logf(s, "%s has no valid target for %s.", user.Name, actionName(action))
		return false
	}

	e.payCosts(action, user)
	if len(targets) == 1 && targets[0] == userID {
		state.Logf(s, "%s uses %s.", user.Name, actionName(action))
	} else {
		state.Logf(s, "%s uses %s on %s.", user.Name, actionName(action), state.JoinNames(s, targets))
	}

	ctx := types.EvalContext{
		"turn":    float64(s.Turn),
		"targets": float64(len(targets)),
	}
	for _, eff := range action.Effects {
		effTargets := targets
		if eff.Selector != nil {
			effTargets = targeting.Resolve(s, *eff.Selector, userID)
			if len(effTargets) == 0 {
				state.Logf(s, "%s's %s effect finds no target.", actionName(action), eff.Kind)
				continue
			}
		}
		for i, tid := range effTargets {
			ctx["index"] = float64(i)
			e.applyEffect(action, eff, userID, tid, ctx)
			if s.Ended != nil {
				break
			}
		}
		if s.Ended != nil {
			break
		}
	}

	e.checkOutcome()
	return true
}

// cannotUse returns the rejection line for an action the user cannot pay
// for or is not allowed to use, or "" when the action may proceed. It
// mutates nothing.
func (e *Engine) cannotUse(action *types.RuntimeAction, user *types.Actor) string {
	s := e.State
	name := actionName(action)

	if action.Kind == types.ActionSkill && len(user.Skills) > 0 && !contains(user.Skills, action.ID) {
		return fmt.Sprintf("%s does not know %s.", user.Name, name)
	}
	if cd := state.Counter(s.Cooldowns, user.ID, action.ID); cd > 0 {
		return fmt.Sprintf("%s is not ready yet (%d turn(s) left).", name, cd)
	}
	if c := action.Cost.Charges; c > 0 && state.Counter(s.Charges, user.ID, action.ID) >= c {
		return fmt.Sprintf("%s has no charges left.", name)
	}
	if action.Usable != nil && !rules.EvalCondition(action.Usable, user) {
		return fmt.Sprintf("%s cannot use %s right now.", user.Name, name)
	}
	for _, need := range itemNeeds(action) {
		if have := state.ItemCount(s, need.ID); have < need.Qty {
			if have == 0 {
				return fmt.Sprintf("There is no %s left.", e.itemName(need.ID))
			}
			return fmt.Sprintf("Not enough %s (need %d, have %d).", e.itemName(need.ID), need.Qty, have)
		}
	}
	if need := action.Cost.Sta; need > user.Stats.Sta {
		return fmt.Sprintf("%s lacks the stamina for %s (%d/%d).", user.Name, name, user.Stats.Sta, need)
	}
	if need := action.Cost.MP; need > user.Stats.MP {
		return fmt.Sprintf("%s lacks the mana for %s (%d/%d).", user.Name, name, user.Stats.MP, need)
	}
	return ""
}

// itemNeeds totals the inventory an action consumes: the item itself
// (any item needs one in the bag; consumables use it up) plus item costs.
func itemNeeds(action *types.RuntimeAction) []types.ItemQty {
	var needs []types.ItemQty
	add := func(id string, qty int) {
		for i := range needs {
			if needs[i].ID == id {
				needs[i].Qty += qty
				return
			}
		}
		needs = append(needs, types.ItemQty{ID: id, Qty: qty})
	}
	if action.Kind == types.ActionItem {
		add(action.ID, 1)
	}
	for _, it := range action.Cost.Items {
		if it.Qty > 0 {
			add(it.ID, it.Qty)
		}
	}
	return needs
}

// baseTargets resolves the action's target set. Explicit ids are kept in
// the order given when the selector could have picked them.
func (e *Engine) baseTargets(action *types.RuntimeAction, userID string, explicit []string) []string {
	s := e.State
	sel := action.Selector
	if len(explicit) == 0 {
		return targeting.Resolve(s, sel, userID)
	}

	var valid []string
	if sel.Mode == types.ModeSelf {
		valid = targeting.Resolve(s, sel, userID)
	} else {
		valid = targeting.Candidates(s, sel, userID)
	}
	var out []string
	for _, id := range explicit {
		if !contains(valid, id) {
			state.Logf(s, "%s is not a valid target for %s.", state.DisplayName(s, id), actionName(action))
			continue
		}
		if !contains(out, id) {
			out = append(out, id)
		}
	}
	if sel.Mode != types.ModeAll && sel.Count > 0 && len(out) > sel.Count {
		out = out[:sel.Count]
	}
	return out
}

// payCosts deducts resources and items and starts cooldown and charge
// tracking. Only called once every check has passed.
func (e *Engine) payCosts(action *types.RuntimeAction, user *types.Actor) {
	s := e.State
	user.Stats.Sta -= action.Cost.Sta
	user.Stats.MP -= action.Cost.MP
	if action.Kind == types.ActionItem && action.Consumable {
		state.RemoveItem(s, action.ID, 1)
	}
	for _, it := range action.Cost.Items {
		state.RemoveItem(s, it.ID, it.Qty)
	}
	if action.Cost.Cooldown > 0 {
		state.SetCounter(s.Cooldowns, user.ID, action.ID, action.Cost.Cooldown)
	}
	if action.Cost.Charges > 0 {
		used := state.Counter(s.Charges, user.ID, action.ID)
		state.SetCounter(s.Charges, user.ID, action.ID, used+1)
	}
}

// applyEffect runs one effect of an action against one target.
func (e *Engine) applyEffect(action *types.RuntimeAction, eff types.RuntimeEffect, userID, targetID string, ctx types.EvalContext) {
	s := e.State
	user, target := s.Actors[userID], s.Actors[targetID]
	if target == nil {
		return
	}
	name := actionName(action)
	if eff.OnlyIf != nil && !rules.EvalCondition(eff.OnlyIf, target) {
		state.Logf(s, "%s is unaffected by %s.", target.Name, name)
		return
	}
	v, ok := e.Status.Value(s, eff, user, target, ctx, name)
	if !ok {
		return
	}

	switch eff.Kind {
	case types.EffectDamage:
		e.damage(action, eff, user, target, v)
	case types.EffectHeal:
		e.Status.Heal(s, target, v, name)
	case types.EffectResource:
		e.Status.Resource(s, target, eff.Resource, v, name)
	case types.EffectApplyStatus:
		e.Status.Apply(s, targetID, eff.Status, e.Status.Duration(eff.Status, eff.Turns, v), eff.Stacks, userID)
	case types.EffectCleanseStatus:
		e.Status.Cleanse(s, targetID, eff.Tags)
	case types.EffectShield:
		id := eff.ShieldID
		if id == "" {
			id = action.ID
		}
		e.Status.GrantShield(s, targetID, id, effects.Round(v), eff.Element, "", eff.Replace)
	case types.EffectTaunt:
		e.Status.ApplyTaunt(s, targetID, userID, e.Status.TauntTurns(eff, v))
	case types.EffectFlee:
		e.Status.Flee(s, targetID, v)
	case types.EffectRevive:
		e.Status.Revive(s, target, v)
	case types.EffectModifyStat:
		e.Status.ModifyStat(s, target, eff.Stat, v)
	default:
		state.Logf(s, "%s has no effect on %s.", name, target.Name)
		e.Logger.Error("unhandled effect kind", zap.String("kind", string(eff.Kind)), zap.String("action", action.ID))
	}
}

// damage resolves one damage effect: miss roll, crit roll, multipliers,
// shields, HP, then the damage events.
func (e *Engine) damage(action *types.RuntimeAction, eff types.RuntimeEffect, user, target *types.Actor, v float64) {
	s := e.State
	name := actionName(action)
	if !target.Alive {
		state.Logf(s, "%s is already down.", target.Name)
		return
	}
	bal := e.Tables.Balance
	if eff.CanMiss && !rng.Chance(s, rules.HitChance(bal, user, target)) {
		state.Logf(s, "%s's %s misses %s.", user.Name, name, target.Name)
		return
	}
	if eff.CanCrit && rng.Chance(s, rules.CritChance(bal, user, target)) {
		v *= bal.CritMult
		state.Logf(s, "Critical hit!")
	}

	element := eff.Element
	if element == "" {
		element = action.Element
	}
	res := e.Status.DealDamage(s, user.ID, target.ID, v, element, name)
	if hit := res.Absorbed + res.Dealt; hit > 0 {
		events.Dispatch(events.Damage(user.ID, target.ID, hit, element), s, e.Status)
	}
}

// checkOutcome ends the battle once a side is wiped out. Victory is
// checked first.
func (e *Engine) checkOutcome() {
	s := e.State
	if s.Ended != nil {
		return
	}
	switch {
	case !state.AnyAlive(s, s.Enemies):
		s.Ended = &types.Ended{Reason: types.EndVictory}
		state.Logf(s, "Victory! All enemies have been defeated.")
		e.ProcessLoot()
	case !state.AnyAlive(s, s.Players):
		s.Ended = &types.Ended{Reason: types.EndDefeat}
		state.Logf(s, "Defeat... The party has fallen.")
	}
}

func actionName(a *types.RuntimeAction) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

func (e *Engine) itemName(id string) string {
	if it := e.Tables.Items[id]; it != nil && it.Name != "" {
		return it.Name
	}
	return id
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
