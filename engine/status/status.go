// Package status applies, stacks, ticks and expires status effects, runs
// their hook effect lists, and manages shields and taunts.
package status

import (
	"go.uber.org/zap"

	"github.com/nathoo/battlecore/engine/effects"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// maxHookDepth bounds hooks that trigger further status applications.
const maxHookDepth = 8

// Engine runs status logic against one battle at a time. It holds no
// battle state of its own and is reused across battles.
type Engine struct {
	Statuses map[string]*types.RuntimeStatus
	Balance  types.Balance
	Logger   *zap.Logger

	depth int
}

// New creates a status engine over compiled tables. A nil logger is
// replaced with a no-op logger.
func New(t *state.Tables, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Statuses: t.Statuses, Balance: t.Balance, Logger: logger}
}

func (e *Engine) name(id string) string {
	if tmpl := e.Statuses[id]; tmpl != nil && tmpl.Name != "" {
		return tmpl.Name
	}
	return id
}

// Duration resolves how many turns an application lasts: an explicit
// value wins, then the template's durationTurns, then the rounded effect
// value.
func (e *Engine) Duration(statusID string, explicit *int, value float64) int {
	if explicit != nil {
		return *explicit
	}
	if tmpl := e.Statuses[statusID]; tmpl != nil && tmpl.DurationTurns != nil {
		return *tmpl.DurationTurns
	}
	return effects.Round(value)
}

// Apply puts a status on an actor or resolves a stacking collision with
// an active instance. It reports whether the actor's statuses changed.
// onApply runs on first application and on every renew or stack.
func (e *Engine) Apply(s *types.BattleState, targetID, statusID string, turns, stacks int, sourceID string) bool {
	target := s.Actors[targetID]
	tmpl := e.Statuses[statusID]
	switch {
	case tmpl == nil:
		state.Logf(s, "Nothing happens: %q is not a known status.", statusID)
		e.Logger.Warn("unknown status", zap.String("status", statusID), zap.String("target", targetID))
		return false
	case target == nil:
		e.Logger.Warn("status target missing", zap.String("status", statusID), zap.String("target", targetID))
		return false
	case !target.Alive:
		state.Logf(s, "%s is down; %s has no effect.", target.Name, e.name(statusID))
		return false
	case turns <= 0:
		state.Logf(s, "%s fades before it takes hold on %s.", e.name(statusID), target.Name)
		return false
	}

	maxStacks := max(1, tmpl.MaxStacks)
	stacks = min(max(1, stacks), maxStacks)

	i := state.FindStatus(target, statusID)
	if i < 0 {
		target.Statuses = append(target.Statuses, types.Status{ID: statusID, Turns: turns, Stacks: stacks, Source: sourceID})
		e.refreshMods(target)
		state.Logf(s, "%s is affected by %s.", target.Name, e.name(statusID))
		e.Fire(s, targetID, statusID, types.HookApply, nil)
		return true
	}

	st := &target.Statuses[i]
	switch tmpl.StackRule {
	case types.StackIgnore:
		state.Logf(s, "%s is already affected by %s.", target.Name, e.name(statusID))
		return false
	case types.StackCount, types.StackMagnitude:
		st.Stacks = min(st.Stacks+stacks, maxStacks)
		st.Turns = turns
		state.Logf(s, "%s's %s intensifies (x%d).", target.Name, e.name(statusID), st.Stacks)
	default:
		st.Stacks = stacks
		st.Turns = turns
		state.Logf(s, "%s's %s is renewed.", target.Name, e.name(statusID))
	}
	if sourceID != "" {
		st.Source = sourceID
	}
	e.refreshMods(target)
	e.Fire(s, targetID, statusID, types.HookApply, nil)
	return true
}

// TickStartOfTurn runs every active status's onTurnStart hooks.
func (e *Engine) TickStartOfTurn(s *types.BattleState, actorID string) {
	a := s.Actors[actorID]
	if a == nil || !a.Alive {
		return
	}
	for _, id := range statusIDs(a) {
		if !a.Alive {
			return
		}
		if state.FindStatus(a, id) >= 0 {
			e.Fire(s, actorID, id, types.HookTurnStart, nil)
		}
	}
}

// TickEndOfTurn runs every active status's onTurnEnd hooks, then counts
// its duration down. A status reaching 0 turns is removed, its shields
// are released, and onExpire fires. The actor's taunt also counts down.
func (e *Engine) TickEndOfTurn(s *types.BattleState, actorID string) {
	a := s.Actors[actorID]
	if a == nil || !a.Alive {
		return
	}
	for _, id := range statusIDs(a) {
		if state.FindStatus(a, id) < 0 {
			continue
		}
		e.Fire(s, actorID, id, types.HookTurnEnd, nil)
		if !a.Alive {
			return
		}
		i := state.FindStatus(a, id)
		if i < 0 {
			continue
		}
		a.Statuses[i].Turns--
		if a.Statuses[i].Turns <= 0 {
			st := e.remove(s, a, i)
			state.Logf(s, "%s wears off %s.", e.name(id), a.Name)
			e.fire(s, actorID, st, types.HookExpire, nil)
		}
	}
	e.tickTaunt(s, actorID)
}

// Cleanse removes every active status carrying any of tags, or every
// status when tags is empty, firing each removed status's onExpire.
// Returns the number removed.
func (e *Engine) Cleanse(s *types.BattleState, targetID string, tags []string) int {
	a := s.Actors[targetID]
	if a == nil {
		return 0
	}
	removed := 0
	for _, id := range statusIDs(a) {
		i := state.FindStatus(a, id)
		if i < 0 || !e.matchesTags(id, tags) {
			continue
		}
		st := e.remove(s, a, i)
		state.Logf(s, "%s is cleansed of %s.", a.Name, e.name(id))
		e.fire(s, targetID, st, types.HookExpire, nil)
		removed++
	}
	if removed == 0 {
		state.Logf(s, "%s has nothing to cleanse.", a.Name)
	}
	return removed
}

func (e *Engine) matchesTags(statusID string, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	tmpl := e.Statuses[statusID]
	if tmpl == nil {
		return false
	}
	for _, want := range tags {
		for _, have := range tmpl.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// remove drops the status at index i, releasing any shields it granted.
// Returns the removed instance.
func (e *Engine) remove(s *types.BattleState, a *types.Actor, i int) types.Status {
	st := a.Statuses[i]
	a.Statuses = append(a.Statuses[:i], a.Statuses[i+1:]...)
	e.ReleaseShields(s, a.ID, st.ID)
	e.refreshMods(a)
	return st
}

// refreshMods rebuilds the actor's status stat modifiers. stackMagnitude
// statuses scale their modifiers by stack count.
func (e *Engine) refreshMods(a *types.Actor) {
	var mods map[string]float64
	for _, st := range a.Statuses {
		tmpl := e.Statuses[st.ID]
		if tmpl == nil || len(tmpl.Mods) == 0 {
			continue
		}
		scale := 1.0
		if tmpl.StackRule == types.StackMagnitude {
			scale = float64(st.Stacks)
		}
		if mods == nil {
			mods = map[string]float64{}
		}
		for stat, v := range tmpl.Mods {
			mods[stat] += v * scale
		}
	}
	a.Mods = mods
}

func statusIDs(a *types.Actor) []string {
	ids := make([]string, len(a.Statuses))
	for i, st := range a.Statuses {
		ids[i] = st.ID
	}
	return ids
}
