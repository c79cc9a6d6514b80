package status

import (
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// ApplyTaunt forces targetID to aim at sourceID for turns turns. The
// resolver does not enforce it; AI target choice reads it via TauntSource.
func (e *Engine) ApplyTaunt(s *types.BattleState, targetID, sourceID string, turns int) bool {
	target := s.Actors[targetID]
	if target == nil || !target.Alive {
		return false
	}
	if turns <= 0 {
		state.Logf(s, "%s shrugs off the taunt.", target.Name)
		return false
	}
	if s.Taunts == nil {
		s.Taunts = map[string]types.Taunt{}
	}
	s.Taunts[targetID] = types.Taunt{Source: sourceID, Turns: turns}
	state.Logf(s, "%s is taunted by %s!", target.Name, state.DisplayName(s, sourceID))
	return true
}

// TauntSource returns the living actor forcing actorID's attention.
func TauntSource(s *types.BattleState, actorID string) (string, bool) {
	t, ok := s.Taunts[actorID]
	if !ok || t.Turns <= 0 {
		return "", false
	}
	src := s.Actors[t.Source]
	if src == nil || !src.Alive {
		return "", false
	}
	return t.Source, true
}

func (e *Engine) tickTaunt(s *types.BattleState, actorID string) {
	t, ok := s.Taunts[actorID]
	if !ok {
		return
	}
	t.Turns--
	if t.Turns <= 0 {
		delete(s.Taunts, actorID)
		state.Logf(s, "%s is no longer taunted.", state.DisplayName(s, actorID))
		return
	}
	s.Taunts[actorID] = t
}
