// Package events implements single-pass dispatch of combat events to
// status hooks. Hook effects do not emit further events.
package events

import (
	"github.com/nathoo/battlecore/engine/status"
	"github.com/nathoo/battlecore/types"
)

// Event types emitted around damage application.
const (
	DamageDealt = "damage_dealt"
	DamageTaken = "damage_taken"
)

// hookFor maps an event type to the status hook it triggers.
var hookFor = map[string]types.Hook{
	DamageDealt: types.HookDealDamage,
	DamageTaken: types.HookTakeDamage,
}

// Damage builds the event pair for attackerID hitting targetID for amount
// (HP lost plus shield absorption).
func Damage(attackerID, targetID string, amount int, element string) []types.Event {
	return []types.Event{
		{Type: DamageDealt, Data: map[string]any{"actor": attackerID, "other": targetID, "damage": amount, "element": element}},
		{Type: DamageTaken, Data: map[string]any{"actor": targetID, "other": attackerID, "damage": amount, "element": element}},
	}
}

// Dispatch fires the matching hook on every status of each event's actor.
// Single pass: events produced while hooks run are not dispatched.
// Living actors only.
func Dispatch(events []types.Event, s *types.BattleState, st *status.Engine) {
	for _, ev := range events {
		hook, ok := hookFor[ev.Type]
		if !ok {
			continue
		}
		actorID, _ := ev.Data["actor"].(string)
		a := s.Actors[actorID]
		if a == nil || !a.Alive || len(a.Statuses) == 0 {
			continue
		}
		dmg, _ := ev.Data["damage"].(int)
		st.FireAll(s, actorID, hook, types.EvalContext{"damage": float64(dmg)})
		if s.Ended != nil {
			return
		}
	}
}
