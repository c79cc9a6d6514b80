package engine

import (
	"context"

	"github.com/nathoo/battlecore/engine/state"
)

// CurrentActor returns the id of the actor whose turn it is, or "".
func (e *Engine) CurrentActor() string {
	s := e.State
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.TurnOrder) {
		return ""
	}
	return s.TurnOrder[s.TurnIndex]
}

// AdvanceTurn moves to the next living actor in turn order, skipping the
// dead. Passing the end of the order starts a new turn. Returns the new
// current actor, or "" when nobody is alive.
func (e *Engine) AdvanceTurn() string {
	s := e.State
	n := len(s.TurnOrder)
	wrapped := false
	for i := 1; i <= n; i++ {
		next := s.TurnIndex + i
		if next >= n && !wrapped {
			wrapped = true
			s.Turn++
			state.Logf(s, "-- Turn %d --", s.Turn)
		}
		id := s.TurnOrder[next%n]
		if a := s.Actors[id]; a != nil && a.Alive {
			s.TurnIndex = next % n
			return id
		}
	}
	return ""
}

// TickStartOfTurn runs actorID's onTurnStart hooks. Returns false when the
// battle is over or the actor cannot act.
func (e *Engine) TickStartOfTurn(actorID string) bool {
	s := e.State
	if s.Ended != nil {
		return false
	}
	a := s.Actors[actorID]
	if a == nil || !a.Alive {
		return false
	}
	e.Status.TickStartOfTurn(s, actorID)
	e.checkOutcome()
	return s.Ended == nil && a.Alive
}

// TickEndOfTurn runs actorID's onTurnEnd hooks, counts its statuses and
// taunt down, and counts its cooldowns down. Returns false when the
// battle is over.
func (e *Engine) TickEndOfTurn(actorID string) bool {
	s := e.State
	if s.Ended != nil {
		return false
	}
	if a := s.Actors[actorID]; a != nil && a.Alive {
		e.Status.TickEndOfTurn(s, actorID)
	}
	for id, left := range s.Cooldowns[actorID] {
		state.SetCounter(s.Cooldowns, actorID, id, left-1)
	}
	e.checkOutcome()
	return s.Ended == nil
}

// beginTurn runs start-of-turn ticks until the current actor survives
// its own, advancing past any actor the tick kills.
func (e *Engine) beginTurn() {
	s := e.State
	for range s.TurnOrder {
		id := e.CurrentActor()
		if id == "" || s.Ended != nil {
			return
		}
		if a := s.Actors[id]; a == nil || !a.Alive {
			if e.AdvanceTurn() == "" {
				return
			}
			continue
		}
		if e.TickStartOfTurn(id) || s.Ended != nil {
			return
		}
		if e.AdvanceTurn() == "" {
			return
		}
	}
}

// finishTurn closes actorID's turn and opens the next one.
func (e *Engine) finishTurn(actorID string) {
	if !e.TickEndOfTurn(actorID) {
		return
	}
	if e.AdvanceTurn() == "" {
		return
	}
	e.beginTurn()
}

// settle runs AI turns until a player is up or the battle ends.
func (e *Engine) settle(ctx context.Context) {
	s := e.State
	for i := 0; i < maxAITurns && s.Ended == nil; i++ {
		id := e.CurrentActor()
		if id == "" || state.SideOf(s, id) == state.SidePlayer {
			return
		}
		e.enemyTurn(ctx, id)
		if s.Ended != nil {
			return
		}
		e.finishTurn(id)
	}
}

// maxAITurns bounds one settle call.
const maxAITurns = 1000
