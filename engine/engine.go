// Package engine provides the battle orchestrator: the action executor,
// turn ticks, enemy AI, loot, and the Step() driver that turns one typed
// command into a player action followed by the enemies' replies.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nathoo/battlecore/engine/parser"
	"github.com/nathoo/battlecore/engine/resolve"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/engine/status"
	"github.com/nathoo/battlecore/telemetry"
	"github.com/nathoo/battlecore/types"
)

// Engine holds the compiled content tables and one battle's mutable state.
type Engine struct {
	Tables *state.Tables
	State  *types.BattleState
	Status *status.Engine
	Logger *zap.Logger
	Tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithTracer sets the tracer used for step and action spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.Tracer = t
		}
	}
}

// New creates an engine driving s with the given tables.
func New(t *state.Tables, s *types.BattleState, opts ...Option) *Engine {
	e := &Engine{
		Tables: t,
		State:  s,
		Logger: zap.NewNop(),
		Tracer: telemetry.NoopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if s != nil {
		state.EnsureMaps(s)
	}
	e.Status = status.New(t, e.Logger.Named("status"))
	return e
}

// EnemyRef names an enemy template and the level to build it at.
type EnemyRef struct {
	ID    string
	Level int
}

// StartBattle builds a battle from player profiles and enemy factories.
// The party's inventories are pooled into the shared inventory.
func StartBattle(t *state.Tables, playerIDs []string, enemies []EnemyRef, seed uint32) (*types.BattleState, error) {
	if len(playerIDs) == 0 {
		return nil, errors.New("start battle: no players")
	}
	if len(enemies) == 0 {
		return nil, errors.New("start battle: no enemies")
	}

	var players []*types.Actor
	var inventory []types.ItemQty
	for _, id := range playerIDs {
		p, ok := t.Players[id]
		if !ok {
			return nil, fmt.Errorf("start battle: unknown player %q", id)
		}
		players = append(players, state.PlayerActor(p))
		inventory = append(inventory, p.Inventory...)
	}

	var foes []*types.Actor
	for _, ref := range enemies {
		factory, ok := t.Enemies[ref.ID]
		if !ok {
			return nil, fmt.Errorf("start battle: unknown enemy %q", ref.ID)
		}
		foes = append(foes, factory(max(1, ref.Level)))
	}

	s := state.NewBattle(players, foes, nil, seed)
	for _, it := range inventory {
		state.AddItem(s, it.ID, it.Qty)
	}
	return s, nil
}

// Begin opens the battle: it logs the matchup, runs the first actor's
// start-of-turn tick, and lets enemies act if they go first. It does
// nothing on a battle that already has a log. Returns the lines added.
func (e *Engine) Begin() []string {
	return e.begin(context.Background())
}

func (e *Engine) begin(ctx context.Context) []string {
	s := e.State
	if len(s.Log) > 0 {
		return nil
	}
	if e.Tables.Game.Intro != "" {
		state.Logf(s, "%s", e.Tables.Game.Intro)
	}
	state.Logf(s, "A battle begins: %s vs %s!", state.JoinNames(s, s.Players), state.JoinNames(s, s.Enemies))
	state.Logf(s, "-- Turn %d --", s.Turn)
	e.beginTurn()
	e.settle(ctx)
	return append([]string(nil), s.Log...)
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	return e.StepContext(context.Background(), input)
}

// StepContext is Step with a parent context for tracing.
func (e *Engine) StepContext(ctx context.Context, input string) types.Result {
	ctx, span := e.Tracer.Start(ctx, "battle.step")
	defer span.End()

	var result types.Result
	s := e.State
	start := len(s.Log)
	if start == 0 {
		e.begin(ctx)
	}
	output := func(extra ...string) types.Result {
		result.Output = append(result.Output, s.Log[start:]...)
		result.Output = append(result.Output, extra...)
		return result
	}

	// 0. Battle over: block every command.
	if s.Ended != nil {
		return output(fmt.Sprintf("The battle is over (%s). Use /load to restore a save or /quit to exit.", s.Ended.Reason))
	}

	// 1. Parse input.
	intent := parser.Parse(input)
	span.SetAttributes(attribute.String("verb", intent.Verb), attribute.Int("turn", s.Turn))
	if intent.Verb == "" {
		return output("What do you do?")
	}

	actorID := e.CurrentActor()
	actor := s.Actors[actorID]
	if actor == nil || state.SideOf(s, actorID) != state.SidePlayer {
		return output("It is not your turn.")
	}
	span.SetAttributes(attribute.String("actor", actorID))

	// 2. Informational verbs do not use the turn.
	switch intent.Verb {
	case "look":
		return output(e.Describe()...)
	case "skills":
		return output(e.describeSkills(actor)...)
	case "items":
		return output(e.describeItems()...)
	}

	// 3. Resolve and run the player's action.
	acted := false
	switch intent.Verb {
	case "wait":
		state.Logf(s, "%s waits.", actor.Name)
		acted = true

	case "flee":
		e.Status.Flee(s, actorID, 0)
		acted = true

	case "use", "attack":
		action, targets, err := e.resolveSkill(actor, intent)
		if err != nil {
			return output(err.Error())
		}
		res := e.UseContext(ctx, action, actorID, targets)
		if res.OK {
			result.Actions = append(result.Actions, action.ID)
		}
		acted = res.OK

	case "item":
		action, targets, err := e.resolveItem(intent)
		if err != nil {
			return output(err.Error())
		}
		res := e.UseContext(ctx, action, actorID, targets)
		if res.OK {
			result.Actions = append(result.Actions, action.ID)
		}
		acted = res.OK

	default:
		return output(fmt.Sprintf("I don't know how to %q in a fight. Try: use, attack, item, wait, flee, look.", intent.Verb))
	}

	// 4. A completed action ends the turn; enemies reply until a player
	// is up again.
	if acted && s.Ended == nil {
		e.finishTurn(actorID)
		e.settle(ctx)
	}
	if s.Ended != nil {
		span.SetAttributes(attribute.String("ended", string(s.Ended.Reason)))
	}
	return output()
}

// resolveSkill maps "use <skill> [on <target>]" or "attack [<target>]"
// to a compiled skill and explicit targets. A bare attack uses the
// actor's first skill.
func (e *Engine) resolveSkill(actor *types.Actor, intent types.Intent) (*types.RuntimeAction, []string, error) {
	var skillID string
	switch {
	case intent.Object != "":
		id, err := resolve.Skill(e.Tables, actor, intent.Object)
		if err != nil {
			return nil, nil, err
		}
		skillID = id
	case intent.Verb == "attack" && len(actor.Skills) > 0:
		skillID = actor.Skills[0]
	default:
		return nil, nil, errors.New(`use what? (try "skills")`)
	}

	sk := e.Tables.Skills[skillID]
	if sk == nil {
		return nil, nil, &resolve.NotFoundError{Kind: "skill", Name: skillID}
	}
	targets, err := e.resolveTarget(actor, &sk.RuntimeAction, intent.Target)
	return &sk.RuntimeAction, targets, err
}

// resolveItem maps "item <item> [on <target>]" to a compiled item.
func (e *Engine) resolveItem(intent types.Intent) (*types.RuntimeAction, []string, error) {
	if intent.Object == "" {
		return nil, nil, errors.New(`use which item? (try "items")`)
	}
	id, err := resolve.Item(e.Tables, e.State, intent.Object)
	if err != nil {
		return nil, nil, err
	}
	item := e.Tables.Items[id]
	if item == nil {
		return nil, nil, &resolve.NotFoundError{Kind: "item", Name: id}
	}
	targets, err := e.resolveTarget(e.State.Actors[e.CurrentActor()], &item.RuntimeAction, intent.Target)
	return &item.RuntimeAction, targets, err
}

// resolveTarget turns a typed target name into explicit target ids. With
// no name, a taunted actor is pointed at its taunter for single-enemy
// actions; otherwise the selector decides.
func (e *Engine) resolveTarget(actor *types.Actor, action *types.RuntimeAction, name string) ([]string, error) {
	if name != "" {
		id, err := resolve.Actor(e.State, name)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	}
	if src, ok := status.TauntSource(e.State, actor.ID); ok && forcedByTaunt(action.Selector) {
		return []string{src}, nil
	}
	return nil, nil
}

// Describe renders the battlefield: whose turn it is and every actor's
// vitals, statuses and shields.
func (e *Engine) Describe() []string {
	s := e.State
	out := []string{fmt.Sprintf("Turn %d. %s to act.", s.Turn, state.DisplayName(s, e.CurrentActor()))}
	out = append(out, "Party:")
	for _, id := range s.Players {
		out = append(out, "  "+e.describeActor(id))
	}
	out = append(out, "Enemies:")
	for _, id := range s.Enemies {
		out = append(out, "  "+e.describeActor(id))
	}
	return out
}

func (e *Engine) describeActor(id string) string {
	s := e.State
	a := s.Actors[id]
	if a == nil {
		return id
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  HP %d/%d", a.Name, a.Stats.HP, a.Stats.MaxHP)
	if a.Stats.MaxSta > 0 {
		fmt.Fprintf(&b, "  STA %d/%d", a.Stats.Sta, a.Stats.MaxSta)
	}
	if a.Stats.MaxMP > 0 {
		fmt.Fprintf(&b, "  MP %d/%d", a.Stats.MP, a.Stats.MaxMP)
	}
	switch {
	case state.HasTag(a, "fled"):
		b.WriteString("  (fled)")
	case !a.Alive:
		b.WriteString("  (down)")
	}
	for _, st := range a.Statuses {
		name := st.ID
		if tmpl := e.Tables.Statuses[st.ID]; tmpl != nil && tmpl.Name != "" {
			name = tmpl.Name
		}
		if st.Stacks > 1 {
			fmt.Fprintf(&b, "  [%s x%d, %dt]", name, st.Stacks, st.Turns)
		} else {
			fmt.Fprintf(&b, "  [%s, %dt]", name, st.Turns)
		}
	}
	if total := status.ShieldTotal(s, id); total > 0 {
		fmt.Fprintf(&b, "  shield %d", total)
	}
	return b.String()
}

func (e *Engine) describeSkills(actor *types.Actor) []string {
	if len(actor.Skills) == 0 {
		return []string{fmt.Sprintf("%s knows no skills.", actor.Name)}
	}
	out := []string{fmt.Sprintf("%s's skills:", actor.Name)}
	for _, id := range actor.Skills {
		sk := e.Tables.Skills[id]
		if sk == nil {
			continue
		}
		line := "  " + actionName(&sk.RuntimeAction)
		if c := costText(sk.Cost); c != "" {
			line += " (" + c + ")"
		}
		if cd := state.Counter(e.State.Cooldowns, actor.ID, id); cd > 0 {
			line += fmt.Sprintf(" [ready in %d]", cd)
		}
		if n := sk.Cost.Charges; n > 0 {
			line += fmt.Sprintf(" [%d/%d charges]", n-state.Counter(e.State.Charges, actor.ID, id), n)
		}
		out = append(out, line)
	}
	return out
}

func (e *Engine) describeItems() []string {
	inv := e.State.Inventory
	if len(inv) == 0 {
		return []string{"The bag is empty."}
	}
	parts := make([]string, len(inv))
	for i, it := range inv {
		parts[i] = fmt.Sprintf("%s x%d", e.itemName(it.ID), it.Qty)
	}
	return []string{"Items: " + strings.Join(parts, ", ") + "."}
}

func costText(c types.Cost) string {
	var parts []string
	if c.Sta > 0 {
		parts = append(parts, fmt.Sprintf("%d STA", c.Sta))
	}
	if c.MP > 0 {
		parts = append(parts, fmt.Sprintf("%d MP", c.MP))
	}
	if c.Cooldown > 0 {
		parts = append(parts, fmt.Sprintf("cooldown %d", c.Cooldown))
	}
	return strings.Join(parts, ", ")
}
