package events

import (
	"testing"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/engine/status"
	"github.com/nathoo/battlecore/types"
)

func ctxValue(key string, scale float64) types.RuntimeValue {
	return types.RuntimeValue{Resolve: func(_, _ *types.Actor, ctx types.EvalContext) (float64, error) {
		return ctx[key] * scale, nil
	}}
}

func setup() (*status.Engine, *types.BattleState) {
	tables := &state.Tables{
		Balance: state.DefaultBalance(),
		Statuses: map[string]*types.RuntimeStatus{
			"vampiric": {ID: "vampiric", Name: "Vampiric", StackRule: types.StackRenew, MaxStacks: 1,
				Hooks: map[types.Hook][]types.RuntimeEffect{
					types.HookDealDamage: {{Kind: types.EffectHeal, Value: ctxValue("damage", 0.5)}},
				}},
			"thorns": {ID: "thorns", Name: "Thorns", StackRule: types.StackRenew, MaxStacks: 1,
				Hooks: map[types.Hook][]types.RuntimeEffect{
					types.HookTakeDamage: {{
						Kind:     types.EffectDamage,
						Value:    ctxValue("damage", 1),
						Selector: &types.Selector{Side: types.SideEnemy, Mode: types.ModeAll},
					}},
				}},
		},
	}
	hero := &types.Actor{ID: "hero", Name: "Hero", Alive: true, Stats: types.Stats{HP: 10, MaxHP: 40}}
	orc := &types.Actor{ID: "orc", Name: "Orc", Alive: true, Stats: types.Stats{HP: 50, MaxHP: 50}}
	s := state.NewBattle([]*types.Actor{hero}, []*types.Actor{orc}, nil, 1)
	return status.New(tables, nil), s
}

func TestDispatch_DealDamageHook(t *testing.T) {
	st, s := setup()
	st.Apply(s, "hero", "vampiric", 3, 1, "")

	Dispatch(Damage("hero", "orc", 8, ""), s, st)

	if hp := s.Actors["hero"].Stats.HP; hp != 14 {
		t.Errorf("hero HP = %d, want 14", hp)
	}
}

func TestDispatch_TakeDamageHookIsSinglePass(t *testing.T) {
	st, s := setup()
	st.Apply(s, "orc", "thorns", 3, 1, "")
	st.Apply(s, "hero", "thorns", 3, 1, "")

	Dispatch(Damage("hero", "orc", 4, ""), s, st)

	// The orc's thorns hit the hero for 4. The hero's own thorns do not
	// answer, because hook damage emits no events.
	if hp := s.Actors["hero"].Stats.HP; hp != 6 {
		t.Errorf("hero HP = %d, want 6", hp)
	}
	if hp := s.Actors["orc"].Stats.HP; hp != 50 {
		t.Errorf("orc HP = %d, want 50", hp)
	}
}

func TestDispatch_SkipsDeadAndUnknown(t *testing.T) {
	st, s := setup()
	st.Apply(s, "hero", "vampiric", 3, 1, "")
	s.Actors["hero"].Alive = false

	Dispatch(append(Damage("hero", "orc", 8, ""), types.Event{Type: "other"}), s, st)

	if hp := s.Actors["hero"].Stats.HP; hp != 10 {
		t.Errorf("dead hero HP = %d, want 10", hp)
	}
}
