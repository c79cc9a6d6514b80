package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

func flat(v float64) types.RuntimeValue {
	return types.RuntimeValue{
		Spec:    types.ValueSpec{Amount: v},
		Resolve: func(_, _ *types.Actor, _ types.EvalContext) (float64, error) { return v, nil },
	}
}

var (
	singleEnemy = types.Selector{Side: types.SideEnemy, Mode: types.ModeSingle, Count: 1}
	self        = types.Selector{Side: types.SideSelf, Mode: types.ModeSelf}
)

func skill(id, name string, sel types.Selector, effs ...types.RuntimeEffect) *types.RuntimeSkill {
	return &types.RuntimeSkill{RuntimeAction: types.RuntimeAction{
		ID: id, Name: name, Kind: types.ActionSkill, Selector: sel, Effects: effs, AIWeight: 1,
	}}
}

func damage(v float64) types.RuntimeEffect {
	return types.RuntimeEffect{Kind: types.EffectDamage, Value: flat(v)}
}

func heal(v float64) types.RuntimeEffect {
	return types.RuntimeEffect{Kind: types.EffectHeal, Value: flat(v)}
}

// testTables builds a small compiled content set.
func testTables() *state.Tables {
	t := &state.Tables{
		Game:    types.GameMeta{Title: "Test Arena"},
		Balance: state.DefaultBalance(),
		Skills: map[string]*types.RuntimeSkill{
			"smite":   skill("smite", "Smite", singleEnemy, damage(100)),
			"jab":     skill("jab", "Jab", singleEnemy, damage(5)),
			"scatter": skill("scatter", "Scatter Shot", types.Selector{Side: types.SideEnemy, Mode: types.ModeRandom, Count: 1}, damage(5)),
			"heal":    skill("heal", "Heal", self, heal(20)),
			"bash":    skill("bash", "Bash", singleEnemy, damage(10)),
			"bomb":    skill("bomb", "Bomb", singleEnemy, damage(10)),
			"drain": skill("drain", "Drain", singleEnemy,
				damage(10),
				types.RuntimeEffect{Kind: types.EffectHeal, Value: flat(5), Selector: &self},
			),
		},
		Items: map[string]*types.RuntimeItem{
			"potion": {RuntimeAction: types.RuntimeAction{
				ID: "potion", Name: "Potion", Kind: types.ActionItem, Selector: self,
				Effects: []types.RuntimeEffect{heal(20)}, Consumable: true,
			}},
		},
		Statuses: map[string]*types.RuntimeStatus{
			"stun": {ID: "stun", Name: "Stun", StackRule: types.StackIgnore, MaxStacks: 1},
			"vampiric": {
				ID: "vampiric", Name: "Vampiric", StackRule: types.StackRenew, MaxStacks: 1,
				Hooks: map[types.Hook][]types.RuntimeEffect{
					types.HookDealDamage: {{
						Kind: types.EffectHeal,
						Value: types.RuntimeValue{Resolve: func(_, _ *types.Actor, ctx types.EvalContext) (float64, error) {
							return ctx["damage"] / 2, nil
						}},
					}},
				},
			},
		},
		Players: map[string]types.Profile{},
		Enemies: map[string]state.EnemyFactory{},
	}
	t.Skills["heal"].Cost = types.Cost{MP: 10}
	t.Skills["bash"].Cost = types.Cost{Sta: 1, Cooldown: 2}
	t.Skills["bomb"].Cost = types.Cost{Charges: 1}
	return t
}

func hero(skills ...string) *types.Actor {
	return &types.Actor{
		ID: "hero", Name: "Hero", Alive: true, Skills: skills,
		Stats: types.Stats{HP: 40, MaxHP: 40, Sta: 10, MaxSta: 10, MP: 5, MaxMP: 20, Atk: 5, Def: 2, Level: 1},
	}
}

func foe(id, name string, hp int, skills ...string) *types.Actor {
	return &types.Actor{
		ID: id, Name: name, Alive: true, Skills: skills,
		Stats: types.Stats{HP: hp, MaxHP: hp, Atk: 4, Def: 1, Level: 1},
	}
}

func newEngine(t *testing.T, tables *state.Tables, players, enemies []*types.Actor, seed uint32) *Engine {
	t.Helper()
	s := state.NewBattle(players, enemies, nil, seed)
	return New(tables, s)
}

func logHas(lines []string, sub string) bool {
	for _, line := range lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}
