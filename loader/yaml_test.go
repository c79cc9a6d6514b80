package loader

import (
	"testing"

	"github.com/nathoo/battlecore/types"
)

const yamlContent = `
game:
  title: Goblin Camp
balance:
  critMult: 3
  tagResist:
    armored: 0.75
skills:
  - id: stab
    name: Stab
    tags: [physical]
    target: { mode: lowest, ofWhat: hp }
    cost: { sta: 2 }
    effects:
      - kind: damage
        formula: u.atk - t.def
        min: 1
        canMiss: true
      - kind: applyStatus
        status: bleed
        turns: 2
        onlyIf:
          op: not
          children:
            - { op: test, field: tag, cmp: in, value: [construct, undead] }
statuses:
  - id: bleed
    stackRule: stackMagnitude
    maxStacks: 5
    durationTurns: 3
    mods: { def: -1 }
    resist: { fire: 1.5 }
    hooks:
      onTurnEnd:
        - { kind: damage, amount: 1 }
enemies:
  - id: goblin
    name: Goblin
    base: { hp: 12, atk: 3 }
    scale: { hp: 2 }
    skills: [stab]
players:
  - id: ranger
    name: Ranger
    stats: { hp: 30, sta: 12, atk: 5, def: 2 }
    skills: [stab]
    inventory:
      - { id: arrow, qty: 20 }
`

func TestLoadYAML(t *testing.T) {
	cfg, err := LoadYAML([]byte(yamlContent))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	if cfg.Game.Title != "Goblin Camp" {
		t.Errorf("Title = %q", cfg.Game.Title)
	}
	if cfg.Balance == nil {
		t.Fatal("balance missing")
	}
	if cfg.Balance.CritMult != 3 || cfg.Balance.BaseHit != 0.9 || cfg.Balance.TagResist["armored"] != 0.75 {
		t.Errorf("balance = %+v", cfg.Balance)
	}

	stab := cfg.Skills[0]
	if stab.Target.Mode != types.ModeLowest || stab.Target.OfWhat != "hp" || stab.Cost.Sta != 2 {
		t.Errorf("stab = %+v", stab)
	}
	if eff := stab.Effects[0]; eff.Formula != "u.atk - t.def" || eff.Min == nil || *eff.Min != 1 || !eff.CanMiss {
		t.Errorf("stab damage = %+v", eff)
	}
	onlyIf := stab.Effects[1].OnlyIf
	if onlyIf == nil || onlyIf.Op != "not" || len(onlyIf.Children) != 1 || onlyIf.Children[0].Field != "tag" {
		t.Errorf("onlyIf = %+v", onlyIf)
	}

	bleed := cfg.Statuses[0]
	if bleed.StackRule != types.StackMagnitude || bleed.DurationTurns == nil || *bleed.DurationTurns != 3 {
		t.Errorf("bleed = %+v", bleed)
	}
	if bleed.Mods["def"] != -1 || bleed.Resist["fire"] != 1.5 || len(bleed.Hooks[types.HookTurnEnd]) != 1 {
		t.Errorf("bleed mods/resist/hooks = %+v", bleed)
	}

	if cfg.Enemies[0].Base.HP != 12 || cfg.Enemies[0].Scale.HP != 2 {
		t.Errorf("goblin = %+v", cfg.Enemies[0])
	}
	if p := cfg.Players[0]; p.Stats.Sta != 12 || p.Inventory[0].Qty != 20 {
		t.Errorf("ranger = %+v", p)
	}

	tables, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if sel := tables.Skills["stab"].Selector; sel.Count != 1 || sel.Side != types.SideEnemy {
		t.Errorf("stab selector = %+v", sel)
	}
	if g := tables.Enemies["goblin"](3); g.Stats.HP != 18 {
		t.Errorf("level 3 goblin HP = %d, want 18", g.Stats.HP)
	}
}

func TestLoadYAML_NoBalanceBlock(t *testing.T) {
	cfg, err := LoadYAML([]byte("game:\n  title: Quiet\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Balance != nil {
		t.Errorf("Balance = %+v, want nil so earlier files keep theirs", cfg.Balance)
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	cfg, err := LoadYAML(nil)
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if len(cfg.Skills) != 0 {
		t.Errorf("skills = %v", cfg.Skills)
	}
}

func TestLoadYAML_Errors(t *testing.T) {
	for _, doc := range []string{
		"skills:\n  - id: a\n    power: 3\n",
		"skills: {not: a list}\n",
		"balance:\n  critMult: lots\n",
		"game: [\n",
	} {
		if _, err := LoadYAML([]byte(doc)); err == nil {
			t.Errorf("LoadYAML(%q) succeeded, want an error", doc)
		}
	}
}
