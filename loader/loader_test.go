package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// writeContent creates a content directory holding the given files.
func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func loadArena(t *testing.T) *state.Tables {
	t.Helper()
	tables, err := Load("testdata/arena", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return tables
}

func TestLoad_Arena(t *testing.T) {
	tables := loadArena(t)

	if tables.Game.Title != "Test Arena" || tables.Game.Author != "Tester" {
		t.Errorf("Game = %+v", tables.Game)
	}
	if tables.Game.Intro != "Sand crunches underfoot." {
		t.Errorf("Intro = %q", tables.Game.Intro)
	}

	b := tables.Balance
	if b.CritMult != 2 {
		t.Errorf("CritMult = %g, want 2", b.CritMult)
	}
	if b.BaseHit != 0.9 || b.FleeChance != 0.5 {
		t.Errorf("unset balance values should keep defaults, got %+v", b)
	}
	if b.Elements["fire"]["ice"] != 2 {
		t.Errorf("Elements = %v", b.Elements)
	}
	if b.TagResist["armored"] != 0.5 {
		t.Errorf("TagResist = %v", b.TagResist)
	}

	for _, id := range []string{"slash", "fireball", "mend", "guard"} {
		if tables.Skills[id] == nil {
			t.Errorf("skill %q missing", id)
		}
	}
	for _, id := range []string{"potion", "bomb"} {
		if tables.Items[id] == nil {
			t.Errorf("item %q missing (yaml file)", id)
		}
	}
	if tables.Statuses["burn"] == nil {
		t.Error("status burn missing")
	}
	if tables.Enemies["slime"] == nil {
		t.Error("enemy slime missing")
	}
	if p, ok := tables.Players["hero"]; !ok || p.Stats.HP != 50 || len(p.Inventory) != 1 {
		t.Errorf("hero profile = %+v", p)
	}
}

func TestLoad_ArenaSkills(t *testing.T) {
	tables := loadArena(t)
	user := &types.Actor{Alive: true, Stats: types.Stats{Atk: 6}}
	target := &types.Actor{Alive: true, Stats: types.Stats{Def: 1, HP: 40, MaxHP: 40}}

	slash := tables.Skills["slash"]
	if slash.Kind != types.ActionSkill || slash.Name != "Slash" {
		t.Errorf("slash = %+v", slash.RuntimeAction)
	}
	if slash.Selector.Side != types.SideEnemy || slash.Selector.Mode != types.ModeSingle || slash.Selector.Count != 1 {
		t.Errorf("default selector = %+v", slash.Selector)
	}
	eff := slash.Effects[0]
	if !eff.CanMiss || !eff.CanCrit {
		t.Error("slash should be able to miss and crit")
	}
	if v, err := eff.Value.Resolve(user, target, nil); err != nil || v != 11 {
		t.Errorf("slash value = %g, %v; want 11", v, err)
	}
	weak := &types.Actor{Alive: true}
	armored := &types.Actor{Alive: true, Stats: types.Stats{Def: 9}}
	if v, _ := eff.Value.Resolve(weak, armored, nil); v != 1 {
		t.Errorf("clamped slash value = %g, want 1", v)
	}

	fireball := tables.Skills["fireball"]
	if fireball.Selector.Mode != types.ModeAll || fireball.Selector.Count != 0 {
		t.Errorf("fireball selector = %+v", fireball.Selector)
	}
	if fireball.Cost.MP != 5 || fireball.Element != "fire" {
		t.Errorf("fireball cost/element = %+v / %q", fireball.Cost, fireball.Element)
	}
	if len(fireball.Effects) != 2 || fireball.Effects[1].Kind != types.EffectApplyStatus ||
		fireball.Effects[1].Status != "burn" || fireball.Effects[1].Turns == nil || *fireball.Effects[1].Turns != 2 {
		t.Errorf("fireball effects = %+v", fireball.Effects)
	}

	mend := tables.Skills["mend"]
	if mend.Selector.Side != types.SideAlly || mend.Selector.Mode != types.ModeLowest || mend.Selector.OfWhat != "hpPct" {
		t.Errorf("mend selector = %+v", mend.Selector)
	}
	if mend.Cost.Cooldown != 2 || mend.Usable == nil || mend.Usable.Op != "not" {
		t.Errorf("mend cost/usable = %+v / %+v", mend.Cost, mend.Usable)
	}
	if v, _ := mend.Effects[0].Value.Resolve(user, target, nil); v != 10 {
		t.Errorf("mend heal = %g, want 25%% of 40", v)
	}

	guard := tables.Skills["guard"]
	if guard.Selector.Mode != types.ModeSelf || guard.Selector.Side != types.SideSelf {
		t.Errorf("guard selector = %+v", guard.Selector)
	}
	if guard.Effects[0].ShieldID != "guard" {
		t.Errorf("shield id = %q", guard.Effects[0].ShieldID)
	}
	taunt := guard.Effects[1]
	if taunt.Kind != types.EffectTaunt || taunt.Selector == nil || taunt.Selector.Mode != types.ModeRandom || taunt.Selector.Count != 1 {
		t.Errorf("taunt effect = %+v", taunt)
	}
}

func TestLoad_ArenaStatusAndEnemy(t *testing.T) {
	tables := loadArena(t)

	burn := tables.Statuses["burn"]
	if burn.StackRule != types.StackCount || burn.MaxStacks != 3 {
		t.Errorf("burn = %+v", burn)
	}
	hook := burn.Hooks[types.HookTurnEnd]
	if len(hook) != 1 {
		t.Fatalf("onTurnEnd = %v", hook)
	}
	if v, err := hook[0].Value.Resolve(&types.Actor{}, &types.Actor{}, types.EvalContext{"stacks": 2}); err != nil || v != 4 {
		t.Errorf("burn tick = %g, %v; want 4", v, err)
	}

	slime := tables.Enemies["slime"](2)
	if slime.Stats.HP != 30 || slime.Stats.MaxHP != 30 || slime.Stats.Atk != 6 || slime.Stats.Def != 1 {
		t.Errorf("level 2 slime stats = %+v", slime.Stats)
	}
	if slime.Stats.Level != 2 || slime.Stats.XP != 5 || slime.Stats.Gold != 3 {
		t.Errorf("level 2 slime rewards = %+v", slime.Stats)
	}
	if slime.Class != "ooze" || slime.AIPrefs["physical"] != 2 || len(slime.Loot) != 1 || slime.Loot[0].Chance != 0.5 {
		t.Errorf("slime = %+v", slime)
	}

	other := tables.Enemies["slime"](1)
	other.Skills[0] = "changed"
	if slime.Skills[0] != "slash" {
		t.Error("factory actors share their skill list")
	}
	if other.Stats.HP != 25 {
		t.Errorf("level 1 slime HP = %d, want 25", other.Stats.HP)
	}
}

func TestLoad_ArenaYAMLItems(t *testing.T) {
	tables := loadArena(t)

	potion := tables.Items["potion"]
	if !potion.Consumable || potion.Kind != types.ActionItem || potion.Selector.Mode != types.ModeSelf {
		t.Errorf("potion = %+v", potion.RuntimeAction)
	}

	bomb := tables.Items["bomb"]
	if bomb.Consumable {
		t.Error("bomb is marked non-consumable")
	}
	if len(bomb.Cost.Items) != 1 || bomb.Cost.Items[0] != (types.ItemQty{ID: "potion", Qty: 1}) {
		t.Errorf("bomb item cost = %v", bomb.Cost.Items)
	}
	big := &types.Actor{Stats: types.Stats{MaxHP: 100}}
	small := &types.Actor{Stats: types.Stats{MaxHP: 50}}
	if v, _ := bomb.Effects[0].Value.Resolve(nil, big, nil); v != 8 {
		t.Errorf("bomb vs 100 max HP = %g, want clamp to 8", v)
	}
	if v, _ := bomb.Effects[0].Value.Resolve(nil, small, nil); v != 5 {
		t.Errorf("bomb vs 50 max HP = %g, want 5", v)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"empty dir", map[string]string{"notes.txt": "hi"}, "no .lua or .yaml files"},
		{"lua syntax", map[string]string{"game.lua": `Game { title = "x"`}, "executing game.lua"},
		{"bad formula", map[string]string{"game.lua": `Skill "zap" { effects = { Damage "u.atk *" } }`}, `skill "zap"`},
		{"unknown function", map[string]string{"game.lua": `Skill "zap" { effects = { Damage "explode(2)" } }`}, "explode"},
		{"unknown mode", map[string]string{"game.lua": `Skill "zap" { target = { mode = "nearest" }, effects = { Damage(1) } }`}, `unknown mode "nearest"`},
		{"bad stat", map[string]string{"game.lua": `Skill "zap" { effects = { ModifyStat("luck", 1) } }`}, `unknown stat "luck"`},
		{"duplicate", map[string]string{"game.lua": `Skill "a" { effects = { Damage(1) } } Skill "a" { effects = { Damage(1) } }`}, `duplicate skill id "a"`},
		{"bad yaml field", map[string]string{"c.yaml": "skills:\n  - id: a\n    damage: 3\n"}, "decoding c.yaml"},
		{"lua effect typo", map[string]string{"game.lua": `Skill "zap" { effects = { Damage { formual = "u.atk * 3" } } }`}, "field formual not found"},
		{"lua status typo", map[string]string{"game.lua": `Status "stun" { stackrule = "ignore" }`}, `status "stun"`},
		{"lua enemy typo", map[string]string{"game.lua": `Enemy "rat" { base = { hp = 5 }, skils = { "bite" } }`}, "field skils not found"},
		{"drop chance", map[string]string{"game.lua": `Enemy "rat" { base = { hp = 5 }, drops = { { item = "x", chance = 2 } } }`}, "outside [0, 1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeContent(t, tt.files)
			_, err := Load(dir, nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	for _, src := range []string{
		`dofile("/etc/passwd")`,
		`loadstring("return 1")()`,
		`io.write("x")`,
		`os.exit(1)`,
		`math.randomseed(4)`,
		`local x = math.random()`,
	} {
		dir := writeContent(t, map[string]string{"game.lua": src})
		if _, err := Load(dir, nil); err == nil {
			t.Errorf("sandbox allowed %s", src)
		}
	}
}

func TestLoad_WarningsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dir := writeContent(t, map[string]string{"game.lua": `
		Enemy "rat" { name = "Rat", base = { hp = 5 }, skills = { "gnaw" } }
	`})

	tables, err := Load(dir, zap.New(core))
	if err != nil {
		t.Fatalf("warnings should not fail the load: %v", err)
	}
	if tables.Enemies["rat"] == nil {
		t.Error("rat missing")
	}

	var msgs []string
	for _, e := range logs.FilterMessage("content warning").All() {
		msgs = append(msgs, e.ContextMap()["warning"].(string))
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{"game has no title", `undefined skill "gnaw"`} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings %q missing %q", joined, want)
		}
	}
}

func TestSortedContentFiles(t *testing.T) {
	got := sortedContentFiles([]string{"b.lua", "game.lua", "a.lua"}, "game.lua")
	want := []string{"game.lua", "a.lua", "b.lua"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestLoad_DemoContent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tables, err := Load("../content/demo", zap.New(core))
	if err != nil {
		t.Fatalf("demo content: %v", err)
	}
	if n := logs.Len(); n != 0 {
		t.Errorf("demo content logged %d warnings: %v", n, logs.All())
	}
	if len(tables.Players) != 2 || len(tables.Enemies) != 3 || len(tables.Items) != 6 {
		t.Errorf("players=%d enemies=%d items=%d", len(tables.Players), len(tables.Enemies), len(tables.Items))
	}
	if got := tables.Skills["smite"].Selector.Mode; got != types.ModeCondition {
		t.Errorf("smite mode = %q, want condition", got)
	}
	if tables.Balance.Elements["holy"]["undead"] != 2 {
		t.Errorf("holy vs undead = %g", tables.Balance.Elements["holy"]["undead"])
	}
}
