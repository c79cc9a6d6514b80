package loader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nathoo/battlecore/engine/effects"
	"github.com/nathoo/battlecore/engine/rules"
	"github.com/nathoo/battlecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Resources accepted by resource effects.
var validResources = []string{"hp", "sta", "mp"}

// validate checks a content document for shape errors and dangling
// references. Malformed definitions are errors. References to ids that do
// not exist are warnings: the runtime logs and skips them, so content can
// be authored incrementally. Returns nil when there is nothing to report.
func validate(cfg *types.GameConfig) error {
	ve := &ValidationError{}
	ids := collectIDs(cfg, ve)

	if cfg.Game.Title == "" {
		ve.warnf("game has no title")
	}
	if cfg.Balance != nil {
		validateBalance(*cfg.Balance, ve)
	}

	for _, def := range cfg.Skills {
		validateAction("skill", def, ids, ve)
	}
	for _, def := range cfg.Items {
		validateAction("item", def.SkillDef, ids, ve)
	}

	for _, def := range cfg.Statuses {
		where := fmt.Sprintf("status %q", def.ID)
		if def.MaxStacks < 0 {
			ve.errorf("%s: maxStacks must not be negative", where)
		}
		if def.DurationTurns != nil && *def.DurationTurns < 0 {
			ve.errorf("%s: durationTurns must not be negative", where)
		}
		for _, stat := range slices.Sorted(maps.Keys(def.Mods)) {
			if stat != "atk" && stat != "def" {
				ve.errorf("%s: mods may only change atk or def, got %q", where, stat)
			}
		}
		for _, hook := range unknownHooks(def.Hooks) {
			ve.errorf("%s: unknown hook %q", where, hook)
		}
		for _, hook := range types.AllHooks {
			if effs, ok := def.Hooks[hook]; ok {
				validateEffects(fmt.Sprintf("%s %s", where, hook), effs, ids, ve)
			}
		}
	}

	for _, def := range cfg.Enemies {
		where := fmt.Sprintf("enemy %q", def.ID)
		if def.Base.HP <= 0 {
			ve.errorf("%s: base hp must be positive", where)
		}
		if len(def.Skills) == 0 {
			ve.warnf("%s has no skills and will only hesitate", where)
		}
		for _, sk := range def.Skills {
			if !ids.skills[sk] {
				ve.warnf("%s uses undefined skill %q", where, sk)
			}
		}
		for _, d := range def.Drops {
			if d.Chance < 0 || d.Chance > 1 {
				ve.errorf("%s: drop %q chance %g is outside [0, 1]", where, d.Item, d.Chance)
			}
			if !ids.items[d.Item] {
				ve.warnf("%s drops undefined item %q", where, d.Item)
			}
		}
	}

	for _, p := range cfg.Players {
		where := fmt.Sprintf("player %q", p.ID)
		if p.Stats.HP <= 0 {
			ve.errorf("%s: hp must be positive", where)
		}
		for _, sk := range p.Skills {
			if !ids.skills[sk] {
				ve.warnf("%s knows undefined skill %q", where, sk)
			}
		}
		for _, it := range p.Inventory {
			if !ids.items[it.ID] {
				ve.warnf("%s carries undefined item %q", where, it.ID)
			}
		}
	}

	if len(ve.Errors) == 0 && len(ve.Warnings) == 0 {
		return nil
	}
	return ve
}

// unknownHooks returns the keys of hooks that are not status hooks, sorted.
func unknownHooks(hooks map[types.Hook][]types.EffectDef) []types.Hook {
	var out []types.Hook
	for h := range hooks {
		if !slices.Contains(types.AllHooks, h) {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out
}

type idSet struct {
	skills, items, statuses map[string]bool
}

// collectIDs indexes every definition id, reporting empty and duplicate ids.
func collectIDs(cfg *types.GameConfig, ve *ValidationError) idSet {
	ids := idSet{skills: map[string]bool{}, items: map[string]bool{}, statuses: map[string]bool{}}
	seen := func(kind, id string, m map[string]bool) {
		switch {
		case id == "":
			ve.errorf("%s with an empty id", kind)
		case m[id]:
			ve.errorf("duplicate %s id %q", kind, id)
		}
		m[id] = true
	}
	for _, d := range cfg.Skills {
		seen("skill", d.ID, ids.skills)
	}
	for _, d := range cfg.Items {
		seen("item", d.ID, ids.items)
	}
	for _, d := range cfg.Statuses {
		seen("status", d.ID, ids.statuses)
	}
	enemies, players := map[string]bool{}, map[string]bool{}
	for _, d := range cfg.Enemies {
		seen("enemy", d.ID, enemies)
	}
	for _, d := range cfg.Players {
		seen("player", d.ID, players)
	}
	return ids
}

func validateBalance(b types.Balance, ve *ValidationError) {
	probs := []struct {
		name string
		v    float64
	}{
		{"baseHit", b.BaseHit}, {"dodgeFloor", b.DodgeFloor}, {"hitCeil", b.HitCeil},
		{"baseCrit", b.BaseCrit}, {"fleeChance", b.FleeChance},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 {
			ve.errorf("balance %s %g is outside [0, 1]", p.name, p.v)
		}
	}
	if b.DodgeFloor > b.HitCeil {
		ve.errorf("balance dodgeFloor %g is above hitCeil %g", b.DodgeFloor, b.HitCeil)
	}
	if b.CritMult < 1 {
		ve.warnf("balance critMult %g makes critical hits weaker", b.CritMult)
	}
}

func validateAction(kind string, def types.SkillDef, ids idSet, ve *ValidationError) {
	where := fmt.Sprintf("%s %q", kind, def.ID)
	if len(def.Effects) == 0 {
		ve.warnf("%s has no effects", where)
	}
	validateSelector(where+" target", def.Target, ve)
	validateCondition(where+" usable", def.Usable, ve)
	for _, it := range def.Cost.Items {
		if it.Qty <= 0 {
			ve.errorf("%s: item cost %q needs a positive qty", where, it.ID)
		}
		if !ids.items[it.ID] {
			ve.warnf("%s costs undefined item %q", where, it.ID)
		}
	}
	validateEffects(where, def.Effects, ids, ve)
}

func validateEffects(where string, effs []types.EffectDef, ids idSet, ve *ValidationError) {
	for i, eff := range effs {
		at := fmt.Sprintf("%s effect %d", where, i+1)
		if eff.Selector != nil {
			validateSelector(at+" selector", *eff.Selector, ve)
		}
		validateCondition(at+" onlyIf", eff.OnlyIf, ve)

		switch eff.Kind {
		case types.EffectApplyStatus:
			if eff.Status == "" {
				ve.errorf("%s: applyStatus needs a status id", at)
			} else if !ids.statuses[eff.Status] {
				ve.warnf("%s applies undefined status %q", at, eff.Status)
			}
		case types.EffectResource:
			if eff.Resource != "" && !slices.Contains(validResources, eff.Resource) {
				ve.errorf("%s: unknown resource %q", at, eff.Resource)
			}
		case types.EffectModifyStat:
			if !slices.Contains(effects.ModifiableStats, eff.Stat) {
				ve.errorf("%s: unknown stat %q", at, eff.Stat)
			}
		case types.EffectDamage, types.EffectHeal, types.EffectCleanseStatus, types.EffectShield,
			types.EffectTaunt, types.EffectFlee, types.EffectRevive:
		default:
			ve.errorf("%s: unknown effect kind %q", at, eff.Kind)
		}
	}
}

func validateSelector(where string, sel types.SelectorDef, ve *ValidationError) {
	if sel.Mode == types.ModeCondition && sel.Condition == nil {
		ve.errorf("%s: condition mode needs a condition", where)
	}
	if sel.Count != nil && *sel.Count < 0 {
		ve.errorf("%s: count must not be negative", where)
	}
	validateCondition(where, sel.Condition, ve)
}

func validateCondition(where string, c *types.ConditionDef, ve *ValidationError) {
	for _, err := range rules.ValidateCondition(c, where) {
		ve.Errors = append(ve.Errors, err.Error())
	}
}
