package loader

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/nathoo/battlecore/engine/effects"
	"github.com/nathoo/battlecore/engine/formula"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// Compile turns a content document into runtime tables in one pass. Every
// formula is compiled here, so a malformed expression fails the load with
// the owning skill, item or status id in the error. Compile has no side
// effects and the result is immutable.
func Compile(cfg *types.GameConfig) (*state.Tables, error) {
	t := &state.Tables{
		Game:      cfg.Game,
		Balance:   compileBalance(cfg.Balance),
		Skills:    map[string]*types.RuntimeSkill{},
		Items:     map[string]*types.RuntimeItem{},
		Statuses:  map[string]*types.RuntimeStatus{},
		Enemies:   map[string]state.EnemyFactory{},
		EnemyDefs: map[string]types.EnemyDef{},
		Players:   map[string]types.Profile{},
	}

	for _, def := range cfg.Skills {
		a, err := compileAction(def, types.ActionSkill)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", def.ID, err)
		}
		t.Skills[def.ID] = &types.RuntimeSkill{RuntimeAction: a}
	}

	for _, def := range cfg.Items {
		a, err := compileAction(def.SkillDef, types.ActionItem)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", def.ID, err)
		}
		a.Consumable = def.Consumable == nil || *def.Consumable
		t.Items[def.ID] = &types.RuntimeItem{RuntimeAction: a}
	}

	for _, def := range cfg.Statuses {
		st, err := compileStatus(def)
		if err != nil {
			return nil, fmt.Errorf("status %q: %w", def.ID, err)
		}
		t.Statuses[def.ID] = st
	}

	for _, def := range cfg.Enemies {
		t.Enemies[def.ID] = enemyFactory(def)
		t.EnemyDefs[def.ID] = def
	}

	for _, p := range cfg.Players {
		if p.Name == "" {
			p.Name = p.ID
		}
		p.Skills = slices.Clone(p.Skills)
		p.Tags = slices.Clone(p.Tags)
		p.Inventory = slices.Clone(p.Inventory)
		t.Players[p.ID] = p
	}
	return t, nil
}

// compileBalance fills a missing balance block with the defaults and
// guarantees non-nil lookup maps.
func compileBalance(b *types.Balance) types.Balance {
	if b == nil {
		return state.DefaultBalance()
	}
	out := *b
	out.Elements = map[string]map[string]float64{}
	for atk, row := range b.Elements {
		out.Elements[atk] = cloneMap(row)
	}
	out.TagResist = cloneMap(b.TagResist)
	if out.TagResist == nil {
		out.TagResist = map[string]float64{}
	}
	return out
}

func compileAction(def types.SkillDef, kind types.ActionKind) (types.RuntimeAction, error) {
	sel, err := compileSelector(def.Target)
	if err != nil {
		return types.RuntimeAction{}, fmt.Errorf("target: %w", err)
	}
	effs, err := compileEffects(def.Effects)
	if err != nil {
		return types.RuntimeAction{}, err
	}

	a := types.RuntimeAction{
		ID:       def.ID,
		Name:     def.Name,
		Kind:     kind,
		Tags:     slices.Clone(def.Tags),
		Element:  def.Element,
		Selector: sel,
		Effects:  effs,
		Cost: types.Cost{
			Sta:      max(0, def.Cost.Sta),
			MP:       max(0, def.Cost.MP),
			Cooldown: max(0, def.Cost.Cooldown),
			Charges:  max(0, def.Cost.Charges),
			Items:    slices.Clone(def.Cost.Items),
		},
		Usable:   def.Usable,
		AIWeight: def.AIWeight,
	}
	if a.Name == "" {
		a.Name = def.ID
	}
	if a.AIWeight == 0 {
		a.AIWeight = 1
	}
	return a, nil
}

// compileSelector normalizes a selector: side defaults to enemy, mode to
// single, and count to 1 for the single-pick modes and uncapped otherwise.
func compileSelector(def types.SelectorDef) (types.Selector, error) {
	sel := types.Selector{
		Side:        def.Side,
		Mode:        def.Mode,
		OfWhat:      def.OfWhat,
		IncludeDead: def.IncludeDead,
		Condition:   def.Condition,
	}
	switch {
	case sel.Side == "" && sel.Mode == types.ModeSelf:
		sel.Side = types.SideSelf
	case sel.Side == "":
		sel.Side = types.SideEnemy
	}
	if sel.Mode == "" {
		sel.Mode = types.ModeSingle
		if sel.Side == types.SideSelf {
			sel.Mode = types.ModeSelf
		}
	}
	if sel.OfWhat == "" {
		sel.OfWhat = "hpPct"
	}

	switch sel.Side {
	case types.SideSelf, types.SideAlly, types.SideEnemy, types.SideAny:
	default:
		return sel, fmt.Errorf("unknown side %q", sel.Side)
	}
	switch sel.Mode {
	case types.ModeSingle, types.ModeRandom, types.ModeLowest, types.ModeHighest:
		sel.Count = 1
	case types.ModeSelf, types.ModeAll:
	case types.ModeCondition:
		if sel.Condition == nil {
			return sel, errors.New("condition mode needs a condition")
		}
	default:
		return sel, fmt.Errorf("unknown mode %q", sel.Mode)
	}
	if def.Count != nil {
		sel.Count = max(0, *def.Count)
	}
	if !state.IsMetric(sel.OfWhat) {
		return sel, fmt.Errorf("unknown ranking metric %q", sel.OfWhat)
	}
	return sel, nil
}

func compileEffects(defs []types.EffectDef) ([]types.RuntimeEffect, error) {
	out := make([]types.RuntimeEffect, 0, len(defs))
	for i, def := range defs {
		eff, err := compileEffect(def)
		if err != nil {
			return nil, fmt.Errorf("effect %d (%s): %w", i+1, def.Kind, err)
		}
		out = append(out, eff)
	}
	return out, nil
}

func compileEffect(def types.EffectDef) (types.RuntimeEffect, error) {
	if !slices.Contains(types.AllEffectKinds, def.Kind) {
		return types.RuntimeEffect{}, fmt.Errorf("unknown effect kind %q", def.Kind)
	}
	value, err := compileValue(def.ValueSpec)
	if err != nil {
		return types.RuntimeEffect{}, err
	}

	eff := types.RuntimeEffect{
		Kind:     def.Kind,
		Value:    value,
		OnlyIf:   def.OnlyIf,
		Element:  def.Element,
		Resource: def.Resource,
		Status:   def.Status,
		Turns:    def.Turns,
		Stacks:   def.Stacks,
		Tags:     slices.Clone(def.Tags),
		ShieldID: def.ShieldID,
		Replace:  def.Replace,
		Stat:     def.Stat,
		CanMiss:  def.CanMiss,
		CanCrit:  def.CanCrit,
	}
	if def.Selector != nil {
		sel, err := compileSelector(*def.Selector)
		if err != nil {
			return types.RuntimeEffect{}, fmt.Errorf("selector: %w", err)
		}
		eff.Selector = &sel
	}
	if eff.Kind == types.EffectResource && eff.Resource == "" {
		eff.Resource = "hp"
	}
	return eff, nil
}

// valueKind reports which of the three value forms a spec uses. A formula
// wins over a percent, and a percent over a flat amount.
func valueKind(spec types.ValueSpec) types.ValueKind {
	switch {
	case spec.Formula != "":
		return types.ValueFormula
	case spec.Percent != 0:
		return types.ValuePercent
	default:
		return types.ValueFlat
	}
}

// compileValue bakes a value spec into a resolver. The min/max clamp is
// applied to the resolved number, and a non-finite result becomes 0.
func compileValue(spec types.ValueSpec) (types.RuntimeValue, error) {
	var base types.Resolver
	switch valueKind(spec) {
	case types.ValueFormula:
		prog, err := formula.Compile(spec.Formula)
		if err != nil {
			return types.RuntimeValue{}, err
		}
		base = prog.Eval

	case types.ValuePercent:
		of := spec.Of
		if of == "" {
			of = "maxHp"
		}
		switch of {
		case "maxHp", "maxSta", "maxMp":
		default:
			return types.RuntimeValue{}, fmt.Errorf("percent of unknown stat %q", spec.Of)
		}
		frac := spec.Percent / 100
		base = func(_, target *types.Actor, _ types.EvalContext) (float64, error) {
			if target == nil {
				return 0, errors.New("percent value needs a target")
			}
			m, _ := state.Stat(target, of)
			return frac * float64(m), nil
		}

	case types.ValueFlat:
		amount := spec.Amount
		base = func(_, _ *types.Actor, _ types.EvalContext) (float64, error) {
			return amount, nil
		}
	}

	var lo, hi = math.Inf(-1), math.Inf(1)
	if spec.Min != nil {
		lo = *spec.Min
	}
	if spec.Max != nil {
		hi = *spec.Max
	}
	if lo > hi {
		return types.RuntimeValue{}, fmt.Errorf("min %g is greater than max %g", lo, hi)
	}

	resolve := func(user, target *types.Actor, ctx types.EvalContext) (float64, error) {
		v, err := base(user, target, ctx)
		if err != nil {
			return 0, err
		}
		v = math.Max(lo, math.Min(hi, v))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil
		}
		return v, nil
	}
	return types.RuntimeValue{Spec: spec, Resolve: resolve}, nil
}

func compileStatus(def types.StatusDef) (*types.RuntimeStatus, error) {
	st := &types.RuntimeStatus{
		ID:            def.ID,
		Name:          def.Name,
		StackRule:     def.StackRule,
		MaxStacks:     def.MaxStacks,
		DurationTurns: def.DurationTurns,
		Tags:          slices.Clone(def.Tags),
		Mods:          cloneMap(def.Mods),
		Resist:        cloneMap(def.Resist),
		Hooks:         map[types.Hook][]types.RuntimeEffect{},
	}
	if st.Name == "" {
		st.Name = def.ID
	}
	switch st.StackRule {
	case "":
		st.StackRule = types.StackRenew
	case types.StackIgnore, types.StackRenew, types.StackCount, types.StackMagnitude:
	default:
		return nil, fmt.Errorf("unknown stack rule %q", st.StackRule)
	}
	if st.MaxStacks < 1 {
		st.MaxStacks = 1
	}

	if bad := unknownHooks(def.Hooks); len(bad) > 0 {
		return nil, fmt.Errorf("unknown hook %q", bad[0])
	}
	for _, hook := range types.AllHooks {
		defs, ok := def.Hooks[hook]
		if !ok {
			continue
		}
		effs, err := compileEffects(defs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", hook, err)
		}
		st.Hooks[hook] = effs
	}
	return st, nil
}

// enemyFactory returns a builder computing base + scale*level for every
// stat. Each call clones the definition's lists so actors never share them.
func enemyFactory(def types.EnemyDef) state.EnemyFactory {
	return func(level int) *types.Actor {
		level = max(1, level)
		stat := func(base, scale float64) int {
			return max(0, effects.Round(base+scale*float64(level)))
		}
		hp := max(1, stat(def.Base.HP, def.Scale.HP))
		sta := stat(def.Base.Sta, def.Scale.Sta)
		mp := stat(def.Base.MP, def.Scale.MP)

		a := &types.Actor{
			ID:    def.ID,
			Name:  def.Name,
			Class: def.Class,
			Stats: types.Stats{
				HP: hp, MaxHP: hp,
				Sta: sta, MaxSta: sta,
				MP: mp, MaxMP: mp,
				Atk:   stat(def.Base.Atk, def.Scale.Atk),
				Def:   stat(def.Base.Def, def.Scale.Def),
				Level: level,
				XP:    stat(def.Base.XP, def.Scale.XP),
				Gold:  stat(def.Base.Gold, def.Scale.Gold),
			},
			Alive:   true,
			Tags:    slices.Clone(def.Tags),
			Skills:  slices.Clone(def.Skills),
			Loot:    slices.Clone(def.Drops),
			AIPrefs: cloneMap(def.AIPrefs),
		}
		if a.Name == "" {
			a.Name = def.ID
		}
		return a
	}
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
