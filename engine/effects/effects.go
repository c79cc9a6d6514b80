// Package effects implements the atomic stat mutations behind every effect
// kind. Each function changes one actor, keeps current values inside
// [0, max], and returns what actually changed. No RNG, no logging.
package effects

import (
	"fmt"
	"math"

	"github.com/nathoo/battlecore/types"
)

// Resources accepted by ApplyResource.
const (
	HP  = "hp"
	Sta = "sta"
	MP  = "mp"
)

// Stats accepted by ModifyStat.
var ModifiableStats = []string{"atk", "def", "maxHp", "maxSta", "maxMp"}

// Round converts a resolved effect value to whole points, rounding half up.
func Round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}

// ApplyDamage removes up to amount HP. Reaching 0 HP marks the actor dead.
// Returns the HP actually lost and whether this call killed the actor.
func ApplyDamage(a *types.Actor, amount int) (int, bool) {
	if amount <= 0 || !a.Alive {
		return 0, false
	}
	before := a.Stats.HP
	a.Stats.HP = clamp(before-amount, 0, a.Stats.MaxHP)
	if a.Stats.HP == 0 {
		a.Alive = false
		return before, true
	}
	return before - a.Stats.HP, false
}

// ApplyHeal restores up to amount HP, capped at MaxHP. Dead actors are
// not healed. Returns the HP actually restored.
func ApplyHeal(a *types.Actor, amount int) int {
	if amount <= 0 || !a.Alive {
		return 0
	}
	before := a.Stats.HP
	a.Stats.HP = clamp(before+amount, 0, a.Stats.MaxHP)
	return a.Stats.HP - before
}

// ApplyResource adds delta (negative drains) to hp, sta or mp, clamped to
// [0, max]. Draining HP to 0 kills; restoring HP never revives. Returns
// the signed change actually applied.
func ApplyResource(a *types.Actor, resource string, delta int) (int, error) {
	switch resource {
	case HP, "":
		if delta >= 0 {
			return ApplyHeal(a, delta), nil
		}
		lost, _ := ApplyDamage(a, -delta)
		return -lost, nil
	case Sta:
		before := a.Stats.Sta
		a.Stats.Sta = clamp(before+delta, 0, a.Stats.MaxSta)
		return a.Stats.Sta - before, nil
	case MP:
		before := a.Stats.MP
		a.Stats.MP = clamp(before+delta, 0, a.Stats.MaxMP)
		return a.Stats.MP - before, nil
	}
	return 0, fmt.Errorf("unknown resource %q", resource)
}

// Revive brings a dead actor back with hp points (at least 1, at most
// MaxHP). Returns false if the actor was already alive.
func Revive(a *types.Actor, hp int) bool {
	if a.Alive {
		return false
	}
	if hp < 1 {
		hp = 1
	}
	a.Stats.HP = clamp(hp, 1, max(1, a.Stats.MaxHP))
	a.Alive = true
	return true
}

// ModifyStat adds delta to a base stat, flooring it at 0. Lowering a max
// also lowers the matching current value. Returns the signed change.
func ModifyStat(a *types.Actor, stat string, delta int) (int, error) {
	var p *int
	switch stat {
	case "atk":
		p = &a.Stats.Atk
	case "def":
		p = &a.Stats.Def
	case "maxHp":
		p = &a.Stats.MaxHP
	case "maxSta":
		p = &a.Stats.MaxSta
	case "maxMp":
		p = &a.Stats.MaxMP
	default:
		return 0, fmt.Errorf("unknown stat %q", stat)
	}
	before := *p
	*p = max(0, before+delta)
	ClampResources(a)
	return *p - before, nil
}

// ClampResources pulls current hp/sta/mp back inside [0, max].
func ClampResources(a *types.Actor) {
	a.Stats.HP = clamp(a.Stats.HP, 0, a.Stats.MaxHP)
	a.Stats.Sta = clamp(a.Stats.Sta, 0, a.Stats.MaxSta)
	a.Stats.MP = clamp(a.Stats.MP, 0, a.Stats.MaxMP)
	if a.Stats.HP == 0 {
		a.Alive = false
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
