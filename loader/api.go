package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/battlecore/types"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerSelectorHelpers(L)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", intro = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Balance { baseHit = 0.9, elements = { fire = { ice = 2 } } }
	L.SetGlobal("Balance", L.NewFunction(func(L *lua.LState) int {
		coll.balance = L.CheckTable(1)
		return 0
	}))

	// Skill "id" { ... } and friends are curried: the id call returns a
	// function that takes the body table.
	curried := func(name string, dst *[]rawDef) {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				*dst = append(*dst, rawDef{id: id, table: tbl})
				return 0
			}))
			return 1
		}))
	}
	curried("Skill", &coll.skills)
	curried("Item", &coll.items)
	curried("Status", &coll.statuses)
	curried("Enemy", &coll.enemies)
	curried("Player", &coll.players)
}

func registerSelectorHelpers(L *lua.LState) {
	selector := func(L *lua.LState, side string, mode types.Mode) *lua.LTable {
		tbl := L.NewTable()
		tbl.RawSetString("side", lua.LString(side))
		tbl.RawSetString("mode", lua.LString(mode))
		return tbl
	}

	// Self()
	L.SetGlobal("Self", L.NewFunction(func(L *lua.LState) int {
		L.Push(selector(L, string(types.SideSelf), types.ModeSelf))
		return 1
	}))

	// Single("enemy")
	L.SetGlobal("Single", L.NewFunction(func(L *lua.LState) int {
		L.Push(selector(L, L.OptString(1, string(types.SideEnemy)), types.ModeSingle))
		return 1
	}))

	// Everyone("ally")
	L.SetGlobal("Everyone", L.NewFunction(func(L *lua.LState) int {
		L.Push(selector(L, L.OptString(1, string(types.SideEnemy)), types.ModeAll))
		return 1
	}))

	// Random("enemy", 2)
	L.SetGlobal("Random", L.NewFunction(func(L *lua.LState) int {
		tbl := selector(L, L.OptString(1, string(types.SideEnemy)), types.ModeRandom)
		tbl.RawSetString("count", lua.LNumber(L.OptInt(2, 1)))
		L.Push(tbl)
		return 1
	}))

	// Lowest("ally", "hpPct") / Highest("enemy", "atk")
	ranked := func(mode types.Mode) lua.LGFunction {
		return func(L *lua.LState) int {
			tbl := selector(L, L.OptString(1, string(types.SideEnemy)), mode)
			tbl.RawSetString("ofWhat", lua.LString(L.OptString(2, "hpPct")))
			if n := L.OptInt(3, 0); n > 0 {
				tbl.RawSetString("count", lua.LNumber(n))
			}
			L.Push(tbl)
			return 1
		}
	}
	L.SetGlobal("Lowest", L.NewFunction(ranked(types.ModeLowest)))
	L.SetGlobal("Highest", L.NewFunction(ranked(types.ModeHighest)))

	// Where("ally", Test("hpPct", "lt", 0.5), 1)
	L.SetGlobal("Where", L.NewFunction(func(L *lua.LState) int {
		tbl := selector(L, L.CheckString(1), types.ModeCondition)
		tbl.RawSetString("condition", L.CheckTable(2))
		if n := L.OptInt(3, 0); n > 0 {
			tbl.RawSetString("count", lua.LNumber(n))
		}
		L.Push(tbl)
		return 1
	}))

	// Dead(selector) marks a selector as including dead actors.
	L.SetGlobal("Dead", L.NewFunction(func(L *lua.LState) int {
		tbl := copyTable(L, L.CheckTable(1))
		tbl.RawSetString("includeDead", lua.LTrue)
		L.Push(tbl)
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	// All { cond, cond } / Any { cond, cond }
	group := func(op string) lua.LGFunction {
		return func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("op", lua.LString(op))
			tbl.RawSetString("children", L.CheckTable(1))
			L.Push(tbl)
			return 1
		}
	}
	L.SetGlobal("All", L.NewFunction(group("all")))
	L.SetGlobal("Any", L.NewFunction(group("any")))

	// Not(cond)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		children := L.NewTable()
		children.Append(L.CheckTable(1))
		tbl := L.NewTable()
		tbl.RawSetString("op", lua.LString("not"))
		tbl.RawSetString("children", children)
		L.Push(tbl)
		return 1
	}))

	// Test("hpPct", "lt", 0.5)
	L.SetGlobal("Test", L.NewFunction(func(L *lua.LState) int {
		L.Push(testTable(L, L.CheckString(1), L.CheckString(2), L.CheckAny(3)))
		return 1
	}))

	// HasStatus("poison")
	L.SetGlobal("HasStatus", L.NewFunction(func(L *lua.LState) int {
		L.Push(testTable(L, "hasStatus", "in", lua.LString(L.CheckString(1))))
		return 1
	}))

	// HasTag("undead")
	L.SetGlobal("HasTag", L.NewFunction(func(L *lua.LState) int {
		L.Push(testTable(L, "tag", "in", lua.LString(L.CheckString(1))))
		return 1
	}))

	// HpBelow(0.5)
	L.SetGlobal("HpBelow", L.NewFunction(func(L *lua.LState) int {
		L.Push(testTable(L, "hpPct", "lt", L.CheckNumber(1)))
		return 1
	}))
}

func testTable(L *lua.LState, field, cmp string, value lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("op", lua.LString("test"))
	tbl.RawSetString("field", lua.LString(field))
	tbl.RawSetString("cmp", lua.LString(cmp))
	tbl.RawSetString("value", value)
	return tbl
}

func registerEffectHelpers(L *lua.LState) {
	// Damage(10), Damage("u.atk * 2 - t.def"), Damage { percent = 25, canMiss = true }
	valued := func(kind types.EffectKind) lua.LGFunction {
		return func(L *lua.LState) int {
			L.Push(effectTable(L, kind, 1))
			return 1
		}
	}
	L.SetGlobal("Damage", L.NewFunction(valued(types.EffectDamage)))
	L.SetGlobal("Heal", L.NewFunction(valued(types.EffectHeal)))
	L.SetGlobal("Shield", L.NewFunction(valued(types.EffectShield)))
	L.SetGlobal("Taunt", L.NewFunction(valued(types.EffectTaunt)))
	L.SetGlobal("Flee", L.NewFunction(valued(types.EffectFlee)))
	L.SetGlobal("Revive", L.NewFunction(valued(types.EffectRevive)))

	// Restore("mp", 10)
	L.SetGlobal("Restore", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, types.EffectResource, 2)
		tbl.RawSetString("resource", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// ModifyStat("def", -2)
	L.SetGlobal("ModifyStat", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, types.EffectModifyStat, 2)
		tbl.RawSetString("stat", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// ApplyStatus("poison"), ApplyStatus("poison", 3), ApplyStatus("poison", { turns = 3, stacks = 2 })
	L.SetGlobal("ApplyStatus", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		tbl := L.NewTable()
		switch opt := L.Get(2).(type) {
		case lua.LNumber:
			tbl.RawSetString("turns", opt)
		case *lua.LTable:
			tbl = copyTable(L, opt)
		}
		tbl.RawSetString("kind", lua.LString(types.EffectApplyStatus))
		tbl.RawSetString("status", lua.LString(id))
		L.Push(tbl)
		return 1
	}))

	// Cleanse(), Cleanse("debuff"), Cleanse { "poison", "burn" }
	L.SetGlobal("Cleanse", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		switch opt := L.Get(1).(type) {
		case lua.LString:
			tags := L.NewTable()
			tags.Append(opt)
			tbl.RawSetString("tags", tags)
		case *lua.LTable:
			if opt.MaxN() > 0 {
				tbl.RawSetString("tags", opt)
			} else {
				tbl = copyTable(L, opt)
			}
		}
		tbl.RawSetString("kind", lua.LString(types.EffectCleanseStatus))
		L.Push(tbl)
		return 1
	}))

	// Percent(25) or Percent(50, "maxMp"), usable wherever a value goes.
	L.SetGlobal("Percent", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("percent", L.CheckNumber(1))
		if of := L.OptString(2, ""); of != "" {
			tbl.RawSetString("of", lua.LString(of))
		}
		L.Push(tbl)
		return 1
	}))

	// On(selector, effect) overrides an effect's targets.
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		sel := L.CheckTable(1)
		tbl := copyTable(L, L.CheckTable(2))
		tbl.RawSetString("selector", sel)
		L.Push(tbl)
		return 1
	}))

	// OnlyIf(cond, effect) filters an effect's targets.
	L.SetGlobal("OnlyIf", L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckTable(1)
		tbl := copyTable(L, L.CheckTable(2))
		tbl.RawSetString("onlyIf", cond)
		L.Push(tbl)
		return 1
	}))
}

// effectTable builds an effect of kind from the value argument at idx: a
// number is a flat amount, a string a formula, and a table is copied as-is.
func effectTable(L *lua.LState, kind types.EffectKind, idx int) *lua.LTable {
	var tbl *lua.LTable
	switch v := L.Get(idx).(type) {
	case lua.LNumber:
		tbl = L.NewTable()
		tbl.RawSetString("amount", v)
	case lua.LString:
		tbl = L.NewTable()
		tbl.RawSetString("formula", v)
	case *lua.LTable:
		tbl = copyTable(L, v)
	case *lua.LNilType:
		tbl = L.NewTable()
	default:
		L.ArgError(idx, "expected a number, formula string or table")
	}
	tbl.RawSetString("kind", lua.LString(kind))
	return tbl
}

// copyTable makes a shallow copy so helpers never mutate author tables.
func copyTable(L *lua.LState, src *lua.LTable) *lua.LTable {
	dst := L.NewTable()
	src.ForEach(func(k, v lua.LValue) {
		dst.RawSet(k, v)
	})
	return dst
}
