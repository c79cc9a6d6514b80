package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// decode converts the collected Lua tables into a GameConfig. Every table
// goes through the same yaml field mapping the YAML loader uses, so both
// content formats share one schema.
func decode(coll *collector) (*types.GameConfig, error) {
	cfg := &types.GameConfig{}

	if coll.game != nil {
		if err := decodeTable(coll.game, &cfg.Game); err != nil {
			return nil, fmt.Errorf("game: %w", err)
		}
	}
	if coll.balance != nil {
		b := state.DefaultBalance()
		if err := decodeTable(coll.balance, &b); err != nil {
			return nil, fmt.Errorf("balance: %w", err)
		}
		cfg.Balance = &b
	}

	for _, raw := range coll.skills {
		var def types.SkillDef
		if err := decodeTable(raw.table, &def); err != nil {
			return nil, fmt.Errorf("skill %q: %w", raw.id, err)
		}
		def.ID = raw.id
		cfg.Skills = append(cfg.Skills, def)
	}
	for _, raw := range coll.items {
		var def types.ItemDef
		if err := decodeTable(raw.table, &def); err != nil {
			return nil, fmt.Errorf("item %q: %w", raw.id, err)
		}
		def.ID = raw.id
		cfg.Items = append(cfg.Items, def)
	}
	for _, raw := range coll.statuses {
		var def types.StatusDef
		if err := decodeTable(raw.table, &def); err != nil {
			return nil, fmt.Errorf("status %q: %w", raw.id, err)
		}
		def.ID = raw.id
		cfg.Statuses = append(cfg.Statuses, def)
	}
	for _, raw := range coll.enemies {
		var def types.EnemyDef
		if err := decodeTable(raw.table, &def); err != nil {
			return nil, fmt.Errorf("enemy %q: %w", raw.id, err)
		}
		def.ID = raw.id
		cfg.Enemies = append(cfg.Enemies, def)
	}
	for _, raw := range coll.players {
		var p types.Profile
		if err := decodeTable(raw.table, &p); err != nil {
			return nil, fmt.Errorf("player %q: %w", raw.id, err)
		}
		p.ID = raw.id
		cfg.Players = append(cfg.Players, p)
	}
	return cfg, nil
}

// decodeTable maps a Lua table onto out using out's yaml tags. Unknown
// keys are errors, the same as in YAML files.
func decodeTable(tbl *lua.LTable, out any) error {
	data, err := yaml.Marshal(toGoValue(tbl))
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively. Tables with a
// sequence part become slices, other tables become maps, and an empty
// table becomes nil so it decodes into either shape.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if maxN := val.MaxN(); maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		if len(m) == 0 {
			return nil
		}
		return m
	default:
		return nil
	}
}
