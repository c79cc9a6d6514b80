// Package loader reads battle content (Lua DSL or YAML) into a GameConfig
// and compiles it into runtime tables. The Lua VM is discarded after
// loading: no Lua runs during a battle.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// rawDef is a curried constructor call (`Skill "id" { ... }`) before decoding.
type rawDef struct {
	id    string
	table *lua.LTable
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	game     *lua.LTable
	balance  *lua.LTable
	skills   []rawDef
	items    []rawDef
	statuses []rawDef
	enemies  []rawDef
	players  []rawDef
}

// Load reads every .lua, .yaml and .yml file in dir, merges them into one
// GameConfig, validates references, and compiles the runtime tables.
// Validation warnings are logged; errors abort loading.
func Load(dir string, logger *zap.Logger) (*state.Tables, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles, yamlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".lua":
			luaFiles = append(luaFiles, e.Name())
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 && len(yamlFiles) == 0 {
		return nil, fmt.Errorf("no .lua or .yaml files found in %s", dir)
	}

	cfg := &types.GameConfig{}
	if len(luaFiles) > 0 {
		luaCfg, err := loadLua(dir, sortedContentFiles(luaFiles, "game.lua"))
		if err != nil {
			return nil, err
		}
		merge(cfg, luaCfg)
	}
	for _, f := range sortedContentFiles(yamlFiles, "game.yaml") {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		yamlCfg, err := LoadYAML(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f, err)
		}
		merge(cfg, yamlCfg)
	}

	if err := validate(cfg); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			for _, w := range ve.Warnings {
				logger.Warn("content warning", zap.String("dir", dir), zap.String("warning", w))
			}
			if len(ve.Errors) == 0 {
				err = nil
			}
		}
		if err != nil {
			return nil, err
		}
	}

	tables, err := Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("compiling content: %w", err)
	}
	logger.Debug("content loaded",
		zap.String("dir", dir),
		zap.Int("skills", len(tables.Skills)),
		zap.Int("items", len(tables.Items)),
		zap.Int("statuses", len(tables.Statuses)),
		zap.Int("enemies", len(tables.Enemies)),
		zap.Int("players", len(tables.Players)))
	return tables, nil
}

// loadLua executes the given files in one sandboxed VM and decodes what
// the constructors collected.
func loadLua(dir string, files []string) (*types.GameConfig, error) {
	L := newVM()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}
	cfg, err := decode(coll)
	if err != nil {
		return nil, fmt.Errorf("decoding lua content: %w", err)
	}
	return cfg, nil
}

// LoadLuaString runs a single Lua chunk and returns the decoded content.
func LoadLuaString(src string) (*types.GameConfig, error) {
	L := newVM()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)
	if err := L.DoString(src); err != nil {
		return nil, err
	}
	return decode(coll)
}

func newVM() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	return L
}

// merge folds src into dst. Lists append, non-empty metadata overrides,
// and a later balance block replaces an earlier one.
func merge(dst, src *types.GameConfig) {
	if src.Game.Title != "" {
		dst.Game.Title = src.Game.Title
	}
	if src.Game.Author != "" {
		dst.Game.Author = src.Game.Author
	}
	if src.Game.Version != "" {
		dst.Game.Version = src.Game.Version
	}
	if src.Game.Intro != "" {
		dst.Game.Intro = src.Game.Intro
	}
	if src.Balance != nil {
		dst.Balance = src.Balance
	}
	dst.Skills = append(dst.Skills, src.Skills...)
	dst.Items = append(dst.Items, src.Items...)
	dst.Statuses = append(dst.Statuses, src.Statuses...)
	dst.Enemies = append(dst.Enemies, src.Enemies...)
	dst.Players = append(dst.Players, src.Players...)
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem or break determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

// sortedContentFiles returns files with first (if present) leading and the
// rest sorted alphabetically.
func sortedContentFiles(files []string, first string) []string {
	var head string
	var others []string
	for _, f := range files {
		if strings.EqualFold(f, first) {
			head = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if head != "" {
		return append([]string{head}, others...)
	}
	return others
}
