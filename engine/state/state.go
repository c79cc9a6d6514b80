// Package state holds the compiled content tables and the battle state
// lookups shared by every other engine package.
package state

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nathoo/battlecore/types"
)

// Side names used in Tags and by SideOf.
const (
	SidePlayer = "player"
	SideEnemy  = "enemy"
)

// EnemyFactory builds a fresh enemy actor at the given level.
type EnemyFactory func(level int) *types.Actor

// Tables holds the immutable runtime forms produced by the content compiler.
// A Tables value is safe to share across many battles.
type Tables struct {
	Game      types.GameMeta
	Balance   types.Balance
	Skills    map[string]*types.RuntimeSkill
	Items     map[string]*types.RuntimeItem
	Statuses  map[string]*types.RuntimeStatus
	Enemies   map[string]EnemyFactory
	EnemyDefs map[string]types.EnemyDef
	Players   map[string]types.Profile
}

// DefaultBalance returns the stock combat constants.
func DefaultBalance() types.Balance {
	return types.Balance{
		BaseHit:    0.9,
		DodgeFloor: 0.05,
		HitCeil:    0.99,
		BaseCrit:   0.05,
		CritMult:   1.5,
		FleeChance: 0.5,
		Elements:   map[string]map[string]float64{},
		TagResist:  map[string]float64{},
	}
}

// PlayerActor builds a player actor from a profile snapshot.
func PlayerActor(p types.Profile) *types.Actor {
	a := &types.Actor{
		ID:     p.ID,
		Name:   p.Name,
		Class:  p.Class,
		Stats:  p.Stats,
		Alive:  true,
		Skills: append([]string(nil), p.Skills...),
		Tags:   []string{SidePlayer},
	}
	if a.Name == "" {
		a.Name = p.ID
	}
	if a.Stats.MaxHP <= 0 {
		a.Stats.MaxHP = a.Stats.HP
	}
	if a.Stats.MaxSta <= 0 {
		a.Stats.MaxSta = a.Stats.Sta
	}
	if a.Stats.MaxMP <= 0 {
		a.Stats.MaxMP = a.Stats.MP
	}
	if a.Stats.Level <= 0 {
		a.Stats.Level = 1
	}
	for _, tag := range p.Tags {
		if tag != SidePlayer {
			a.Tags = append(a.Tags, tag)
		}
	}
	return a
}

// NewBattle assembles a battle from player and enemy actors. Turn order is
// players first, then enemies, in the given order. Duplicate ids (two
// enemies from the same factory) get a numeric suffix.
func NewBattle(players, enemies []*types.Actor, inventory []types.ItemQty, seed uint32) *types.BattleState {
	s := &types.BattleState{
		ID:        uuid.NewString(),
		Turn:      1,
		RNGSeed:   seed,
		Actors:    map[string]*types.Actor{},
		Inventory: append([]types.ItemQty(nil), inventory...),
		Log:       []string{},
		Cooldowns: map[string]map[string]int{},
		Charges:   map[string]map[string]int{},
		Shields:   map[string][]types.Shield{},
		Taunts:    map[string]types.Taunt{},
	}
	add := func(a *types.Actor, side string) {
		base, name := a.ID, a.Name
		for n := 2; s.Actors[a.ID] != nil; n++ {
			a.ID = fmt.Sprintf("%s-%d", base, n)
			a.Name = fmt.Sprintf("%s %d", name, n)
		}
		if !HasTag(a, side) {
			a.Tags = append([]string{side}, a.Tags...)
		}
		s.Actors[a.ID] = a
		s.TurnOrder = append(s.TurnOrder, a.ID)
		if side == SidePlayer {
			s.Players = append(s.Players, a.ID)
		} else {
			s.Enemies = append(s.Enemies, a.ID)
		}
	}
	for _, p := range players {
		add(p, SidePlayer)
	}
	for _, e := range enemies {
		add(e, SideEnemy)
	}
	return s
}

// Logf appends a formatted line to the battle log.
func Logf(s *types.BattleState, format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// Actor returns the actor with the given id, or nil.
func Actor(s *types.BattleState, id string) *types.Actor {
	return s.Actors[id]
}

// SideOf returns SidePlayer, SideEnemy, or "" for an unknown id.
func SideOf(s *types.BattleState, id string) string {
	for _, p := range s.Players {
		if p == id {
			return SidePlayer
		}
	}
	for _, e := range s.Enemies {
		if e == id {
			return SideEnemy
		}
	}
	return ""
}

// Allies returns the ids on the same side as id, in side order.
func Allies(s *types.BattleState, id string) []string {
	switch SideOf(s, id) {
	case SidePlayer:
		return s.Players
	case SideEnemy:
		return s.Enemies
	}
	return nil
}

// Opponents returns the ids on the side opposing id, in side order.
func Opponents(s *types.BattleState, id string) []string {
	switch SideOf(s, id) {
	case SidePlayer:
		return s.Enemies
	case SideEnemy:
		return s.Players
	}
	return nil
}

// AnyAlive reports whether any of the given actors is alive.
func AnyAlive(s *types.BattleState, ids []string) bool {
	for _, id := range ids {
		if a := s.Actors[id]; a != nil && a.Alive {
			return true
		}
	}
	return false
}

// HasTag reports whether the actor carries tag.
func HasTag(a *types.Actor, tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FindStatus returns the index of an active status on the actor, or -1.
func FindStatus(a *types.Actor, id string) int {
	for i, st := range a.Statuses {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// StatusStacks returns the stack count of an active status, or 0.
func StatusStacks(a *types.Actor, id string) int {
	if i := FindStatus(a, id); i >= 0 {
		return a.Statuses[i].Stacks
	}
	return 0
}

// Stat returns a base stat by name. ok is false for unknown names.
func Stat(a *types.Actor, name string) (int, bool) {
	st := &a.Stats
	switch name {
	case "hp":
		return st.HP, true
	case "maxHp":
		return st.MaxHP, true
	case "sta":
		return st.Sta, true
	case "maxSta":
		return st.MaxSta, true
	case "mp":
		return st.MP, true
	case "maxMp":
		return st.MaxMP, true
	case "atk":
		return st.Atk, true
	case "def":
		return st.Def, true
	case "lv", "level":
		return st.Level, true
	case "xp":
		return st.XP, true
	case "gold":
		return st.Gold, true
	}
	return 0, false
}

// Effective returns a stat with status modifiers applied, floored at 0.
func Effective(a *types.Actor, name string) float64 {
	base, _ := Stat(a, name)
	v := float64(base) + a.Mods[name]
	if v < 0 {
		return 0
	}
	return v
}

// MetricNames lists every name accepted by Metric.
var MetricNames = []string{
	"hp", "maxHp", "sta", "maxSta", "mp", "maxMp", "atk", "def",
	"lv", "level", "xp", "gold", "hpPct", "staPct", "mpPct", "alive",
}

// IsMetric reports whether name is accepted by Metric.
func IsMetric(name string) bool {
	for _, m := range MetricNames {
		if m == name {
			return true
		}
	}
	return false
}

// Metric returns a computed actor metric. Percent metrics are fractions in
// [0, 1]; atk and def include status modifiers. ok is false for unknown
// names.
func Metric(a *types.Actor, name string) (float64, bool) {
	switch name {
	case "hpPct":
		return pct(a.Stats.HP, a.Stats.MaxHP), true
	case "staPct":
		return pct(a.Stats.Sta, a.Stats.MaxSta), true
	case "mpPct":
		return pct(a.Stats.MP, a.Stats.MaxMP), true
	case "atk", "def":
		return Effective(a, name), true
	case "alive":
		if a.Alive {
			return 1, true
		}
		return 0, true
	}
	v, ok := Stat(a, name)
	return float64(v), ok
}

func pct(cur, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(cur) / float64(max)
}

// ItemCount returns the quantity of an item in the shared inventory.
func ItemCount(s *types.BattleState, id string) int {
	for _, it := range s.Inventory {
		if it.ID == id {
			return it.Qty
		}
	}
	return 0
}

// AddItem adds qty of an item to the shared inventory.
func AddItem(s *types.BattleState, id string, qty int) {
	if qty <= 0 {
		return
	}
	for i := range s.Inventory {
		if s.Inventory[i].ID == id {
			s.Inventory[i].Qty += qty
			return
		}
	}
	s.Inventory = append(s.Inventory, types.ItemQty{ID: id, Qty: qty})
}

// RemoveItem removes qty of an item, dropping the line when it reaches 0.
// Returns false without changes if there are not enough.
func RemoveItem(s *types.BattleState, id string, qty int) bool {
	for i := range s.Inventory {
		if s.Inventory[i].ID != id {
			continue
		}
		if s.Inventory[i].Qty < qty {
			return false
		}
		s.Inventory[i].Qty -= qty
		if s.Inventory[i].Qty == 0 {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
		}
		return true
	}
	return qty <= 0
}

// EnsureMaps fills in any nil side table on a battle built as a struct
// literal, so the engine can write to them.
func EnsureMaps(s *types.BattleState) {
	if s.Actors == nil {
		s.Actors = map[string]*types.Actor{}
	}
	if s.Cooldowns == nil {
		s.Cooldowns = map[string]map[string]int{}
	}
	if s.Charges == nil {
		s.Charges = map[string]map[string]int{}
	}
	if s.Shields == nil {
		s.Shields = map[string][]types.Shield{}
	}
	if s.Taunts == nil {
		s.Taunts = map[string]types.Taunt{}
	}
	if s.Log == nil {
		s.Log = []string{}
	}
}

// Counter reads a per-actor side table entry (cooldowns, charges).
func Counter(m map[string]map[string]int, actorID, key string) int {
	return m[actorID][key]
}

// SetCounter writes a per-actor side table entry, deleting zero entries.
func SetCounter(m map[string]map[string]int, actorID, key string, v int) {
	if v <= 0 {
		if inner := m[actorID]; inner != nil {
			delete(inner, key)
			if len(inner) == 0 {
				delete(m, actorID)
			}
		}
		return
	}
	if m[actorID] == nil {
		m[actorID] = map[string]int{}
	}
	m[actorID][key] = v
}

// DisplayName returns an actor's name, or the id when unknown.
func DisplayName(s *types.BattleState, id string) string {
	if a := s.Actors[id]; a != nil && a.Name != "" {
		return a.Name
	}
	return id
}

// JoinNames renders a list of actor ids as display names.
func JoinNames(s *types.BattleState, ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = DisplayName(s, id)
	}
	return strings.Join(names, ", ")
}
