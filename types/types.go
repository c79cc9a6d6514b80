// Package types defines the shared data structures for the battlecore engine.
// This package contains only type definitions: no logic, no methods.
package types

// EffectKind names one atomic combat consequence. The set is closed; the
// executor and the status hook runner both dispatch over every kind.
type EffectKind string

const (
	EffectDamage        EffectKind = "damage"
	EffectHeal          EffectKind = "heal"
	EffectResource      EffectKind = "resource"
	EffectApplyStatus   EffectKind = "applyStatus"
	EffectCleanseStatus EffectKind = "cleanseStatus"
	EffectShield        EffectKind = "shield"
	EffectTaunt         EffectKind = "taunt"
	EffectFlee          EffectKind = "flee"
	EffectRevive        EffectKind = "revive"
	EffectModifyStat    EffectKind = "modifyStat"
)

// AllEffectKinds lists every effect kind in declaration order.
var AllEffectKinds = []EffectKind{
	EffectDamage, EffectHeal, EffectResource, EffectApplyStatus,
	EffectCleanseStatus, EffectShield, EffectTaunt, EffectFlee,
	EffectRevive, EffectModifyStat,
}

// ValueKind selects how an effect's magnitude is computed.
type ValueKind string

const (
	ValueFlat    ValueKind = "flat"
	ValuePercent ValueKind = "percent"
	ValueFormula ValueKind = "formula"
)

// ValueSpec is the author-facing magnitude of an effect.
type ValueSpec struct {
	Amount  float64  `yaml:"amount" json:"amount,omitempty"`
	Percent float64  `yaml:"percent" json:"percent,omitempty"` // percent of the target's max (25 = 25%)
	Of      string   `yaml:"of" json:"of,omitempty"`           // "maxHp" (default), "maxSta", "maxMp"
	Formula string   `yaml:"formula" json:"formula,omitempty"`
	Min     *float64 `yaml:"min" json:"min,omitempty"`
	Max     *float64 `yaml:"max" json:"max,omitempty"`
}

// Side is the candidate pool of a selector, relative to the user.
type Side string

const (
	SideSelf  Side = "self"
	SideAlly  Side = "ally"
	SideEnemy Side = "enemy"
	SideAny   Side = "any"
)

// Mode picks targets out of the candidate pool.
type Mode string

const (
	ModeSelf      Mode = "self"
	ModeSingle    Mode = "single"
	ModeAll       Mode = "all"
	ModeRandom    Mode = "random"
	ModeLowest    Mode = "lowest"
	ModeHighest   Mode = "highest"
	ModeCondition Mode = "condition"
)

// SelectorDef is the author-facing targeting rule.
type SelectorDef struct {
	Side        Side          `yaml:"side"`
	Mode        Mode          `yaml:"mode"`
	Count       *int          `yaml:"count"`
	OfWhat      string        `yaml:"ofWhat"`
	IncludeDead bool          `yaml:"includeDead"`
	Condition   *ConditionDef `yaml:"condition"`
}

// ConditionDef is a boolean expression tree evaluated against one actor.
// Op is "all", "any", "not" or "test".
type ConditionDef struct {
	Op       string         `yaml:"op"`
	Children []ConditionDef `yaml:"children"`
	Field    string         `yaml:"field"` // hpPct|staPct|mpPct|atk|def|lv|hasStatus|tag|clazz
	Cmp      string         `yaml:"cmp"`   // lt|lte|eq|gte|gt|ne|in|notIn
	Value    any            `yaml:"value"`
}

// EffectDef is one atomic consequence attached to a skill, item or hook.
type EffectDef struct {
	Kind      EffectKind    `yaml:"kind"`
	ValueSpec `yaml:",inline"`
	Selector  *SelectorDef  `yaml:"selector"`
	OnlyIf    *ConditionDef `yaml:"onlyIf"`
	Element   string        `yaml:"element"`
	Resource  string        `yaml:"resource"` // hp|sta|mp for resource effects
	Status    string        `yaml:"status"`
	Turns     *int          `yaml:"turns"`
	Stacks    int           `yaml:"stacks"`
	Tags      []string      `yaml:"tags"`
	ShieldID  string        `yaml:"shield"`
	Replace   bool          `yaml:"replace"`
	Stat      string        `yaml:"stat"`
	CanMiss   bool          `yaml:"canMiss"`
	CanCrit   bool          `yaml:"canCrit"`
}

// ItemQty is an inventory line or an item cost.
type ItemQty struct {
	ID  string `yaml:"id" json:"id"`
	Qty int    `yaml:"qty" json:"qty"`
}

// CostDef lists what using an action consumes.
type CostDef struct {
	Sta      int       `yaml:"sta"`
	MP       int       `yaml:"mp"`
	Cooldown int       `yaml:"cooldown"`
	Charges  int       `yaml:"charges"`
	Items    []ItemQty `yaml:"items"`
}

// SkillDef is the author-facing definition of a skill.
type SkillDef struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Tags     []string      `yaml:"tags"`
	Element  string        `yaml:"element"`
	Target   SelectorDef   `yaml:"target"`
	Effects  []EffectDef   `yaml:"effects"`
	Cost     CostDef       `yaml:"cost"`
	Usable   *ConditionDef `yaml:"usable"`
	AIWeight float64       `yaml:"aiWeight"`
}

// ItemDef is the author-facing definition of an inventory item.
type ItemDef struct {
	SkillDef   `yaml:",inline"`
	Consumable *bool `yaml:"consumable"`
}

// StackRule governs reapplication of an already active status.
type StackRule string

const (
	StackIgnore    StackRule = "ignore"
	StackRenew     StackRule = "renew"
	StackCount     StackRule = "stackCount"
	StackMagnitude StackRule = "stackMagnitude"
)

// Hook is a trigger point on a status.
type Hook string

const (
	HookApply      Hook = "onApply"
	HookTurnStart  Hook = "onTurnStart"
	HookTurnEnd    Hook = "onTurnEnd"
	HookDealDamage Hook = "onDealDamage"
	HookTakeDamage Hook = "onTakeDamage"
	HookExpire     Hook = "onExpire"
)

// AllHooks lists every status hook.
var AllHooks = []Hook{HookApply, HookTurnStart, HookTurnEnd, HookDealDamage, HookTakeDamage, HookExpire}

// StatusDef is the author-facing definition of a status effect.
type StatusDef struct {
	ID            string               `yaml:"id"`
	Name          string               `yaml:"name"`
	StackRule     StackRule            `yaml:"stackRule"`
	MaxStacks     int                  `yaml:"maxStacks"`
	DurationTurns *int                 `yaml:"durationTurns"`
	Tags          []string             `yaml:"tags"`
	Mods          map[string]float64   `yaml:"mods"`   // stat -> flat modifier
	Resist        map[string]float64   `yaml:"resist"` // element -> damage multiplier
	Hooks         map[Hook][]EffectDef `yaml:"hooks"`
}

// StatBlock holds numeric stats used for enemy base and scaling values.
type StatBlock struct {
	HP   float64 `yaml:"hp"`
	Sta  float64 `yaml:"sta"`
	MP   float64 `yaml:"mp"`
	Atk  float64 `yaml:"atk"`
	Def  float64 `yaml:"def"`
	XP   float64 `yaml:"xp"`
	Gold float64 `yaml:"gold"`
}

// DropDef is one loot table row.
type DropDef struct {
	Item   string  `yaml:"item" json:"item"`
	Chance float64 `yaml:"chance" json:"chance"`
	Qty    int     `yaml:"qty" json:"qty"`
}

// EnemyDef is the author-facing definition of an enemy.
type EnemyDef struct {
	ID      string             `yaml:"id"`
	Name    string             `yaml:"name"`
	Class   string             `yaml:"class"`
	Base    StatBlock          `yaml:"base"`
	Scale   StatBlock          `yaml:"scale"`
	Skills  []string           `yaml:"skills"`
	Drops   []DropDef          `yaml:"drops"`
	Tags    []string           `yaml:"tags"`
	AIPrefs map[string]float64 `yaml:"ai"` // skill tag -> weight multiplier
}

// Profile is a player snapshot used to build a player actor.
type Profile struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Class     string    `yaml:"class"`
	Stats     Stats     `yaml:"stats"`
	Skills    []string  `yaml:"skills"`
	Tags      []string  `yaml:"tags"`
	Inventory []ItemQty `yaml:"inventory"`
}

// Balance holds the global combat constants.
type Balance struct {
	BaseHit    float64                       `yaml:"baseHit"`
	DodgeFloor float64                       `yaml:"dodgeFloor"`
	HitCeil    float64                       `yaml:"hitCeil"`
	BaseCrit   float64                       `yaml:"baseCrit"`
	CritMult   float64                       `yaml:"critMult"`
	FleeChance float64                       `yaml:"fleeChance"`
	Elements   map[string]map[string]float64 `yaml:"elements"`
	TagResist  map[string]float64            `yaml:"tagResist"`
}

// GameMeta holds content metadata.
type GameMeta struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	Version string `yaml:"version"`
	Intro   string `yaml:"intro"`
}

// GameConfig is the whole content document fed to the content compiler.
type GameConfig struct {
	Game     GameMeta    `yaml:"game"`
	Balance  *Balance    `yaml:"balance"`
	Skills   []SkillDef  `yaml:"skills"`
	Items    []ItemDef   `yaml:"items"`
	Statuses []StatusDef `yaml:"statuses"`
	Enemies  []EnemyDef  `yaml:"enemies"`
	Players  []Profile   `yaml:"players"`
}

// EvalContext is the ctx.* bag visible to formulas.
type EvalContext map[string]float64

// Resolver computes an effect magnitude for one user/target pair.
type Resolver func(user, target *Actor, ctx EvalContext) (float64, error)

// RuntimeValue is a compiled ValueSpec.
type RuntimeValue struct {
	Spec    ValueSpec
	Resolve Resolver
}

// Selector is a SelectorDef with every default filled in.
// Count 0 means "no cap".
type Selector struct {
	Side        Side
	Mode        Mode
	Count       int
	OfWhat      string
	IncludeDead bool
	Condition   *ConditionDef
}

// RuntimeEffect is a compiled EffectDef.
type RuntimeEffect struct {
	Kind     EffectKind
	Value    RuntimeValue
	Selector *Selector // nil: use the action's base targets
	OnlyIf   *ConditionDef
	Element  string
	Resource string
	Status   string
	Turns    *int
	Stacks   int
	Tags     []string
	ShieldID string
	Replace  bool
	Stat     string
	CanMiss  bool
	CanCrit  bool
}

// Cost is a normalized CostDef.
type Cost struct {
	Sta      int
	MP       int
	Cooldown int
	Charges  int
	Items    []ItemQty
}

// ActionKind distinguishes skills from items.
type ActionKind string

const (
	ActionSkill ActionKind = "skill"
	ActionItem  ActionKind = "item"
)

// RuntimeAction is the executable form shared by skills and items.
type RuntimeAction struct {
	ID         string
	Name       string
	Kind       ActionKind
	Tags       []string
	Element    string
	Selector   Selector
	Effects    []RuntimeEffect
	Cost       Cost
	Usable     *ConditionDef
	AIWeight   float64
	Consumable bool
}

// RuntimeSkill is a compiled SkillDef.
type RuntimeSkill struct {
	RuntimeAction
}

// RuntimeItem is a compiled ItemDef.
type RuntimeItem struct {
	RuntimeAction
}

// RuntimeStatus is a compiled StatusDef.
type RuntimeStatus struct {
	ID            string
	Name          string
	StackRule     StackRule
	MaxStacks     int
	DurationTurns *int
	Tags          []string
	Mods          map[string]float64
	Resist        map[string]float64
	Hooks         map[Hook][]RuntimeEffect
}

// Stats holds an actor's numbers.
type Stats struct {
	HP     int `yaml:"hp" json:"hp"`
	MaxHP  int `yaml:"maxHp" json:"max_hp"`
	Sta    int `yaml:"sta" json:"sta"`
	MaxSta int `yaml:"maxSta" json:"max_sta"`
	MP     int `yaml:"mp" json:"mp"`
	MaxMP  int `yaml:"maxMp" json:"max_mp"`
	Atk    int `yaml:"atk" json:"atk"`
	Def    int `yaml:"def" json:"def"`
	Level  int `yaml:"level" json:"level"`
	XP     int `yaml:"xp" json:"xp"`
	Gold   int `yaml:"gold" json:"gold"`
}

// Status is one active status instance on an actor.
type Status struct {
	ID     string `json:"id"`
	Turns  int    `json:"turns"`
	Stacks int    `json:"stacks"`
	Source string `json:"source,omitempty"`
}

// Actor is one battle participant.
type Actor struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Class    string             `json:"class"`
	Stats    Stats              `json:"stats"`
	Statuses []Status           `json:"statuses"`
	Alive    bool               `json:"alive"`
	Tags     []string           `json:"tags"`
	Skills   []string           `json:"skills,omitempty"`
	Loot     []DropDef          `json:"loot,omitempty"`
	AIPrefs  map[string]float64 `json:"ai_prefs,omitempty"`
	Mods     map[string]float64 `json:"mods,omitempty"` // status-granted stat modifiers
}

// Shield is one named absorption pool.
type Shield struct {
	ID         string `json:"id"`
	Remaining  int    `json:"remaining"`
	Element    string `json:"element,omitempty"`
	FromStatus string `json:"from_status,omitempty"`
}

// Taunt forces an actor's targeting toward a source.
type Taunt struct {
	Source string `json:"source"`
	Turns  int    `json:"turns"`
}

// EndReason is the terminal outcome of a battle.
type EndReason string

const (
	EndFled    EndReason = "fled"
	EndDefeat  EndReason = "defeat"
	EndVictory EndReason = "victory"
)

// Ended marks a finished battle.
type Ended struct {
	Reason EndReason `json:"reason"`
}

// BattleState is the complete mutable battle state.
type BattleState struct {
	ID          string                    `json:"id"`
	Turn        int                       `json:"turn"`
	TurnOrder   []string                  `json:"turn_order"`
	TurnIndex   int                       `json:"turn_index"`
	RNGSeed     uint32                    `json:"rng_seed"`
	RNGPosition int64                     `json:"rng_position"`
	Actors      map[string]*Actor         `json:"actors"`
	Players     []string                  `json:"players"`
	Enemies     []string                  `json:"enemies"`
	Inventory   []ItemQty                 `json:"inventory"`
	Log         []string                  `json:"log"`
	Cooldowns   map[string]map[string]int `json:"cooldowns"`
	Charges     map[string]map[string]int `json:"charges"`
	Shields     map[string][]Shield       `json:"shields"`
	Taunts      map[string]Taunt          `json:"taunts"`
	Ended       *Ended                    `json:"ended,omitempty"`
}

// UseResult is the outcome of one action.
type UseResult struct {
	OK    bool
	Log   []string // lines appended by this call
	State *BattleState
}

// Event is emitted by the executor around damage application.
type Event struct {
	Type string // "damage_dealt" or "damage_taken"
	Data map[string]any
}

// Intent is the parsed representation of a battle command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Result is the output of a single command step.
type Result struct {
	Actions []string // action ids executed this step, in order
	Output  []string
}
