package effects

import (
	"math"
	"testing"

	"github.com/nathoo/battlecore/types"
)

func newActor() *types.Actor {
	return &types.Actor{
		ID:    "hero",
		Alive: true,
		Stats: types.Stats{HP: 30, MaxHP: 40, Sta: 5, MaxSta: 10, MP: 8, MaxMP: 8, Atk: 6, Def: 2},
	}
}

func TestApplyHeal_ClampsToMax(t *testing.T) {
	a := newActor()

	got := ApplyHeal(a, 10000)
	if a.Stats.HP != 40 {
		t.Errorf("HP = %d, want 40", a.Stats.HP)
	}
	if got != 10 {
		t.Errorf("healed = %d, want 10", got)
	}
}

func TestApplyHeal_DoesNotRevive(t *testing.T) {
	a := newActor()
	a.Stats.HP = 0
	a.Alive = false

	if got := ApplyHeal(a, 10); got != 0 {
		t.Errorf("healed = %d, want 0", got)
	}
	if a.Alive || a.Stats.HP != 0 {
		t.Errorf("dead actor changed: alive=%v hp=%d", a.Alive, a.Stats.HP)
	}
}

func TestApplyDamage(t *testing.T) {
	tests := []struct {
		name     string
		amount   int
		wantHP   int
		wantLost int
		wantDead bool
	}{
		{"partial", 12, 18, 12, false},
		{"exact", 30, 0, 30, true},
		{"overkill", 500, 0, 30, true},
		{"negative ignored", -5, 30, 0, false},
	}
	for _, tt := range tests {
		a := newActor()
		lost, died := ApplyDamage(a, tt.amount)
		if a.Stats.HP != tt.wantHP || lost != tt.wantLost || died != tt.wantDead {
			t.Errorf("%s: hp=%d lost=%d died=%v, want hp=%d lost=%d died=%v",
				tt.name, a.Stats.HP, lost, died, tt.wantHP, tt.wantLost, tt.wantDead)
		}
		if died && a.Alive {
			t.Errorf("%s: actor still alive at 0 HP", tt.name)
		}
	}
}

func TestApplyDamage_AlreadyDead(t *testing.T) {
	a := newActor()
	ApplyDamage(a, 100)

	if lost, died := ApplyDamage(a, 5); lost != 0 || died {
		t.Errorf("lost=%d died=%v, want 0 false", lost, died)
	}
}

func TestApplyResource(t *testing.T) {
	tests := []struct {
		resource string
		delta    int
		want     int
		check    func(*types.Actor) int
		final    int
	}{
		{Sta, 100, 5, func(a *types.Actor) int { return a.Stats.Sta }, 10},
		{Sta, -100, -5, func(a *types.Actor) int { return a.Stats.Sta }, 0},
		{MP, 3, 0, func(a *types.Actor) int { return a.Stats.MP }, 8},
		{MP, -3, -3, func(a *types.Actor) int { return a.Stats.MP }, 5},
		{HP, 5, 5, func(a *types.Actor) int { return a.Stats.HP }, 35},
		{HP, -50, -30, func(a *types.Actor) int { return a.Stats.HP }, 0},
	}
	for _, tt := range tests {
		a := newActor()
		got, err := ApplyResource(a, tt.resource, tt.delta)
		if err != nil {
			t.Errorf("%s %+d: %v", tt.resource, tt.delta, err)
			continue
		}
		if got != tt.want || tt.check(a) != tt.final {
			t.Errorf("%s %+d: applied=%d final=%d, want %d %d", tt.resource, tt.delta, got, tt.check(a), tt.want, tt.final)
		}
	}

	if _, err := ApplyResource(newActor(), "rage", 1); err == nil {
		t.Error("unknown resource should error")
	}
}

func TestRevive(t *testing.T) {
	a := newActor()
	if Revive(a, 10) {
		t.Error("reviving a living actor should fail")
	}

	ApplyDamage(a, 100)
	if !Revive(a, 0) {
		t.Fatal("Revive failed on dead actor")
	}
	if !a.Alive || a.Stats.HP != 1 {
		t.Errorf("alive=%v hp=%d, want true 1", a.Alive, a.Stats.HP)
	}

	ApplyDamage(a, 100)
	Revive(a, 9999)
	if a.Stats.HP != 40 {
		t.Errorf("HP = %d, want 40", a.Stats.HP)
	}
}

func TestModifyStat(t *testing.T) {
	a := newActor()

	if got, _ := ModifyStat(a, "atk", -10); got != -6 || a.Stats.Atk != 0 {
		t.Errorf("atk change=%d atk=%d, want -6 0", got, a.Stats.Atk)
	}
	if _, err := ModifyStat(a, "maxHp", -20); err != nil {
		t.Fatal(err)
	}
	if a.Stats.MaxHP != 20 || a.Stats.HP != 20 {
		t.Errorf("maxHp=%d hp=%d, want 20 20", a.Stats.MaxHP, a.Stats.HP)
	}
	if _, err := ModifyStat(a, "luck", 1); err == nil {
		t.Error("unknown stat should error")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{2.4, 2}, {2.5, 3}, {-2.5, -2}, {math.NaN(), 0}, {math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
