package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

func testBattle() (*state.Tables, *types.BattleState) {
	t := &state.Tables{
		Skills: map[string]*types.RuntimeSkill{
			"fire_ball": {RuntimeAction: types.RuntimeAction{ID: "fire_ball", Name: "Fire Ball"}},
			"ice_ball":  {RuntimeAction: types.RuntimeAction{ID: "ice_ball", Name: "Ice Ball"}},
			"slash":     {RuntimeAction: types.RuntimeAction{ID: "slash", Name: "Slash"}},
		},
		Items: map[string]*types.RuntimeItem{
			"potion":     {RuntimeAction: types.RuntimeAction{ID: "potion", Name: "Potion"}},
			"hi_potion":  {RuntimeAction: types.RuntimeAction{ID: "hi_potion", Name: "Hi-Potion"}},
			"smoke_bomb": {RuntimeAction: types.RuntimeAction{ID: "smoke_bomb", Name: "Smoke Bomb"}},
		},
	}
	hero := &types.Actor{ID: "hero", Name: "Hero", Alive: true, Skills: []string{"fire_ball", "ice_ball", "slash"}}
	slime := &types.Actor{ID: "slime", Name: "Slime", Alive: true}
	slime2 := &types.Actor{ID: "slime", Name: "Slime", Alive: true}
	bat := &types.Actor{ID: "bat", Name: "Cave Bat", Alive: true}
	s := state.NewBattle([]*types.Actor{hero}, []*types.Actor{slime, slime2, bat}, []types.ItemQty{
		{ID: "potion", Qty: 2}, {ID: "hi_potion", Qty: 1}, {ID: "smoke_bomb", Qty: 1},
	}, 1)
	return t, s
}

func TestActor(t *testing.T) {
	_, s := testBattle()
	tests := []struct {
		name string
		want string
	}{
		{"hero", "hero"},
		{"Hero", "hero"},
		{"slime", "slime"}, // exact id beats the word match on "Slime 2"
		{"slime 2", "slime-2"},
		{"slime-2", "slime-2"},
		{"bat", "bat"},
		{"cave bat", "bat"},
		{"cave", "bat"},
	}
	for _, tt := range tests {
		got, err := Actor(s, tt.name)
		if err != nil {
			t.Errorf("Actor(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Actor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestActor_NotFound(t *testing.T) {
	_, s := testBattle()
	_, err := Actor(s, "dragon")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Kind != "target" {
		t.Errorf("Kind = %q, want target", nf.Kind)
	}
	if err.Error() != `there is no target called "dragon"` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestSkill(t *testing.T) {
	tables, s := testBattle()
	hero := s.Actors["hero"]
	tests := []struct {
		name string
		want string
	}{
		{"fire_ball", "fire_ball"},
		{"fire ball", "fire_ball"},
		{"Fire Ball", "fire_ball"},
		{"fire", "fire_ball"},
		{"slash", "slash"},
	}
	for _, tt := range tests {
		got, err := Skill(tables, hero, tt.name)
		if err != nil {
			t.Errorf("Skill(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Skill(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSkill_Ambiguous(t *testing.T) {
	tables, s := testBattle()
	_, err := Skill(tables, s.Actors["hero"], "ball")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("candidates = %v, want 2", amb.Candidates)
	}
	if err.Error() != "which ball? (Fire Ball, Ice Ball)" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestSkill_UnknownToActor(t *testing.T) {
	tables, s := testBattle()
	tables.Skills["heal"] = &types.RuntimeSkill{RuntimeAction: types.RuntimeAction{ID: "heal", Name: "Heal"}}
	_, err := Skill(tables, s.Actors["hero"], "heal")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "skill" {
		t.Fatalf("expected skill NotFoundError, got %v", err)
	}
}

func TestItem(t *testing.T) {
	tables, s := testBattle()
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"potion", "potion", false},
		{"hi-potion", "hi_potion", false},
		{"hi potion", "hi_potion", false},
		{"smoke", "smoke_bomb", false},
		{"elixir", "", true},
	}
	for _, tt := range tests {
		got, err := Item(tables, s, tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Item(%q) = %q, want error", tt.name, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Item(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Item(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
