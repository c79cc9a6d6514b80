// Package save implements JSON serialization and deserialization of battle
// state.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// SaveData is the JSON-serializable save format. The battle carries its
// RNG seed and draw position, so a loaded battle continues the same draw
// stream.
type SaveData struct {
	Version string             `json:"version"`
	Game    string             `json:"game"`
	Battle  *types.BattleState `json:"battle"`
}

// Save serializes battle state to JSON bytes.
func Save(s *types.BattleState, t *state.Tables) ([]byte, error) {
	data := SaveData{
		Version: t.Game.Version,
		Game:    t.Game.Title,
		Battle:  s,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData and checks that the battle's
// id lists agree with its actor map.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	b := sd.Battle
	if b == nil {
		return nil, errors.New("save has no battle")
	}

	state.EnsureMaps(b)

	for _, list := range [][]string{b.TurnOrder, b.Players, b.Enemies} {
		for _, id := range list {
			if b.Actors[id] == nil {
				return nil, fmt.Errorf("save references unknown actor %q", id)
			}
		}
	}
	if len(b.TurnOrder) > 0 && (b.TurnIndex < 0 || b.TurnIndex >= len(b.TurnOrder)) {
		return nil, fmt.Errorf("save turn index %d out of range", b.TurnIndex)
	}
	return &sd, nil
}

// ApplySave replaces the contents of s with the loaded battle.
func ApplySave(s *types.BattleState, sd *SaveData) {
	*s = *sd.Battle
}
