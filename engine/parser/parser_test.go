package parser

import (
	"testing"

	"github.com/nathoo/battlecore/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{"empty string", "", types.Intent{}},
		{"whitespace only", "   ", types.Intent{}},

		// Basic verbs
		{"wait", "wait", types.Intent{Verb: "wait"}},
		{"flee", "flee", types.Intent{Verb: "flee"}},
		{"look", "look", types.Intent{Verb: "look"}},

		// Skills
		{"use skill", "use fireball", types.Intent{Verb: "use", Object: "fireball"}},
		{"use on target", "use fireball on slime", types.Intent{Verb: "use", Object: "fireball", Target: "slime"}},
		{"cast alias", "cast Fire Ball at the Big Slime", types.Intent{Verb: "use", Object: "fire ball", Target: "big slime"}},
		{"use skill phrase", "use skill heal on cleric", types.Intent{Verb: "use", Object: "heal", Target: "cleric"}},

		// Attack shorthand
		{"attack bare", "attack", types.Intent{Verb: "attack"}},
		{"attack target", "attack the slime", types.Intent{Verb: "attack", Target: "slime"}},
		{"hit alias", "hit bat", types.Intent{Verb: "attack", Target: "bat"}},
		{"attack with skill", "attack slime with slash", types.Intent{Verb: "attack", Object: "slash", Target: "slime"}},

		// Items
		{"item", "item potion", types.Intent{Verb: "item", Object: "potion"}},
		{"drink alias", "drink a potion", types.Intent{Verb: "item", Object: "potion"}},
		{"use item phrase", "use item ether on mage", types.Intent{Verb: "item", Object: "ether", Target: "mage"}},
		{"throw at", "throw bomb at slime", types.Intent{Verb: "item", Object: "bomb", Target: "slime"}},

		// Escape and pass
		{"run away", "run away", types.Intent{Verb: "flee"}},
		{"run alias", "run", types.Intent{Verb: "flee"}},
		{"z alias", "z", types.Intent{Verb: "wait"}},

		// Information
		{"look at", "look at slime", types.Intent{Verb: "look", Object: "slime"}},
		{"x alias", "x bat", types.Intent{Verb: "look", Object: "bat"}},
		{"inventory", "i", types.Intent{Verb: "items"}},
		{"skills", "moves", types.Intent{Verb: "skills"}},

		// Unknown verbs pass through
		{"unknown", "dance wildly", types.Intent{Verb: "dance", Object: "wildly"}},
		{"case insensitive", "USE Heal", types.Intent{Verb: "use", Object: "heal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
