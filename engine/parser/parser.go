// Package parser converts battle commands into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/battlecore/types"
)

var verbAliases = map[string]string{
	// Skills
	"cast":    "use",
	"perform": "use",

	// Basic attack (first known skill unless one is named)
	"hit":    "attack",
	"fight":  "attack",
	"strike": "attack",
	"kill":   "attack",
	"smash":  "attack",

	// Items
	"drink":   "item",
	"quaff":   "item",
	"eat":     "item",
	"consume": "item",
	"throw":   "item",
	"apply":   "item",

	// Escape
	"run":     "flee",
	"escape":  "flee",
	"retreat": "flee",

	// Pass the turn
	"z":      "wait",
	"pass":   "wait",
	"skip":   "wait",
	"rest":   "wait",
	"defend": "wait",

	// Information
	"l":         "look",
	"x":         "look",
	"examine":   "look",
	"inspect":   "look",
	"check":     "look",
	"status":    "look",
	"i":         "items",
	"inv":       "items",
	"inventory": "items",
	"bag":       "items",
	"abilities": "skills",
	"moves":     "skills",
	"spells":    "skills",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "against": true, "onto": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	// "attack slime" names the target; "attack slime with slash" also
	// names the skill.
	if verb == "attack" {
		object, target = target, object
	}

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "run away", "use item", "look at" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "run", "get":
		if words[1] == "away" || words[1] == "out" {
			return append([]string{"flee"}, words[2:]...)
		}
	case "use":
		if words[1] == "item" {
			return append([]string{"item"}, words[2:]...)
		}
		if words[1] == "skill" {
			return append([]string{"use"}, words[2:]...)
		}
	case "look":
		if words[1] == "at" {
			return append([]string{"look"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
