// Package resolve maps names typed in battle commands to actor, skill and
// item IDs.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name. Kind says what was
// searched for ("target", "skill", "item").
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "target"
	}
	return fmt.Sprintf("there is no %s called %q", kind, e.Name)
}

// candidate is one resolvable thing: its id and display name.
type candidate struct {
	id   string
	name string
}

// Actor resolves a target name among the battle's actors, players first.
// Dead actors still resolve; whether they are valid targets is the
// executor's call.
func Actor(s *types.BattleState, name string) (string, error) {
	var cands []candidate
	for _, id := range append(append([]string(nil), s.Players...), s.Enemies...) {
		cands = append(cands, candidate{id: id, name: state.DisplayName(s, id)})
	}
	return match("target", name, cands)
}

// Skill resolves a skill name among the skills the actor knows.
func Skill(t *state.Tables, a *types.Actor, name string) (string, error) {
	var cands []candidate
	for _, id := range a.Skills {
		c := candidate{id: id, name: id}
		if sk := t.Skills[id]; sk != nil && sk.Name != "" {
			c.name = sk.Name
		}
		cands = append(cands, c)
	}
	return match("skill", name, cands)
}

// Item resolves an item name among the shared inventory.
func Item(t *state.Tables, s *types.BattleState, name string) (string, error) {
	var cands []candidate
	for _, it := range s.Inventory {
		c := candidate{id: it.ID, name: it.ID}
		if item := t.Items[it.ID]; item != nil && item.Name != "" {
			c.name = item.Name
		}
		cands = append(cands, c)
	}
	return match("item", name, cands)
}

// match picks one candidate. Exact id or name matches win over partial
// word matches; several matches at the same level are ambiguous.
func match(kind, name string, cands []candidate) (string, error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))

	var exact, partial []candidate
	for _, c := range cands {
		switch {
		case matchesExact(c, nameLower):
			exact = append(exact, c)
		case matchesWord(c, nameLower):
			partial = append(partial, c)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = partial
	}
	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, Name: name}
	case 1:
		return matches[0].id, nil
	default:
		names := make([]string, len(matches))
		for i, c := range matches {
			names[i] = c.name
		}
		return "", &AmbiguityError{Name: name, Candidates: names}
	}
}

// matchesExact checks the id, the display name, and the id with spaces
// normalized to underscores ("fire ball" matches "fire_ball").
func matchesExact(c candidate, nameLower string) bool {
	idLower := strings.ToLower(c.id)
	if idLower == nameLower || strings.ToLower(c.name) == nameLower {
		return true
	}
	return strings.ReplaceAll(nameLower, " ", "_") == idLower
}

// matchesWord checks whether the query equals any word of the name
// ("slime" matches "Big Slime") or any dash/underscore part of the id.
func matchesWord(c candidate, nameLower string) bool {
	for _, word := range strings.Fields(strings.ToLower(c.name)) {
		if word == nameLower {
			return true
		}
	}
	for _, part := range strings.FieldsFunc(strings.ToLower(c.id), func(r rune) bool { return r == '_' || r == '-' }) {
		if part == nameLower {
			return true
		}
	}
	return false
}
