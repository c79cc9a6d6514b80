package tui

import (
	"sort"
	"strings"
)

// verbs offered when completing the first word.
var verbs = []string{"attack", "use", "cast", "item", "drink", "throw", "wait", "flee", "look", "skills", "items", "again"}

// completions lists the words Tab can complete: verbs, the acting
// player's skill names, carried item names and actor names.
func (m Model) completions() []string {
	s := m.engine.State
	t := m.engine.Tables
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		name = strings.ToLower(name)
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, v := range verbs {
		add(v)
	}
	if a := s.Actors[m.engine.CurrentActor()]; a != nil {
		for _, id := range a.Skills {
			if sk := t.Skills[id]; sk != nil {
				add(sk.Name)
			}
		}
	}
	for _, it := range s.Inventory {
		if item := t.Items[it.ID]; item != nil {
			add(item.Name)
		}
	}
	for _, id := range append(append([]string(nil), s.Players...), s.Enemies...) {
		if a := s.Actors[id]; a != nil {
			add(a.Name)
		}
	}
	add("on")
	sort.Strings(out)
	return out
}

// complete extends the last word of line to the longest prefix shared by
// the candidates it starts. ok is false when nothing would change.
func complete(line string, candidates []string) (string, bool) {
	cut := strings.LastIndex(line, " ") + 1
	word := strings.ToLower(line[cut:])
	if word == "" {
		return line, false
	}

	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return line, false
	}

	common := matches[0]
	for _, c := range matches[1:] {
		for !strings.HasPrefix(c, common) {
			common = common[:len(common)-1]
		}
	}
	if len(matches) == 1 && !strings.Contains(common, " ") {
		common += " "
	}
	if common == word {
		return line, false
	}
	return line[:cut] + common, true
}
