package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/battlecore/types"
)

// hpStyle picks a color for an HP readout: green above half, amber at or
// below half, red when down.
func hpStyle(a *types.Actor) lipgloss.Style {
	switch {
	case !a.Alive || a.Stats.HP <= 0:
		return styleHPDown
	case a.Stats.MaxHP > 0 && a.Stats.HP*2 <= a.Stats.MaxHP:
		return styleHPLow
	default:
		return styleHPGood
	}
}

// vitals renders "Name 12/30" for each listed actor, or "Name down".
func vitals(s *types.BattleState, ids []string, styled bool) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		a := s.Actors[id]
		if a == nil {
			continue
		}
		text := fmt.Sprintf("%s %d/%d", a.Name, a.Stats.HP, a.Stats.MaxHP)
		if !a.Alive {
			text = a.Name + " down"
		}
		if styled {
			text = hpStyle(a).Inherit(styleStatusBar).Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// turnText is the right side of the status bar: the outcome once the
// battle ends, otherwise the turn and who acts.
func turnText(s *types.BattleState, current string) string {
	if s.Ended != nil {
		return fmt.Sprintf("T:%d %s ", s.Turn, strings.ToUpper(string(s.Ended.Reason)))
	}
	name := current
	if a := s.Actors[current]; a != nil {
		name = a.Name
	}
	return fmt.Sprintf("T:%d %s to act ", s.Turn, name)
}

// renderStatusBar produces a full-width inverted status line showing
// both sides' HP and whose turn it is. Enemy vitals are dropped first
// when the line is too narrow.
func (m Model) renderStatusBar() string {
	s := m.engine.State
	right := turnText(s, m.engine.CurrentActor())

	left := " " + vitals(s, s.Players, false) + " | " + vitals(s, s.Enemies, false)
	styledLeft := " " + vitals(s, s.Players, true) + styleStatusBar.Render(" | ") + vitals(s, s.Enemies, true)
	if lipgloss.Width(left)+lipgloss.Width(right)+2 > m.width {
		left = " " + vitals(s, s.Players, false)
		styledLeft = " " + vitals(s, s.Players, true)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := styledLeft + styleStatusBar.Render(strings.Repeat(" ", gap)+right)
	return styleStatusBar.Width(m.width).Render(bar)
}
