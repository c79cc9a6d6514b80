package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleTurn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Bold(true)

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleHeal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	styleCrit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))

	styleOutcome = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleHPGood = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	styleHPLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleHPDown = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindTurn
	kindDamage
	kindHeal
	kindCrit
	kindStatus
	kindOutcome
	kindSystem
	kindError
	kindTrace
	kindInput // echoed command
	kindShell // slash command output
)

// Phrases the engine uses when a command or action is refused.
var errorPhrases = []string{
	"lacks the", "is not ready yet", "has no charges left", "cannot use",
	"does not know", "There is no", "Not enough", "I don't know how",
	"It is not your turn.", "is down and cannot act", "The battle is over",
	"The battle is already over", "Nothing happens:", "has no valid target",
	"is not a valid target", "which ", "there is no ", "use what?",
	"cannot be revived",
}

// classifyLine determines what kind of battle log line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "-- Turn"):
		return kindTurn
	case strings.HasPrefix(line, "Victory!"), strings.HasPrefix(line, "Defeat..."),
		strings.HasSuffix(line, "flees the battle!"), strings.HasPrefix(line, "The party gains"):
		return kindOutcome
	case strings.HasPrefix(line, "Critical hit!"):
		return kindCrit
	case containsAny(line, errorPhrases):
		return kindError
	case strings.HasSuffix(line, " damage."), strings.HasSuffix(line, " is defeated!"), strings.Contains(line, " misses "):
		return kindDamage
	case strings.Contains(line, " recovers "), strings.Contains(line, " is revived"), strings.Contains(line, " restores "):
		return kindHeal
	case containsAny(line, statusPhrases):
		return kindStatus
	default:
		return kindNarration
	}
}

var statusPhrases = []string{
	" is affected by ", " wears off ", " is cleansed of ", " is taunted by ",
	" intensifies", " is renewed.", " shield", " is no longer taunted.",
}

func containsAny(line string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindTurn:
		return styleTurn.Render(line)
	case kindDamage:
		return styleDamage.Render(line)
	case kindHeal:
		return styleHeal.Render(line)
	case kindCrit:
		return styleCrit.Render(line)
	case kindStatus:
		return styleStatus.Render(line)
	case kindOutcome:
		return styleOutcome.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	case kindInput:
		return stylePlayerInput.Render(line)
	case kindShell:
		return styledSystemMsg(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
