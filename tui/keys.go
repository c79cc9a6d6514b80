package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKey reacts to the keys the shell owns. Anything else falls
// through to the prompt.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "enter":
		next, cmd := m.submit()
		return next, cmd, true
	case "tab":
		if line, ok := complete(m.prompt.Value(), m.completions()); ok {
			m.setPrompt(line)
		}
		return m, nil, true
	case "up":
		if line, ok := m.history.Prev(m.prompt.Value()); ok {
			m.setPrompt(line)
		}
		return m, nil, true
	case "down":
		line, _ := m.history.Next()
		m.setPrompt(line)
		return m, nil, true
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) setPrompt(line string) {
	m.prompt.SetValue(line)
	m.prompt.CursorEnd()
}

// submit takes the prompt line. Slash commands are handled by the shell;
// "again" (or "g") replays the last battle command; everything else goes
// to the engine.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.prompt.Value())
	m.prompt.SetValue("")
	if line == "" {
		return m, nil
	}
	m.history.Push(line)

	if strings.HasPrefix(line, "/") {
		out, quit := m.handleMeta(line)
		m.record(line, out, true)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch strings.ToLower(line) {
	case "again", "g":
		if m.lastCmd == "" {
			m.record(line, []string{"Nothing to repeat."}, true)
			return m, nil
		}
		line = m.lastCmd
	default:
		m.lastCmd = line
	}

	s := m.engine.State
	from := s.RNGPosition
	res := m.engine.Step(line)
	out := res.Output
	if m.trace {
		if len(res.Actions) > 0 {
			out = append(out, "[trace] actions: "+strings.Join(res.Actions, ", "))
		}
		out = append(out, fmt.Sprintf("[trace] rng draws: %d (position %d)", s.RNGPosition-from, s.RNGPosition))
	}
	m.record(line, out, false)
	return m, nil
}

// logKeyMap pages the log. The arrow keys belong to the input history.
func logKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
