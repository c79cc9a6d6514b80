package tui

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/battlecore/engine"
)

// chromeRows is the screen space below the log: status bar and prompt.
const chromeRows = 2

// Model is the Bubble Tea model for a battle. It owns the engine for the
// lifetime of the program; every command goes through engine.Step.
type Model struct {
	engine *engine.Engine

	log     viewport.Model
	prompt  textinput.Model
	history *History

	transcript []logLine

	width, height int
	ready         bool
	trace         bool
	quitting      bool
	lastCmd       string
	saveDir       string
}

// outputMsg carries lines produced outside Update, such as the opening
// narration, into the transcript.
type outputMsg struct {
	lines []string
}

// New creates a model for eng. Saves go under ~/.battlecore/saves.
func New(eng *engine.Engine) Model {
	p := textinput.New()
	p.Prompt = "> "
	p.PromptStyle = styleInputPrompt
	p.CharLimit = 256
	p.Focus()

	home, _ := os.UserHomeDir()
	return Model{
		engine:  eng,
		prompt:  p,
		history: NewHistory(100),
		saveDir: filepath.Join(home, ".battlecore", "saves"),
	}
}

// Run drives eng from an alternate-screen terminal session until the
// player quits.
func Run(eng *engine.Engine) error {
	_, err := tea.NewProgram(New(eng), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

// initialOutput opens the battle: the game title, then whatever Begin
// narrates up to the first player decision.
func (m Model) initialOutput() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		var lines []string
		if title := gameTitle(eng); title != "" {
			lines = append(lines, title, "")
		}
		return outputMsg{lines: append(lines, eng.Begin()...)}
	}
}

func gameTitle(eng *engine.Engine) string {
	g := eng.Tables.Game
	title := g.Title
	if title == "" {
		return ""
	}
	if g.Version != "" {
		title += " v" + g.Version
	}
	if g.Author != "" {
		title += " by " + g.Author
	}
	return title
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	case outputMsg:
		m.record("", msg.lines, false)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// resize fits the log to the window, creating it on the first size
// message.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	rows := max(h-chromeRows, 1)
	if m.ready {
		m.log.Width, m.log.Height = w, rows
	} else {
		m.log = viewport.New(w, rows)
		m.log.KeyMap = logKeyMap()
		m.ready = true
	}
	m.redraw()
}

func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.ready:
		return "Loading..."
	}
	return m.log.View() + "\n" + m.renderStatusBar() + "\n" + m.prompt.View()
}
