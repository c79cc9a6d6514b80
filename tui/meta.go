package tui

import (
	"fmt"
	"strings"

	"github.com/nathoo/battlecore/cli"
)

// metaFunc runs one slash command. quit ends the program.
type metaFunc func(m *Model, arg string) (out []string, quit bool)

var metaCommands = map[string]metaFunc{
	"/quit":  metaQuit,
	"/exit":  metaQuit,
	"/save":  (*Model).metaSave,
	"/load":  (*Model).metaLoad,
	"/help":  metaHelp,
	"/state": func(m *Model, _ string) ([]string, bool) { return cli.StateLines(m.engine.State), false },
	"/trace": (*Model).metaTrace,
}

// handleMeta runs a slash command line. Only the first argument is used.
func (m *Model) handleMeta(line string) ([]string, bool) {
	name, rest, _ := strings.Cut(line, " ")
	arg, _, _ := strings.Cut(strings.TrimSpace(rest), " ")
	run, ok := metaCommands[name]
	if !ok {
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", name)}, false
	}
	return run(m, arg)
}

func metaQuit(*Model, string) ([]string, bool) { return []string{"Goodbye."}, true }

func metaHelp(*Model, string) ([]string, bool) {
	return append(cli.HelpLines(), "", "Keys: PgUp/PgDn scroll, Up/Down history, Tab completes names"), false
}

func (m *Model) metaSave(name string) ([]string, bool) {
	if err := cli.SaveBattle(m.engine, m.saveDir, name); err != nil {
		return []string{"Save failed: " + err.Error()}, false
	}
	return []string{fmt.Sprintf("Battle saved to %s.", slotName(name))}, false
}

func (m *Model) metaLoad(name string) ([]string, bool) {
	turn, err := cli.LoadBattle(m.engine, m.saveDir, name)
	if err != nil {
		return []string{"Load failed: " + err.Error()}, false
	}
	out := []string{fmt.Sprintf("Battle loaded from %s (turn %d).", slotName(name), turn)}
	return append(out, m.engine.Describe()...), false
}

func (m *Model) metaTrace(string) ([]string, bool) {
	m.trace = !m.trace
	state := "disabled"
	if m.trace {
		state = "enabled"
	}
	return []string{"Trace output " + state + "."}, false
}

// slotName is how a save slot is reported; the empty name is the
// quicksave.
func slotName(name string) string {
	if name == "" {
		return "quicksave"
	}
	return name
}
