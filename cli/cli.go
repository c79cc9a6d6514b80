// Package cli provides plain terminal I/O, output formatting, and
// meta-command dispatch for a battle.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/battlecore/engine"
	"github.com/nathoo/battlecore/engine/save"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// CLI handles line-based interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Tables    *state.Tables
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		Tables:  eng.Tables,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".battlecore", "saves"),
	}
}

// Run opens the battle, then loops: prompt, input, dispatch, output. It
// returns when input runs out or the player quits.
func (c *CLI) Run() {
	c.printLines(c.Engine.Begin())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		before := c.Engine.State.RNGPosition
		result := c.Engine.Step(input)
		c.printLines(result.Output)
		if c.Trace {
			c.printTrace(result, before)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should end.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true
	case "/save":
		c.cmdSave(arg)
	case "/load":
		c.cmdLoad(arg)
	case "/help":
		c.printLines(HelpLines())
	case "/state":
		c.printLines(StateLines(c.Engine.State))
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdSave(name string) {
	if err := SaveBattle(c.Engine, c.SaveDir, name); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Battle saved to %s.", saveName(name)))
}

func (c *CLI) cmdLoad(name string) {
	turn, err := LoadBattle(c.Engine, c.SaveDir, name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Battle loaded from %s (turn %d).", saveName(name), turn))
	c.printLines(c.Engine.Describe())
}

func saveName(name string) string {
	if name == "" {
		return "quicksave"
	}
	return name
}

// SaveBattle writes the engine's battle to dir/<name>.json.
func SaveBattle(eng *engine.Engine, dir, name string) error {
	data, err := save.Save(eng.State, eng.Tables)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, saveName(name)+".json"), data, 0o644)
}

// LoadBattle replaces the engine's battle with dir/<name>.json and returns
// the restored turn number.
func LoadBattle(eng *engine.Engine, dir, name string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, saveName(name)+".json"))
	if err != nil {
		return 0, err
	}
	sd, err := save.Load(data)
	if err != nil {
		return 0, err
	}
	save.ApplySave(eng.State, sd)
	return eng.State.Turn, nil
}

// HelpLines lists the meta-commands and battle commands.
func HelpLines() []string {
	return []string{
		"System:",
		"  /save [name]  Save the battle (default: quicksave)",
		"  /load [name]  Load a battle (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump the battle state",
		"  /trace        Toggle trace output",
		"",
		"Battle commands:",
		"  use <skill> [on <target>]   Use a skill (also: cast)",
		"  attack [<target>]           Use your first skill",
		"  item <item> [on <target>]   Use an item (also: drink, throw)",
		"  wait (z)                    Pass the turn",
		"  flee (run)                  Try to escape",
		"  look (l)                    Show the battlefield",
		"  skills / items              List what you can use",
		"  again (g)                   Repeat your last command",
	}
}

// StateLines renders a debug dump of the battle state.
func StateLines(s *types.BattleState) []string {
	lines := []string{
		fmt.Sprintf("[Battle: %s]", s.ID),
		fmt.Sprintf("[Turn: %d, index %d of %v]", s.Turn, s.TurnIndex, s.TurnOrder),
		fmt.Sprintf("[RNG: seed %d, position %d]", s.RNGSeed, s.RNGPosition),
		fmt.Sprintf("[Inventory: %v]", s.Inventory),
	}
	if s.Ended != nil {
		lines = append(lines, fmt.Sprintf("[Ended: %s]", s.Ended.Reason))
	}
	for _, id := range s.TurnOrder {
		a := s.Actors[id]
		lines = append(lines, fmt.Sprintf("[%s: %+v alive=%t statuses=%v]", id, a.Stats, a.Alive, a.Statuses))
	}
	for _, kv := range []struct {
		name string
		m    map[string]map[string]int
	}{{"Cooldowns", s.Cooldowns}, {"Charges", s.Charges}} {
		keys := make([]string, 0, len(kv.m))
		for k := range kv.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("[%s %s: %v]", kv.name, k, kv.m[k]))
		}
	}
	return lines
}

func (c *CLI) printTrace(result types.Result, rngBefore int64) {
	if len(result.Actions) > 0 {
		c.printSystem(fmt.Sprintf("trace: actions %v", result.Actions))
	}
	c.printSystem(fmt.Sprintf("trace: rng draws %d (position %d)",
		c.Engine.State.RNGPosition-rngBefore, c.Engine.State.RNGPosition))
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
