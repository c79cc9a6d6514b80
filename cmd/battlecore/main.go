// BattleCore runs a deterministic, data-driven turn-based battle.
// Usage: battlecore [flags] <content_directory>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nathoo/battlecore/cli"
	"github.com/nathoo/battlecore/engine"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/loader"
	"github.com/nathoo/battlecore/telemetry"
	"github.com/nathoo/battlecore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: battlecore [--version] [--list] [--plain] [--script <file>] [--trace] [--debug] [--seed <n>] [--player <id>]... [--enemy <id[:level]>]... <content_directory>"

// options holds the parsed command line.
type options struct {
	version    bool
	list       bool
	plain      bool
	trace      bool
	debug      bool
	scriptFile string
	contentDir string
	seed       uint32
	seedSet    bool
	players    []string
	enemies    []engine.EnemyRef
}

func parseArgs(args []string) (options, error) {
	var o options
	next := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--version":
			o.version = true
		case "--list":
			o.list = true
		case "--plain":
			o.plain = true
		case "--trace":
			o.trace = true
		case "--debug":
			o.debug = true
		case "--script":
			v, err := next(&i, arg)
			if err != nil {
				return o, err
			}
			o.scriptFile = v
		case "--seed":
			v, err := next(&i, arg)
			if err != nil {
				return o, err
			}
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return o, fmt.Errorf("--seed: %w", err)
			}
			o.seed, o.seedSet = uint32(n), true
		case "--player":
			v, err := next(&i, arg)
			if err != nil {
				return o, err
			}
			o.players = append(o.players, v)
		case "--enemy":
			v, err := next(&i, arg)
			if err != nil {
				return o, err
			}
			ref, err := parseEnemy(v)
			if err != nil {
				return o, err
			}
			o.enemies = append(o.enemies, ref)
		default:
			if strings.HasPrefix(arg, "--") {
				return o, fmt.Errorf("unknown flag %s", arg)
			}
			if o.contentDir == "" {
				o.contentDir = arg
			}
		}
	}
	return o, nil
}

// parseEnemy reads "id" or "id:level".
func parseEnemy(v string) (engine.EnemyRef, error) {
	id, lvl, found := strings.Cut(v, ":")
	if id == "" {
		return engine.EnemyRef{}, fmt.Errorf("--enemy %q: missing id", v)
	}
	ref := engine.EnemyRef{ID: id, Level: 1}
	if found {
		n, err := strconv.Atoi(lvl)
		if err != nil || n < 1 {
			return engine.EnemyRef{}, fmt.Errorf("--enemy %q: level must be a positive integer", v)
		}
		ref.Level = n
	}
	return ref, nil
}

// lineup fills in the default matchup: the first player profile against
// every enemy at level 1, both in id order.
func lineup(t *state.Tables, o options) ([]string, []engine.EnemyRef, error) {
	players, enemies := o.players, o.enemies
	if len(players) == 0 {
		ids := sortedKeys(t.Players)
		if len(ids) == 0 {
			return nil, nil, errors.New("content defines no players")
		}
		players = ids[:1]
	}
	if len(enemies) == 0 {
		for _, id := range sortedKeys(t.Enemies) {
			enemies = append(enemies, engine.EnemyRef{ID: id, Level: 1})
		}
		if len(enemies) == 0 {
			return nil, nil, errors.New("content defines no enemies")
		}
	}
	return players, enemies, nil
}

// roster describes the player profiles and enemy templates a content
// directory defines.
func roster(t *state.Tables) []string {
	lines := []string{"Players:"}
	for _, id := range sortedKeys(t.Players) {
		p := t.Players[id]
		lines = append(lines, fmt.Sprintf("  %-10s %s (%d HP)", id, p.Name, p.Stats.HP))
	}
	lines = append(lines, "Enemies:")
	for _, id := range sortedKeys(t.EnemyDefs) {
		d := t.EnemyDefs[id]
		line := fmt.Sprintf("  %-10s %s (%g HP, +%g/level)", id, d.Name, d.Base.HP, d.Scale.HP)
		if len(d.Tags) > 0 {
			line += " [" + strings.Join(d.Tags, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return lines
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; OTEL_* settings may come from the shell.
	_ = godotenv.Load()

	o, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		return 1
	}
	if o.version {
		fmt.Printf("battlecore %s (commit %s, built %s)\n", version, commit, date)
		return 0
	}
	if o.contentDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	logger, err := newLogger(o.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	opts := []engine.Option{engine.WithLogger(logger)}
	if o.trace {
		shutdown, err := telemetry.Setup(context.Background(), version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error setting up tracing: %v\n", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("flushing traces", zap.Error(err))
			}
		}()
		opts = append(opts, engine.WithTracer(telemetry.Tracer("engine")))
	}

	tables, err := loader.Load(o.contentDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		return 1
	}
	if o.list {
		for _, line := range roster(tables) {
			fmt.Println(line)
		}
		return 0
	}

	players, enemies, err := lineup(tables, o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	seed := o.seed
	if !o.seedSet {
		seed = uint32(time.Now().UnixNano())
	}
	s, err := engine.StartBattle(tables, players, enemies, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting battle: %v\n", err)
		return 1
	}
	logger.Debug("battle started",
		zap.String("battle", s.ID),
		zap.Uint32("seed", seed),
		zap.Strings("players", players),
		zap.Int("enemies", len(enemies)),
	)

	eng := engine.New(tables, s, opts...)

	// Script mode: read commands from a file, force plain, echo them.
	if o.scriptFile != "" {
		f, err := os.Open(o.scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			return 1
		}
		defer f.Close()
		printTitle(tables)
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Trace = o.trace
		c.Run()
		return 0
	}

	// Plain CLI when asked or when stdout is not a terminal.
	if o.plain || !isTerminal() {
		printTitle(tables)
		c := cli.New(eng)
		c.Trace = o.trace
		c.Run()
		return 0
	}

	if err := tui.Run(eng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printTitle(t *state.Tables) {
	if t.Game.Title == "" {
		return
	}
	fmt.Printf("%s v%s by %s\n\n", t.Game.Title, t.Game.Version, t.Game.Author)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
