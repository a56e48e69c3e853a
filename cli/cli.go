// Package cli provides terminal I/O, match reports, and command dispatch
// for running league matches.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/metaleague/engine/save"
	"github.com/nathoo/metaleague/ledger"
	"github.com/nathoo/metaleague/league"
	"github.com/nathoo/metaleague/loader"
	"github.com/nathoo/metaleague/types"
)

// CLI reads commands and plays matches from loaded league content.
type CLI struct {
	Content *loader.Content
	Runner  *league.Runner
	Ledger  *ledger.Ledger // optional
	Seed    int64          // base seed for fixtures without one
	In      io.Reader
	Out     io.Writer
	SaveDir string
	Styled  bool
	Trace   bool
	// EchoInput echoes each input line after the prompt (for script playback).
	EchoInput bool

	ctx     context.Context
	played  int
	last    *types.MatchResult
	lastCmd string // for "again"/"g" repeat
}

// New creates a CLI over loaded content.
func New(content *loader.Content, runner *league.Runner) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Content: content,
		Runner:  runner,
		Seed:    content.League.Seed,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".metaleague", "results"),
	}
}

// Run loops: prompt, input, dispatch, output, until /quit or end of input.
func (c *CLI) Run(ctx context.Context) {
	c.ctx = ctx
	if name := c.Content.League.Name; name != "" {
		c.printLine(fmt.Sprintf("%s, season %d", name, c.Content.League.Season))
	}
	c.printSystem(fmt.Sprintf("%d teams, %d fixtures. Type /help for commands.",
		len(c.Content.Teams), len(c.Content.Fixtures)))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last command.
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
		c.dispatch(input)

		if ctx.Err() != nil {
			return
		}
	}
}

// dispatch runs one league command.
func (c *CLI) dispatch(input string) {
	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "teams":
		c.cmdTeams()
	case "team":
		if len(parts) < 2 {
			c.printError("usage: team <id>")
			return
		}
		c.cmdTeam(parts[1])
	case "play":
		if len(parts) < 3 {
			c.printError("usage: play <home> <away> [seed]")
			return
		}
		f := types.Fixture{Home: parts[1], Away: parts[2]}
		if len(parts) > 3 {
			seed, err := strconv.ParseInt(parts[3], 10, 64)
			if err != nil {
				c.printError(fmt.Sprintf("bad seed %q", parts[3]))
				return
			}
			f.Seed = seed
		}
		c.cmdPlay(f)
	case "matchday", "md":
		c.cmdMatchday()
	case "table":
		c.cmdTable()
	case "report":
		c.cmdReport()
	default:
		c.printError(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", parts[0]))
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should exit.
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
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Full match logs enabled.")
		} else {
			c.printSystem("Full match logs disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdTeams() {
	for _, t := range c.Content.Teams {
		bench := 0
		for _, ch := range t.Roster {
			if ch.Bench {
				bench++
			}
		}
		c.printLine(fmt.Sprintf("%-12s %-24s %2d players (%d bench)", t.ID, t.Name, len(t.Roster), bench))
	}
}

func (c *CLI) cmdTeam(id string) {
	t, ok := c.Content.Team(id)
	if !ok {
		c.printError(fmt.Sprintf("no team %q", id))
		return
	}
	c.printLine(fmt.Sprintf("%s (%s)", t.Name, t.ID))
	if t.Manager != "" {
		c.printLine("Manager: " + t.Manager)
	}
	for _, ch := range t.Roster {
		line := fmt.Sprintf("  %-12s %-3s %s", ch.ID, ch.Role, strings.Join(ch.Traits, ", "))
		if ch.Bench {
			line += " [bench]"
		}
		c.printLine(line)
	}
}

func (c *CLI) cmdPlay(f types.Fixture) {
	if f.Seed == 0 {
		f.Seed = league.FixtureSeed(c.Seed, c.played, f)
	}
	c.played++
	out, err := c.Runner.RunMatchday(c.ctx, c.Content.Teams, []types.Fixture{f}, c.Seed)
	if err != nil {
		c.printError(err.Error())
		return
	}
	c.last = out[0].Result
	WriteReport(c.Out, c.last, ReportOptions{Styled: c.Styled, Verbose: c.Trace})
}

func (c *CLI) cmdMatchday() {
	if len(c.Content.Fixtures) == 0 {
		c.printSystem("No fixtures scheduled.")
		return
	}
	out, err := c.Runner.RunMatchday(c.ctx, c.Content.Teams, c.Content.Fixtures, c.Seed)
	for i, o := range out {
		if o.Err != nil {
			c.printError(fmt.Sprintf("%d. %s vs %s: %v", i+1, o.Fixture.Home, o.Fixture.Away, o.Err))
			continue
		}
		c.last = o.Result
		c.printLine(fmt.Sprintf("%d. %s", i+1, Headline(o.Result)))
	}
	if err != nil {
		c.printSystem("Some fixtures were not played.")
	}
	if c.Ledger != nil {
		c.cmdTable()
	}
}

func (c *CLI) cmdTable() {
	if c.Ledger == nil {
		c.printSystem("No ledger open. Start with --db to keep a table.")
		return
	}
	table, err := c.Ledger.Standings(c.ctx)
	if err != nil {
		c.printError(err.Error())
		return
	}
	WriteTable(c.Out, table, c.Styled)
}

func (c *CLI) cmdReport() {
	if c.last == nil {
		c.printSystem("No match played yet.")
		return
	}
	WriteReport(c.Out, c.last, ReportOptions{Styled: c.Styled, Verbose: c.Trace})
}

func (c *CLI) cmdSave(name string) {
	if c.last == nil {
		c.printSystem("Nothing to save: no match played yet.")
		return
	}
	if name == "" {
		name = "last"
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if err := save.WriteFile(path, c.last); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Result saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "last"
	}
	sd, err := save.ReadFile(filepath.Join(c.SaveDir, name+".json"))
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.last = &sd.Result
	c.printSystem(fmt.Sprintf("Result loaded from %s.", name))
	WriteReport(c.Out, c.last, ReportOptions{Styled: c.Styled, Verbose: c.Trace})
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  - Save the last result (default: last)",
		"  /load [name]  - Load and show a saved result",
		"  /quit         - Exit",
		"  /help         - Show this help",
		"  /state        - Show session state",
		"  /trace        - Toggle full convergence and trait logs",
		"",
		"League commands:",
		"  teams                      - List teams",
		"  team <id>                  - Show a roster",
		"  play <home> <away> [seed]  - Play one match",
		"  matchday (md)              - Play every scheduled fixture",
		"  table                      - Show standings",
		"  report                     - Show the last match again",
		"  again (g)                  - Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	c.printSystem(fmt.Sprintf("Base seed: %d", c.Seed))
	c.printSystem(fmt.Sprintf("Matches played: %d", c.played))
	ids := make([]string, 0, len(c.Content.Traits))
	for id := range c.Content.Traits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	c.printSystem(fmt.Sprintf("Traits: %s", strings.Join(ids, ", ")))
	if c.last != nil {
		c.printSystem(fmt.Sprintf("Last: %s", Headline(c.last)))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintln(c.Out, painter{styled: c.Styled}.paint(styleSystem, "["+text+"]"))
}

func (c *CLI) printError(text string) {
	fmt.Fprintln(c.Out, painter{styled: c.Styled}.paint(styleError, text))
}
