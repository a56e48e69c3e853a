// MetaLeague plays fantasy league matches where every character is a chess
// board and rival officers on the same square fight it out.
// Usage: metaleague [--version] [--plain] [--trace] [--config <file>] [--seed <n>]
//
//	[--engine <path>] [--db <file>] [--script <file>] [--matchday] <league_directory>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nathoo/metaleague/cli"
	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/ledger"
	"github.com/nathoo/metaleague/league"
	"github.com/nathoo/metaleague/loader"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: metaleague [--version] [--plain] [--trace] [--config <file>] [--seed <n>] " +
	"[--engine <path>] [--db <file>] [--script <file>] [--matchday] <league_directory>\n"

func main() {
	plain := false
	trace := false
	matchday := false
	var (
		leagueDir, configFile, scriptFile, enginePath, dbPath string
		seed                                                  int64
		seedSet                                               bool
	)

	args := os.Args[1:]
	value := func(i *int, flag string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("metaleague %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--matchday":
			matchday = true
		case "--config":
			configFile = value(&i, "--config")
		case "--script":
			scriptFile = value(&i, "--script")
		case "--engine":
			enginePath = value(&i, "--engine")
		case "--db":
			dbPath = value(&i, "--db")
		case "--seed":
			s := value(&i, "--seed")
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %q is not an integer\n", s)
				os.Exit(1)
			}
			seed, seedSet = n, true
		default:
			if leagueDir == "" {
				leagueDir = args[i]
			}
		}
	}

	if leagueDir == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	log, err := newLogger(trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if enginePath != "" {
		cfg.Selector.EnginePath = enginePath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Load and compile Lua league content.
	content, err := loader.Load(leagueDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading league: %v\n", err)
		os.Exit(1)
	}

	opts := []league.Option{league.WithLogger(log)}
	if cfg.Selector.EnginePath != "" {
		opts = append(opts, league.WithSelectors(func() (board.MoveSelector, io.Closer, error) {
			e, err := board.NewEngine(cfg.Selector)
			if err != nil {
				return nil, nil, err
			}
			return e, e, nil
		}))
	}

	var led *ledger.Ledger
	if dbPath != "" {
		led, err = ledger.Open(dbPath, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
			os.Exit(1)
		}
		defer led.Close()
		opts = append(opts, league.WithRecorder(led))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := cli.New(content, league.New(cfg, content.Traits, opts...))
	c.Ledger = led
	c.Trace = trace
	c.Styled = !plain && isTerminal()
	if seedSet {
		c.Seed = seed
	} else if c.Seed == 0 {
		c.Seed = cfg.Seed
	}

	// Matchday mode: play the schedule once and exit.
	if matchday {
		c.In = strings.NewReader("matchday\n")
		c.Run(ctx)
		return
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
		c.Styled = false
	}
	c.Run(ctx)
}

// newLogger logs warnings in production form, or everything in development
// form with --trace. Logs go to stderr so reports stay clean.
func newLogger(trace bool) (*zap.Logger, error) {
	if trace {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zc.Encoding = "console"
	return zc.Build()
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
