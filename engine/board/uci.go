package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

// ErrUnsupportedBoard is returned by Engine for boards it cannot read.
var ErrUnsupportedBoard = errors.New("board does not expose a chess position")

type positioner interface {
	Position() *chess.Position
}

// Engine asks an external UCI engine for moves. Search depth follows the
// character's SPD and current stamina; think time follows FS.
type Engine struct {
	mu  sync.Mutex
	eng *uci.Engine
	cfg config.SelectorConfig
}

// NewEngine starts the engine binary at cfg.EnginePath.
func NewEngine(cfg config.SelectorConfig) (*Engine, error) {
	if cfg.EnginePath == "" {
		return nil, errors.New("no engine path configured")
	}
	eng, err := uci.New(cfg.EnginePath)
	if err != nil {
		return nil, fmt.Errorf("starting engine %s: %w", cfg.EnginePath, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("initialising engine %s: %w", cfg.EnginePath, err)
	}
	return &Engine{eng: eng, cfg: cfg}, nil
}

// SelectMove runs one search. Searches on a shared Engine are serialized
// and each is bounded by MoveTime, so a request whose context ends while
// it waits for the engine is dropped without searching.
func (e *Engine) SelectMove(ctx context.Context, b Board, c *types.Character) (string, error) {
	p, ok := b.(positioner)
	if !ok {
		return "", ErrUnsupportedBoard
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmdPos := uci.CmdPosition{Position: p.Position()}
	cmdGo := uci.CmdGo{Depth: Depth(e.cfg, c), MoveTime: MoveTime(e.cfg, c)}
	if err := e.eng.Run(cmdPos, cmdGo); err != nil {
		return "", fmt.Errorf("engine search: %w", err)
	}
	best := e.eng.SearchResults().BestMove
	if best == nil {
		return "", ErrNoMoves
	}
	return best.String(), nil
}

// Close stops the engine process.
func (e *Engine) Close() error {
	return e.eng.Close()
}

// Depth maps SPD onto [MinDepth, MaxDepth], then scales it down with
// stamina. Never below MinDepth.
func Depth(cfg config.SelectorConfig, c *types.Character) int {
	lo, hi := cfg.MinDepth, cfg.MaxDepth
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	spd := state.Attr(c.Attributes.SPD)
	if spd > 10 {
		spd = 10
	}
	full := float64(lo) + float64(hi-lo)*float64(spd-1)/9
	d := int(full * state.Clamp(c.Stamina) / state.MaxResource)
	if d < lo {
		return lo
	}
	return d
}

// MoveTime grants think time per point of FS.
func MoveTime(cfg config.SelectorConfig, c *types.Character) time.Duration {
	return time.Duration(state.Attr(c.Attributes.FS)) * cfg.MoveTimePerFS
}
