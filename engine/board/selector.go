package board

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/metaleague/engine/rng"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

// Random picks uniformly among legal moves using the match RNG.
type Random struct {
	rng *rng.RNG
}

// NewRandom creates a Random selector drawing from r.
func NewRandom(r *rng.RNG) *Random {
	return &Random{rng: r}
}

func (s *Random) SelectMove(_ context.Context, b Board, _ *types.Character) (string, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return "", ErrNoMoves
	}
	return moves[s.rng.Intn(len(moves))], nil
}

// Guard runs a selector in isolation: bounded by a timeout, panics
// recovered, illegal answers rejected. Any failure falls back to Fallback.
type Guard struct {
	Selector MoveSelector
	Fallback MoveSelector
	Timeout  time.Duration
	Log      *zap.Logger
}

// Choose returns a legal move for b, or ErrNoMoves when there is none.
// fellBack is set when the primary selector was not used.
func (g Guard) Choose(ctx context.Context, b Board, c *types.Character) (move string, fellBack bool, err error) {
	if g.Selector != nil {
		move, err = g.ask(ctx, b, c)
		if err == nil && Contains(b, move) {
			return move, false, nil
		}
		if err == nil {
			err = fmt.Errorf("illegal move %q", move)
		}
		g.logger().Warn("move selector failed, using fallback",
			zap.String("character", c.ID), zap.Error(err))
	}
	if g.Fallback == nil {
		return "", true, ErrNoMoves
	}
	move, err = g.Fallback.SelectMove(ctx, b, c)
	return move, true, err
}

type reply struct {
	move string
	err  error
}

func (g Guard) ask(ctx context.Context, b Board, c *types.Character) (string, error) {
	// A timed-out selector keeps running, so it only ever sees copies.
	snapshot := b.Clone()
	who := state.CloneCharacter(c)
	if g.Timeout <= 0 {
		r := call(ctx, g.Selector, snapshot, who)
		return r.move, r.err
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	ch := make(chan reply, 1)
	go func() {
		ch <- call(ctx, g.Selector, snapshot, who)
	}()
	select {
	case r := <-ch:
		return r.move, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("move selection: %w", ctx.Err())
	}
}

func call(ctx context.Context, sel MoveSelector, b Board, c *types.Character) (r reply) {
	defer func() {
		if p := recover(); p != nil {
			r = reply{err: fmt.Errorf("move selector panicked: %v", p)}
		}
	}()
	move, err := sel.SelectMove(ctx, b, c)
	return reply{move: move, err: err}
}

func (g Guard) logger() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}
