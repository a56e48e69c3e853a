// Package engine provides the match orchestrator that wires boards, traits,
// combat, convergence and termination rules into a round-by-round
// simulation.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/engine/combat"
	"github.com/nathoo/metaleague/engine/convergence"
	"github.com/nathoo/metaleague/engine/events"
	"github.com/nathoo/metaleague/engine/rules"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// Setup errors. Both are returned before any round is played.
var (
	ErrRosterSize  = errors.New("wrong active roster size")
	ErrDuplicateID = errors.New("duplicate character id")
)

// Phase is where a match is in its lifecycle.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseRoundInProgress
	PhaseRoundSettling
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseRoundInProgress:
		return "round_in_progress"
	case PhaseRoundSettling:
		return "round_settling"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// RoundHook observes phase changes. It runs on the match goroutine and may
// adjust characters through m.Characters.
type RoundHook func(phase Phase, m *state.Match)

// Engine holds everything that is fixed across matches. One Engine may run
// many matches, including concurrently; each Run owns its own state.
type Engine struct {
	cfg      *config.Config
	catalog  traits.Catalog
	log      *zap.Logger
	adapter  board.Adapter
	selector board.MoveSelector
	sinks    []events.Sink
	hook     RoundHook
	seed     *int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithAdapter sets the board factory. The default plays standard chess.
func WithAdapter(a board.Adapter) Option {
	return func(e *Engine) { e.adapter = a }
}

// WithSelector sets the primary move selector. Without one every move is
// a random legal move from the match RNG.
func WithSelector(s board.MoveSelector) Option {
	return func(e *Engine) { e.selector = s }
}

// WithSink adds a result aggregator.
func WithSink(s events.Sink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, s) }
}

// WithRoundHook installs a phase observer.
func WithRoundHook(h RoundHook) Option {
	return func(e *Engine) { e.hook = h }
}

// WithSeed overrides cfg.Seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = &seed }
}

// New creates an Engine. cfg is used as given; callers validate it.
func New(cfg *config.Config, catalog traits.Catalog, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{cfg: cfg, catalog: catalog}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.adapter == nil {
		e.adapter = board.ChessAdapter{}
	}
	return e
}

// Seed is the seed the next match will use.
func (e *Engine) Seed() int64 {
	if e.seed != nil {
		return *e.seed
	}
	return e.cfg.Seed
}

// Run plays one match between copies of teamA and teamB. The caller's
// rosters are not modified. The only errors are setup failures.
func (e *Engine) Run(ctx context.Context, teamA, teamB types.Team) (*types.MatchResult, error) {
	// 1. Setup.
	mt, err := e.setup(teamA, teamB)
	if err != nil {
		return nil, err
	}
	e.log.Info("match started",
		zap.String("team_a", mt.a.team.ID),
		zap.String("team_b", mt.b.team.ID),
		zap.Int64("seed", mt.m.RNG.Seed()))

	var reason, trippedBy string
	for round := 1; ; round++ {
		mt.m.Round = round

		// 2. Every able character moves on its own board.
		mt.enter(PhaseRoundInProgress)
		mt.playRound(ctx)

		// 3. Convergence, round-end traits, recovery, cooldowns, momentum.
		mt.enter(PhaseRoundSettling)
		mt.settle()

		// 4. Termination.
		var done bool
		if reason, trippedBy, done = mt.rules.Check(mt.view()); done {
			break
		}
	}

	// 5. Score the match.
	mt.enter(PhaseTerminated)
	res := mt.finish(reason)
	e.log.Info("match finished",
		zap.String("match", res.MatchID),
		zap.String("winner", res.Winner),
		zap.String("reason", reason),
		zap.String("tripped_by", trippedBy),
		zap.Int("rounds", res.Rounds))
	return res, nil
}

// side is one team inside a running match. boards[i] belongs to active[i].
type side struct {
	team   types.Team
	active []*types.Character
	bench  []*types.Character
	boards []board.Board
}

// match is the state of one Run.
type match struct {
	e      *Engine
	cfg    *config.Config
	log    *zap.Logger
	m      *state.Match
	traits *traits.Engine
	combat *combat.Resolver
	conv   *convergence.Detector
	rules  *rules.Rules
	guard  board.Guard
	a, b   *side
	phase  Phase
}

func (mt *match) enter(p Phase) {
	mt.phase = p
	if mt.e.hook != nil {
		mt.e.hook(p, mt.m)
	}
}

func (mt *match) sides() []*side { return []*side{mt.a, mt.b} }

func (mt *match) allActive() []*types.Character {
	out := make([]*types.Character, 0, len(mt.a.active)+len(mt.b.active))
	out = append(out, mt.a.active...)
	return append(out, mt.b.active...)
}

func (mt *match) view() rules.View {
	live := 0
	for _, s := range mt.sides() {
		for i, b := range s.boards {
			if b != nil && !b.IsGameOver() && !s.active[i].IsDead {
				live++
			}
		}
	}
	return rules.View{
		Round:        mt.m.Round,
		A:            rules.Standing{TeamID: mt.a.team.ID, Active: mt.a.active},
		B:            rules.Standing{TeamID: mt.b.team.ID, Active: mt.b.active},
		BoardsActive: live,
	}
}
