// Package league plays a matchday: a list of fixtures run as independent
// matches on a bounded pool of workers.
package league

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine"
	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/engine/events"
	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// ErrUnknownTeam is returned for a fixture naming a team that was not supplied.
var ErrUnknownTeam = errors.New("unknown team")

// Recorder stores finished matches and their event streams. *ledger.Ledger
// satisfies it.
type Recorder interface {
	Record(ctx context.Context, res *types.MatchResult) error
	Sink(matchID string) events.Sink
}

// SelectorFactory builds a move selector for one match. The closer, if not
// nil, is closed when the match ends.
type SelectorFactory func() (board.MoveSelector, io.Closer, error)

// Outcome is one fixture's result. Err is set when the match could not be
// played; Result is nil then.
type Outcome struct {
	Fixture types.Fixture
	Seed    int64
	Result  *types.MatchResult
	Err     error
}

// Runner plays matchdays.
type Runner struct {
	cfg       *config.Config
	catalog   traits.Catalog
	log       *zap.Logger
	recorder  Recorder
	selectors SelectorFactory
	extra     []engine.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithRecorder persists every finished match.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithSelectors gives each match its own move selector.
func WithSelectors(f SelectorFactory) Option {
	return func(r *Runner) { r.selectors = f }
}

// WithEngineOptions passes options through to every match engine. The
// per-fixture logger and seed take precedence.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *Runner) { r.extra = append(r.extra, opts...) }
}

// New creates a Runner.
func New(cfg *config.Config, catalog traits.Catalog, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Runner{cfg: cfg, catalog: catalog}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// FixtureSeed is the seed a fixture plays with: its own when set, otherwise
// one derived from the matchday seed and its position.
func FixtureSeed(base int64, index int, f types.Fixture) int64 {
	if f.Seed != 0 {
		return f.Seed
	}
	return base + int64(index) + 1
}

// RunMatchday plays every fixture and returns outcomes in fixture order.
// A fixture that fails does not stop the others; the returned error joins
// every fixture error. Cancelling ctx stops fixtures that have not started.
func (r *Runner) RunMatchday(ctx context.Context, teams []types.Team, fixtures []types.Fixture, base int64) ([]Outcome, error) {
	byID := make(map[string]types.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	out := make([]Outcome, len(fixtures))
	workers := r.cfg.League.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range fixtures {
		out[i] = Outcome{Fixture: f, Seed: FixtureSeed(base, i, f)}
		home, okH := byID[f.Home]
		away, okA := byID[f.Away]
		if !okH || !okA {
			missing := f.Home
			if okH {
				missing = f.Away
			}
			out[i].Err = fmt.Errorf("fixture %d: %w %q", i+1, ErrUnknownTeam, missing)
			continue
		}

		o := &out[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				o.Err = err
				return err
			}
			o.Result, o.Err = r.play(gctx, home, away, o.Seed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Warn("matchday interrupted", zap.Error(err))
	}

	var errs []error
	for _, o := range out {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return out, errors.Join(errs...)
}

// play runs one match on its own engine. Each match gets a fresh copy of
// both rosters from the engine.
func (r *Runner) play(ctx context.Context, home, away types.Team, seed int64) (*types.MatchResult, error) {
	log := r.log.With(zap.String("home", home.ID), zap.String("away", away.ID), zap.Int64("seed", seed))

	opts := append([]engine.Option{}, r.extra...)
	opts = append(opts, engine.WithLogger(log), engine.WithSeed(seed))
	if r.selectors != nil {
		sel, closer, err := r.selectors()
		if err != nil {
			return nil, fmt.Errorf("%s vs %s: selector: %w", home.ID, away.ID, err)
		}
		if closer != nil {
			defer func() {
				if err := closer.Close(); err != nil {
					log.Warn("closing selector", zap.Error(err))
				}
			}()
		}
		opts = append(opts, engine.WithSelector(sel))
	}
	matchID := engine.MatchID(home.ID, away.ID, seed)
	if r.recorder != nil {
		opts = append(opts, engine.WithSink(r.recorder.Sink(matchID)))
	}

	res, err := engine.New(r.cfg, r.catalog, opts...).Run(ctx, home, away)
	if err != nil {
		return nil, fmt.Errorf("%s vs %s: %w", home.ID, away.ID, err)
	}
	if r.recorder != nil {
		if err := r.recorder.Record(ctx, res); err != nil {
			log.Warn("match not recorded", zap.String("match_id", res.MatchID), zap.Error(err))
		}
	}
	log.Info("fixture played",
		zap.String("match_id", res.MatchID),
		zap.String("winner", res.Winner),
		zap.String("reason", res.TerminationReason))
	return res, nil
}
