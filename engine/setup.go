package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/engine/combat"
	"github.com/nathoo/metaleague/engine/convergence"
	"github.com/nathoo/metaleague/engine/events"
	"github.com/nathoo/metaleague/engine/rng"
	"github.com/nathoo/metaleague/engine/rules"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// setup validates rosters and builds a match ready for round one.
func (e *Engine) setup(teamA, teamB types.Team) (*match, error) {
	a, err := e.newSide(teamA)
	if err != nil {
		return nil, err
	}
	b, err := e.newSide(teamB)
	if err != nil {
		return nil, err
	}
	if err := uniqueIDs(a, b); err != nil {
		return nil, err
	}

	m := state.NewMatch(rng.New(e.Seed()))
	if len(e.sinks) > 0 {
		m.Emit = events.NewDispatcher(e.log, e.sinks...).Emit
	}

	te := traits.New(e.catalog, e.cfg.Traits, e.log)
	cr := combat.New(e.cfg, te, e.log)
	mt := &match{
		e:      e,
		cfg:    e.cfg,
		log:    e.log,
		m:      m,
		traits: te,
		combat: cr,
		conv:   convergence.New(e.cfg, te, cr, e.log),
		rules:  rules.New(e.cfg.Match),
		guard: board.Guard{
			Selector: e.selector,
			Fallback: board.NewRandom(m.RNG),
			Timeout:  e.cfg.Selector.Timeout,
			Log:      e.log,
		},
		a:     a,
		b:     b,
		phase: PhaseSetup,
	}
	mt.enter(PhaseSetup)

	for _, s := range mt.sides() {
		for _, c := range append(append([]*types.Character(nil), s.active...), s.bench...) {
			c.TeamID = s.team.ID
			c.TeamName = s.team.Name
			state.Reset(c)
			m.Register(c)
		}
		for _, c := range s.bench {
			c.Bench = true
		}
		applyLeadership(s.active, e.cfg.Match.LeadershipMorale)
		m.Momentum[s.team.ID] = 0
		m.MomentumLabel[s.team.ID] = state.MomentumNeutral
		m.Synergy[s.team.ID] = convergence.Synergy(e.cfg.Convergence, s.active)
	}

	// Boards and openings, A then B, in roster order.
	for _, s := range mt.sides() {
		s.boards = make([]board.Board, len(s.active))
		for i, c := range s.active {
			s.boards[i] = e.adapter.NewBoard(c)
			if !e.cfg.Match.ApplyOpenings || s.boards[i] == nil {
				continue
			}
			line := board.Opening(c.Role, m.RNG)
			if err := board.ApplyOpening(s.boards[i], line); err != nil {
				e.log.Warn("opening rejected", zap.String("character", c.ID), zap.Error(err))
			}
		}
	}

	m.Raise(types.EventMatchStart, nil, map[string]any{
		"team_a": a.team.ID,
		"team_b": b.team.ID,
		"seed":   m.RNG.Seed(),
	})
	for _, c := range mt.allActive() {
		te.ApplyEffect(c, traits.TriggerMatchStart, traits.Context{Match: m})
	}
	return mt, nil
}

// newSide copies a team and splits it into active and bench characters.
// Characters flagged Bench stay there; the first ActiveRosterSize of the
// rest play and any others join the bench.
func (e *Engine) newSide(t types.Team) (*side, error) {
	t = state.CloneTeam(t)
	size := e.cfg.Match.ActiveRosterSize
	s := &side{team: t}
	for _, c := range t.Roster {
		if c == nil {
			continue
		}
		if c.Bench || len(s.active) == size {
			s.bench = append(s.bench, c)
			continue
		}
		s.active = append(s.active, c)
	}
	if len(s.active) != size {
		return nil, fmt.Errorf("%w: team %q has %d active characters, need %d",
			ErrRosterSize, t.ID, len(s.active), size)
	}
	return s, nil
}

func uniqueIDs(sides ...*side) error {
	seen := map[string]string{}
	for _, s := range sides {
		for _, c := range append(append([]*types.Character(nil), s.active...), s.bench...) {
			if team, ok := seen[c.ID]; ok {
				return fmt.Errorf("%w: %q in teams %q and %q", ErrDuplicateID, c.ID, team, s.team.ID)
			}
			seen[c.ID] = s.team.ID
		}
	}
	return nil
}

// applyLeadership lifts teammates' morale by the Field Leader's LDR above 5.
func applyLeadership(active []*types.Character, perPoint float64) {
	var leader *types.Character
	for _, c := range active {
		if c.Role == types.RoleFieldLeader {
			leader = c
			break
		}
	}
	if leader == nil {
		return
	}
	boost := float64(state.Attr(leader.Attributes.LDR)-state.DefaultAttribute) * perPoint
	if boost == 0 {
		return
	}
	for _, c := range active {
		if c != leader {
			state.AdjustMorale(c, boost)
		}
	}
}
