// Package rules decides when a match is over and who won it.
package rules

import (
	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/types"
)

// Termination reasons.
const (
	ReasonFieldLeaderKO = "field_leader_ko"
	ReasonKOThreshold   = "ko_threshold"
	ReasonHPThreshold   = "hp_threshold"
	ReasonBoardsDone    = "all_boards_finished"
	ReasonMaxRounds     = "max_rounds"
)

// Standing is one side at the end of a round.
type Standing struct {
	TeamID string
	// Active holds the side's active (non-bench) characters.
	Active []*types.Character
	// Wins is the number of boards this side has won.
	Wins int
}

// View is what termination conditions inspect after a round.
type View struct {
	Round        int
	A, B         Standing
	BoardsActive int
}

// Condition is a named termination check. It is evaluated once per side
// when Side is set, otherwise once for the match.
type Condition struct {
	Name  string
	Side  func(s Standing, cfg config.MatchConfig) bool
	Match func(v View, cfg config.MatchConfig) bool
}

// Rules evaluates registered conditions in order.
type Rules struct {
	cfg   config.MatchConfig
	conds []Condition
}

// New returns Rules with the built-in conditions registered.
func New(cfg config.MatchConfig) *Rules {
	r := &Rules{cfg: cfg}
	for _, c := range builtinConditions() {
		r.Register(c)
	}
	return r
}

// Register appends a condition. Later conditions are checked last.
func (r *Rules) Register(c Condition) {
	r.conds = append(r.conds, c)
}

// Names lists registered conditions in evaluation order.
func (r *Rules) Names() []string {
	out := make([]string, len(r.conds))
	for i, c := range r.conds {
		out[i] = c.Name
	}
	return out
}

// Check returns the first condition that ends the match, if any. teamID is
// the side that tripped a per-side condition, empty for match-wide ones.
func (r *Rules) Check(v View) (reason, teamID string, done bool) {
	for _, c := range r.conds {
		if c.Side != nil {
			for _, s := range []Standing{v.A, v.B} {
				if c.Side(s, r.cfg) {
					return c.Name, s.TeamID, true
				}
			}
		}
		if c.Match != nil && c.Match(v, r.cfg) {
			return c.Name, "", true
		}
	}
	return "", "", false
}
