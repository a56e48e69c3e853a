package rules

import (
	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

func builtinConditions() []Condition {
	return []Condition{
		{Name: ReasonFieldLeaderKO, Side: func(s Standing, _ config.MatchConfig) bool {
			return FieldLeaderDown(s.Active)
		}},
		{Name: ReasonKOThreshold, Side: func(s Standing, cfg config.MatchConfig) bool {
			return cfg.KOThreshold > 0 && state.KOCount(s.Active) >= cfg.KOThreshold
		}},
		{Name: ReasonHPThreshold, Side: func(s Standing, cfg config.MatchConfig) bool {
			return len(s.Active) > 0 && state.HPPercent(s.Active) <= cfg.HPThresholdPct
		}},
		{Name: ReasonBoardsDone, Match: func(v View, _ config.MatchConfig) bool {
			return v.BoardsActive == 0
		}},
		{Name: ReasonMaxRounds, Match: func(v View, cfg config.MatchConfig) bool {
			return v.Round >= cfg.MaxRounds
		}},
	}
}

// FieldLeaderDown reports whether any Field Leader among chars is KO'd or dead.
func FieldLeaderDown(chars []*types.Character) bool {
	for _, c := range chars {
		if c.Role == types.RoleFieldLeader && (c.IsKO || c.IsDead) {
			return true
		}
	}
	return false
}
