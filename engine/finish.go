package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/rules"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

// MatchID derives a stable id from the teams and seed, so a replayed match
// gets the same id.
func MatchID(teamA, teamB string, seed int64) string {
	name := fmt.Sprintf("%s|%s|%d", teamA, teamB, seed)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// finish scores boards, picks the winner and builds the result.
func (mt *match) finish(reason string) *types.MatchResult {
	m := mt.m
	outcomes := map[string]string{}
	boardResults := map[string]string{}

	standings := make([]rules.Standing, 0, 2)
	for _, s := range mt.sides() {
		st := rules.Standing{TeamID: s.team.ID, Active: s.active}
		for i, c := range s.active {
			br := rules.BoardOutcome(s.boards[i], mt.cfg.Match.AdjudicationMargin)
			res := rules.CharacterOutcome(c, br)
			boardResults[c.ID] = br
			outcomes[c.ID] = res
			switch res {
			case types.ResultWin:
				st.Wins++
				m.AddStat(c, state.StatWins, 1)
			case types.ResultLoss:
				m.AddStat(c, state.StatLosses, 1)
			default:
				m.AddStat(c, state.StatDraws, 1)
			}
		}
		for _, c := range s.bench {
			outcomes[c.ID] = types.ResultBench
		}
		standings = append(standings, st)
	}
	winner := rules.Winner(standings[0], standings[1])

	for _, s := range mt.sides() {
		for _, c := range s.active {
			c.XP += AwardXP(mt.cfg.Progression, c, outcomes[c.ID])
			switch {
			case winner == types.Draw:
			case winner == s.team.ID:
				state.AdjustMorale(c, mt.cfg.Progression.WinMorale)
			default:
				state.AdjustMorale(c, mt.cfg.Progression.LossMorale)
			}
		}
	}

	res := &types.MatchResult{
		MatchID:           MatchID(mt.a.team.ID, mt.b.team.ID, m.RNG.Seed()),
		TeamAID:           mt.a.team.ID,
		TeamBID:           mt.b.team.ID,
		TeamAName:         mt.a.team.Name,
		TeamBName:         mt.b.team.Name,
		WinsA:             standings[0].Wins,
		WinsB:             standings[1].Wins,
		Winner:            winner,
		TerminationReason: reason,
		Rounds:            m.Round,
		Seed:              m.RNG.Seed(),
		RNGPosition:       m.RNG.Position(),
		CharacterResults:  []types.CharacterResult{},
		ConvergenceLog:    append([]types.ConvergenceRecord{}, m.ConvergenceLog...),
		TraitLog:          append([]types.TraitLogEntry{}, m.TraitLog...),
	}
	for _, s := range mt.sides() {
		for _, c := range s.team.Roster {
			if c == nil {
				continue
			}
			res.CharacterResults = append(res.CharacterResults, characterResult(c, outcomes[c.ID], boardResults[c.ID]))
		}
	}

	m.Raise(types.EventMatchEnd, nil, map[string]any{
		"winner": winner,
		"reason": reason,
		"rounds": m.Round,
	})
	return res
}

// AwardXP is what one match is worth to c: a result bonus plus damage and
// convergence credit, scaled by Adaptive Mastery.
func AwardXP(cfg config.ProgressionConfig, c *types.Character, result string) int {
	base := 0.0
	switch result {
	case types.ResultWin:
		base = float64(cfg.WinXP)
	case types.ResultDraw:
		base = float64(cfg.DrawXP)
	case types.ResultBench:
		return 0
	}
	if cfg.DamageXPDivisor > 0 {
		base += c.RStats[state.StatDamageDealt] / cfg.DamageXPDivisor
	}
	base += c.RStats[state.StatConvergences] * float64(cfg.ConvergenceXP)

	am := state.Attr(c.Attributes.AM)
	scale := math.Max(0, 1+float64(am-state.DefaultAttribute)*cfg.AMStep)
	return int(math.Round(base * scale))
}

func characterResult(c *types.Character, result, boardResult string) types.CharacterResult {
	stats := make(map[string]float64, len(c.RStats))
	for k, v := range c.RStats {
		stats[k] = v
	}
	return types.CharacterResult{
		CharacterID: c.ID,
		Name:        c.Name,
		TeamID:      c.TeamID,
		Role:        c.Role,
		Result:      result,
		BoardResult: boardResult,
		HP:          c.HP,
		Stamina:     c.Stamina,
		Life:        c.Life,
		Morale:      c.Morale,
		IsKO:        c.IsKO,
		IsDead:      c.IsDead,
		XP:          c.XP,
		RStats:      stats,
	}
}
