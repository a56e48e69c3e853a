package rules

import (
	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

// BoardOutcome scores a board from White's side, which is the character's.
// Unfinished boards go to whoever leads by at least margin in material.
func BoardOutcome(b board.Board, margin int) string {
	if b == nil {
		return types.ResultDraw
	}
	switch b.Result() {
	case board.WhiteWon:
		return types.ResultWin
	case board.BlackWon:
		return types.ResultLoss
	case board.DrawResult:
		return types.ResultDraw
	}
	if margin <= 0 {
		return types.ResultDraw
	}
	switch bal := board.Balance(b); {
	case bal >= margin:
		return types.ResultWin
	case bal <= -margin:
		return types.ResultLoss
	}
	return types.ResultDraw
}

// CharacterOutcome overrides the board to a loss for a KO'd or dead
// character.
func CharacterOutcome(c *types.Character, boardOutcome string) string {
	if c.Bench {
		return types.ResultBench
	}
	if c.IsKO || c.IsDead {
		return types.ResultLoss
	}
	return boardOutcome
}

// Winner picks the team with more won boards. Ties go to fewer KOs, then
// higher average HP, then Draw.
func Winner(a, b Standing) string {
	switch {
	case a.Wins > b.Wins:
		return a.TeamID
	case b.Wins > a.Wins:
		return b.TeamID
	}

	koA, koB := state.KOCount(a.Active), state.KOCount(b.Active)
	switch {
	case koA < koB:
		return a.TeamID
	case koB < koA:
		return b.TeamID
	}

	hpA, hpB := state.HPPercent(a.Active), state.HPPercent(b.Active)
	switch {
	case hpA > hpB:
		return a.TeamID
	case hpB > hpA:
		return b.TeamID
	}
	return types.Draw
}
