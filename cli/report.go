package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nathoo/metaleague/engine/convergence"
	"github.com/nathoo/metaleague/ledger"
	"github.com/nathoo/metaleague/types"
)

// topConvergences is how many duels a non-verbose report lists.
const topConvergences = 5

// ReportOptions controls match report rendering.
type ReportOptions struct {
	Styled bool
	// Verbose lists every convergence and trait activation.
	Verbose bool
}

// WriteReport renders a finished match.
func WriteReport(w io.Writer, res *types.MatchResult, opts ReportOptions) {
	p := painter{styled: opts.Styled}

	fmt.Fprintln(w, p.paint(styleTitle, fmt.Sprintf("%s vs %s", res.TeamAName, res.TeamBName)))
	fmt.Fprintln(w, Headline(res))
	fmt.Fprintln(w, p.paint(styleDim, fmt.Sprintf("match %s  seed %d  rng position %d",
		res.MatchID, res.Seed, res.RNGPosition)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, p.paint(styleHeading, fmt.Sprintf("%-6s %-14s %-4s %-6s %6s %6s %6s %6s %5s",
		"TEAM", "CHARACTER", "ROLE", "RESULT", "HP", "STM", "LIFE", "MORALE", "XP")))
	for _, cr := range res.CharacterResults {
		result := fmt.Sprintf("%-6s", cr.Result)
		if cr.IsDead {
			result = fmt.Sprintf("%-6s", "dead")
		} else if cr.IsKO {
			result = fmt.Sprintf("%-6s", "ko")
		}
		fmt.Fprintf(w, "%-6s %-14s %-4s %s %6.1f %6.1f %6.1f %6.1f %5d\n",
			clip(cr.TeamID, 6), clip(cr.CharacterID, 14), cr.Role,
			p.result(cr.Result, result),
			cr.HP, cr.Stamina, cr.Life, cr.Morale, cr.XP)
	}
	fmt.Fprintln(w)

	critical := 0
	for _, rec := range res.ConvergenceLog {
		if rec.Outcome == convergence.OutcomeCritical {
			critical++
		}
	}
	fmt.Fprintln(w, p.paint(styleHeading, fmt.Sprintf("Convergences: %d (%d critical)",
		len(res.ConvergenceLog), critical)))
	recs := res.ConvergenceLog
	if !opts.Verbose {
		recs = heaviest(recs, topConvergences)
	}
	for _, rec := range recs {
		fmt.Fprintf(w, "  r%-3d %-3s %s beat %s  %.1f vs %.1f  dmg %.1f\n",
			rec.Round, rec.Square, rec.Winner, rec.Loser, winnerRoll(rec), loserRoll(rec), rec.Damage)
	}

	fmt.Fprintln(w, p.paint(styleHeading, fmt.Sprintf("Trait activations: %d", len(res.TraitLog))))
	if opts.Verbose {
		for _, e := range res.TraitLog {
			fmt.Fprintln(w, p.paint(styleDim, fmt.Sprintf("  r%-3d %s %s on %s (%s %.1f)",
				e.Round, e.CharacterID, e.TraitID, e.Trigger, e.FormulaKey, e.Value)))
		}
	}
}

// Headline is the one-line summary of a match.
func Headline(res *types.MatchResult) string {
	var who string
	switch res.Winner {
	case types.Draw:
		who = "Draw"
	case res.TeamAID:
		who = res.TeamAName + " win"
	case res.TeamBID:
		who = res.TeamBName + " win"
	default:
		who = res.Winner + " win"
	}
	return fmt.Sprintf("%s %d-%d (%s after %d rounds)",
		who, res.WinsA, res.WinsB, strings.ReplaceAll(res.TerminationReason, "_", " "), res.Rounds)
}

// WriteTable renders league standings.
func WriteTable(w io.Writer, table []ledger.Standing, styled bool) {
	p := painter{styled: styled}
	fmt.Fprintln(w, p.paint(styleHeading, fmt.Sprintf("%-3s %-12s %3s %3s %3s %3s %4s",
		"#", "TEAM", "P", "W", "D", "L", "PTS")))
	for i, s := range table {
		fmt.Fprintf(w, "%-3d %-12s %3d %3d %3d %3d %4d\n",
			i+1, clip(s.TeamID, 12), s.Played, s.Won, s.Drawn, s.Lost, s.Points)
	}
}

// heaviest returns up to n records with the most damage, in match order.
func heaviest(recs []types.ConvergenceRecord, n int) []types.ConvergenceRecord {
	if len(recs) <= n {
		return recs
	}
	idx := make([]int, len(recs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return recs[idx[a]].Damage > recs[idx[b]].Damage })
	idx = idx[:n]
	sort.Ints(idx)
	out := make([]types.ConvergenceRecord, 0, n)
	for _, i := range idx {
		out = append(out, recs[i])
	}
	return out
}

func winnerRoll(rec types.ConvergenceRecord) float64 {
	if rec.Winner == rec.AttackerA {
		return rec.RollA
	}
	return rec.RollB
}

func loserRoll(rec types.ConvergenceRecord) float64 {
	if rec.Winner == rec.AttackerA {
		return rec.RollB
	}
	return rec.RollA
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
