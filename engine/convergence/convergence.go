// Package convergence finds squares where officers from opposing boards meet
// and settles each meeting as a contested duel.
package convergence

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/engine/combat"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// Outcome tags.
const (
	OutcomeSuccess  = "success"
	OutcomeCritical = "critical_success"
)

// Detector scans boards and resolves convergences.
type Detector struct {
	cfg    config.ConvergenceConfig
	traits *traits.Engine
	combat *combat.Resolver
	log    *zap.Logger
}

// New creates a Detector. te may be nil.
func New(cfg *config.Config, te *traits.Engine, cr *combat.Resolver, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{cfg: cfg.Convergence, traits: te, combat: cr, log: log}
}

// Contestant is one side of a pending duel.
type Contestant struct {
	Character *types.Character
	Roll      float64
	// DamageBonus is the percentage added to damage if this side wins.
	DamageBonus float64
}

// Candidate is a convergence found during the scan, not yet resolved.
type Candidate struct {
	Square string
	A, B   Contestant
}

// Gap is the absolute roll difference used for priority.
func (c Candidate) Gap() float64 {
	return math.Abs(c.A.Roll - c.B.Roll)
}

type side struct {
	chars   []*types.Character
	squares []map[string]bool
	isA     bool
}

// ProcessRound scans every active pair across the two teams, rolls each
// shared officer square, keeps the most decisive meetings up to the
// per-round cap and resolves them. boardsA[i] belongs to teamA[i].
func (d *Detector) ProcessRound(teamA []*types.Character, boardsA []board.Board,
	teamB []*types.Character, boardsB []board.Board, m *state.Match, maxPerCharacter int) []types.ConvergenceRecord {

	if m == nil || m.RNG == nil {
		return nil
	}
	a := side{chars: teamA, squares: officerSets(teamA, boardsA), isA: true}
	b := side{chars: teamB, squares: officerSets(teamB, boardsB)}

	first, second := a, b
	if m.RNG.Intn(2) == 1 {
		first, second = b, a
	}

	var cands []Candidate
	for i, x := range first.chars {
		if first.squares[i] == nil || !d.available(m, x, maxPerCharacter) {
			continue
		}
		for j, y := range second.chars {
			if second.squares[j] == nil || !d.available(m, y, maxPerCharacter) {
				continue
			}
			for _, sq := range board.Squares {
				if !first.squares[i][sq] || !second.squares[j][sq] {
					continue
				}
				cx := d.Contest(m, x, y)
				cy := d.Contest(m, y, x)
				c := Candidate{Square: sq, A: cx, B: cy}
				if !first.isA {
					c.A, c.B = cy, cx
				}
				cands = append(cands, c)
			}
		}
	}
	if len(cands) == 0 {
		return nil
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Gap() > cands[j].Gap()
	})
	if d.cfg.MaxPerRound > 0 && len(cands) > d.cfg.MaxPerRound {
		d.log.Debug("truncating convergences",
			zap.Int("round", m.Round), zap.Int("found", len(cands)), zap.Int("kept", d.cfg.MaxPerRound))
		cands = cands[:d.cfg.MaxPerRound]
	}

	var out []types.ConvergenceRecord
	for _, c := range cands {
		if rec, ok := d.Resolve(m, c, maxPerCharacter); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Contest rolls c against opponent: (d100 + STR + FS) scaled by OP/5, then
// morale, momentum, synergy and role, then c's convergence traits.
func (d *Detector) Contest(m *state.Match, c, opponent *types.Character) Contestant {
	roll := d.baseRoll(m, c)

	var effs []traits.Effect
	if d.traits != nil {
		effs = d.traits.ApplyEffect(c, traits.TriggerConvergence,
			traits.Context{Match: m, Opponent: opponent, Roll: roll})
	}
	rerolls := traits.Count(effs, traits.KindReroll)
	if rerolls > d.cfg.MaxRerolls {
		rerolls = d.cfg.MaxRerolls
	}
	for i := 0; i < rerolls; i++ {
		if again := d.baseRoll(m, c); again > roll {
			roll = again
		}
	}
	roll = roll*(1+traits.Sum(effs, traits.KindRollMultiplier)) + traits.Sum(effs, traits.KindRollBonus)

	return Contestant{
		Character:   c,
		Roll:        roll,
		DamageBonus: traits.Sum(effs, traits.KindDamageBonus),
	}
}

func (d *Detector) baseRoll(m *state.Match, c *types.Character) float64 {
	a := state.Attrs(c.Attributes)
	roll := float64(m.RNG.Roll(100)+a.STR+a.FS) * float64(a.OP) / float64(state.DefaultAttribute)
	return roll * d.moraleMult(c) * d.momentumMult(m, c) * (1 + m.Synergy[c.TeamID]) * d.roleMult(c)
}

func (d *Detector) moraleMult(c *types.Character) float64 {
	switch {
	case c.Morale < d.cfg.LowMorale:
		return d.cfg.LowMoraleMult
	case c.Morale > d.cfg.HighMorale:
		return d.cfg.HighMoraleMult
	}
	return 1
}

func (d *Detector) momentumMult(m *state.Match, c *types.Character) float64 {
	switch m.MomentumOf(c.TeamID) {
	case state.MomentumBuilding:
		return d.cfg.BuildingMult
	case state.MomentumCrash:
		return d.cfg.CrashMult
	}
	return 1
}

func (d *Detector) roleMult(c *types.Character) float64 {
	if mod, ok := d.cfg.RoleModifiers[string(c.Role)]; ok {
		return mod
	}
	return 1
}

// Resolve settles one candidate. It is skipped (ok false) when either side
// is no longer active or has reached its cap, or when the rolls tie.
func (d *Detector) Resolve(m *state.Match, c Candidate, maxPerCharacter int) (types.ConvergenceRecord, bool) {
	a, b := c.A.Character, c.B.Character
	if !d.available(m, a, maxPerCharacter) || !d.available(m, b, maxPerCharacter) {
		return types.ConvergenceRecord{}, false
	}
	if c.A.Roll == c.B.Roll {
		d.log.Debug("convergence tied", zap.Int("round", m.Round), zap.String("square", c.Square))
		return types.ConvergenceRecord{}, false
	}

	win, lose := c.A, c.B
	if c.B.Roll > c.A.Roll {
		win, lose = c.B, c.A
	}
	gap := c.Gap()
	raw := math.Max(1, d.cfg.DamageScale*math.Log(1+gap/10)) * (1 + win.DamageBonus/100)

	var dmg combat.DamageResult
	if d.combat != nil {
		reduction := d.combat.DefenseReduction(m, lose.Character, win.Character)
		dmg = d.combat.ApplyDamage(m, lose.Character, raw, win.Character, reduction)
	}

	outcome := OutcomeSuccess
	if gap > d.cfg.CriticalGap {
		outcome = OutcomeCritical
		m.AddStat(win.Character, state.StatUltimate, 1)
	}

	m.ConvergenceCounts[a.ID]++
	m.ConvergenceCounts[b.ID]++
	m.AddStat(win.Character, state.StatConvergences, 1)
	m.AddStat(win.Character, state.StatConvergences+string(win.Character.Division), 1)
	m.AddStat(lose.Character, state.StatConvLost, 1)

	win.Character.HitStreak++
	if win.Character.HitStreak > d.cfg.MaxHitStreak {
		win.Character.HitStreak = d.cfg.MaxHitStreak
	}
	lose.Character.HitStreak = 0

	rec := types.ConvergenceRecord{
		Round:     m.Round,
		Square:    c.Square,
		AttackerA: a.ID,
		DefenderB: b.ID,
		RollA:     c.A.Roll,
		RollB:     c.B.Roll,
		Winner:    win.Character.ID,
		Loser:     lose.Character.ID,
		Damage:    dmg.Applied,
		Outcome:   outcome,
	}
	m.ConvergenceLog = append(m.ConvergenceLog, rec)
	m.Raise(types.EventConvergence, win.Character, map[string]any{
		"square":  c.Square,
		"loser":   lose.Character.ID,
		"damage":  dmg.Applied,
		"outcome": outcome,
	})
	d.log.Debug("convergence",
		zap.Int("round", m.Round),
		zap.String("square", c.Square),
		zap.String("winner", win.Character.ID),
		zap.String("loser", lose.Character.ID),
		zap.Float64("gap", gap),
		zap.Float64("damage", dmg.Applied))
	return rec, true
}

func (d *Detector) available(m *state.Match, c *types.Character, maxPerCharacter int) bool {
	if c == nil || !state.Active(c) {
		return false
	}
	return maxPerCharacter <= 0 || m.ConvergenceCounts[c.ID] < maxPerCharacter
}

func officerSets(chars []*types.Character, boards []board.Board) []map[string]bool {
	out := make([]map[string]bool, len(chars))
	for i := range chars {
		if i >= len(boards) || boards[i] == nil {
			continue
		}
		set := map[string]bool{}
		for _, sq := range board.OfficerSquares(boards[i]) {
			set[sq] = true
		}
		out[i] = set
	}
	return out
}

// Synergy is a team's contest-roll bonus: one level per distinct role
// beyond the first three among active characters, scaled by average morale.
func Synergy(cfg config.ConvergenceConfig, chars []*types.Character) float64 {
	if len(cfg.SynergyLevels) == 0 {
		return 0
	}
	roles := map[types.Role]bool{}
	var morale float64
	n := 0
	for _, c := range chars {
		if !state.Active(c) {
			continue
		}
		roles[c.Role] = true
		morale += c.Morale
		n++
	}
	if n == 0 {
		return 0
	}
	level := len(roles) - 3
	if level < 0 {
		level = 0
	}
	if level >= len(cfg.SynergyLevels) {
		level = len(cfg.SynergyLevels) - 1
	}
	return cfg.SynergyLevels[level] * (morale / float64(n)) / state.DefaultMorale
}
