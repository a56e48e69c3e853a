package state

import (
	"github.com/nathoo/metaleague/engine/rng"
	"github.com/nathoo/metaleague/types"
)

// rStat keys written by the engine. The map stays open: traits and callers
// may add their own keys.
const (
	StatDamageDealt   = "rDD"
	StatDamageTaken   = "rDT"
	StatKOs           = "rKO"
	StatAssists       = "rAST"
	StatConvergences  = "rCV"
	StatConvLost      = "rCVL"
	StatUltimate      = "rULT"
	StatTraits        = "rTA"
	StatHealing       = "rHL"
	StatMoves         = "rMV"
	StatCaptures      = "rCAP"
	StatWins          = "rWIN"
	StatLosses        = "rLOSS"
	StatDraws         = "rDRAW"
	StatKOResisted    = "rKOR"
	StatRecoveries    = "rREC"
	StatDamageDealtOp = "rDDo"
	StatDamageDealtIn = "rDDi"
)

// Momentum labels.
const (
	MomentumNeutral  = "neutral"
	MomentumBuilding = "building"
	MomentumCrash    = "crash"
)

// Match is the typed context one match owns for its lifetime. Components
// receive it by pointer and may append to logs and adjust counters.
type Match struct {
	Round int
	RNG   *rng.RNG

	ConvergenceLog []types.ConvergenceRecord
	TraitLog       []types.TraitLogEntry

	// ConvergenceCounts is per character, per match.
	ConvergenceCounts map[string]int
	// Contributors maps a target id to the set of attacker ids that damaged it.
	Contributors map[string]map[string]bool

	// Momentum is the signed meter per team; MomentumLabel is derived from it.
	Momentum      map[string]float64
	MomentumLabel map[string]string
	// Synergy is the contest-roll bonus per team.
	Synergy map[string]float64

	Characters map[string]*types.Character

	// Emit receives every event raised during the match. May be nil.
	Emit func(types.Event)
}

// NewMatch creates an empty context around r.
func NewMatch(r *rng.RNG) *Match {
	return &Match{
		RNG:               r,
		ConvergenceCounts: map[string]int{},
		Contributors:      map[string]map[string]bool{},
		Momentum:          map[string]float64{},
		MomentumLabel:     map[string]string{},
		Synergy:           map[string]float64{},
		Characters:        map[string]*types.Character{},
	}
}

// Register indexes characters by id.
func (m *Match) Register(chars ...*types.Character) {
	for _, c := range chars {
		m.Characters[c.ID] = c
	}
}

// Raise emits an event stamped with the current round.
func (m *Match) Raise(eventType string, c *types.Character, data map[string]any) {
	if m.Emit == nil {
		return
	}
	evt := types.Event{Type: eventType, Round: m.Round, Data: data}
	if c != nil {
		evt.CharacterID = c.ID
		evt.TeamID = c.TeamID
	}
	m.Emit(evt)
}

// AddStat adds delta to one of c's rStats and reports the delta.
func (m *Match) AddStat(c *types.Character, key string, delta float64) {
	if c == nil || delta == 0 {
		return
	}
	if c.RStats == nil {
		c.RStats = map[string]float64{}
	}
	c.RStats[key] += delta
	m.Raise(types.EventStat, c, map[string]any{"key": key, "delta": delta})
}

// AddContributor records that attacker damaged target.
func (m *Match) AddContributor(targetID, attackerID string) {
	if targetID == "" || attackerID == "" || targetID == attackerID {
		return
	}
	set, ok := m.Contributors[targetID]
	if !ok {
		set = map[string]bool{}
		m.Contributors[targetID] = set
	}
	set[attackerID] = true
}

// MomentumOf returns the momentum label for a team.
func (m *Match) MomentumOf(teamID string) string {
	if l, ok := m.MomentumLabel[teamID]; ok {
		return l
	}
	return MomentumNeutral
}

// LogTrait appends to the trait log.
func (m *Match) LogTrait(entry types.TraitLogEntry) {
	entry.Round = m.Round
	m.TraitLog = append(m.TraitLog, entry)
}
