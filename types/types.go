// Package types defines the shared data structures for the match engine.
// This package contains only type definitions: no logic, no methods.
package types

// Role is one of the seven roster roles.
type Role string

const (
	RoleFieldLeader Role = "FL"
	RoleVanguard    Role = "VG"
	RoleEnforcer    Role = "EN"
	RoleRanger      Role = "RG"
	RoleGhostOp     Role = "GO"
	RolePsyOp       Role = "PO"
	RoleSovereign   Role = "SV"
)

// Division groups roles into the operations ("o") and intelligence ("i") wings.
type Division string

const (
	DivisionOps   Division = "o"
	DivisionIntel Division = "i"
)

// Attributes are the named character ratings. Zero means "not supplied".
type Attributes struct {
	STR int `json:"str"`
	SPD int `json:"spd"`
	DUR int `json:"dur"`
	RES int `json:"res"`
	WIL int `json:"wil"`
	FS  int `json:"fs"`
	OP  int `json:"op"`
	LDR int `json:"ldr"`
	AM  int `json:"am"`
}

// Character is a roster member together with its in-match resource state.
type Character struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	TeamID     string     `json:"team_id"`
	TeamName   string     `json:"team_name"`
	Role       Role       `json:"role"`
	Division   Division   `json:"division"`
	Attributes Attributes `json:"attributes"`

	HP      float64 `json:"hp"`
	Stamina float64 `json:"stamina"`
	Life    float64 `json:"life"`
	Morale  float64 `json:"morale"`

	IsKO   bool `json:"is_ko"`
	IsDead bool `json:"is_dead"`
	Bench  bool `json:"bench,omitempty"`

	Traits    []string           `json:"traits"`
	Cooldowns map[string]int     `json:"cooldowns"`
	RStats    map[string]float64 `json:"rstats"`

	// HitStreak counts consecutive convergence wins.
	HitStreak int `json:"hit_streak"`
	XP        int `json:"xp"`
}

// Team is a named roster. The first ActiveRosterSize members play; the rest
// sit on the bench.
type Team struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Roster  []*Character `json:"roster"`
	Manager string       `json:"manager,omitempty"`
}

// Fixture schedules one match. A zero Seed means "derive one".
type Fixture struct {
	Home string `json:"home"`
	Away string `json:"away"`
	Seed int64  `json:"seed,omitempty"`
}

// TraitDef is a data-defined ability.
type TraitDef struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Triggers    []string `json:"triggers"`
	FormulaKey  string   `json:"formula_key"`
	Magnitude   float64  `json:"magnitude"`
	StaminaCost float64  `json:"stamina_cost"`
	Cooldown    int      `json:"cooldown"`
}

// ConvergenceRecord is one resolved convergence duel.
type ConvergenceRecord struct {
	Round     int     `json:"round"`
	Square    string  `json:"square"`
	AttackerA string  `json:"character_a"`
	DefenderB string  `json:"character_b"`
	RollA     float64 `json:"roll_a"`
	RollB     float64 `json:"roll_b"`
	Winner    string  `json:"winner"`
	Loser     string  `json:"loser"`
	Damage    float64 `json:"damage"`
	Outcome   string  `json:"outcome"`
}

// TraitLogEntry records one successful trait activation.
type TraitLogEntry struct {
	Round       int     `json:"round"`
	CharacterID string  `json:"character_id"`
	TraitID     string  `json:"trait_id"`
	Trigger     string  `json:"trigger"`
	FormulaKey  string  `json:"formula_key"`
	Value       float64 `json:"value"`
}

// CharacterResult is the per-character outcome of a match.
type CharacterResult struct {
	CharacterID string             `json:"character_id"`
	Name        string             `json:"name"`
	TeamID      string             `json:"team_id"`
	Role        Role               `json:"role"`
	Result      string             `json:"result"`
	BoardResult string             `json:"board_result"`
	HP          float64            `json:"hp"`
	Stamina     float64            `json:"stamina"`
	Life        float64            `json:"life"`
	Morale      float64            `json:"morale"`
	IsKO        bool               `json:"is_ko"`
	IsDead      bool               `json:"is_dead"`
	XP          int                `json:"xp"`
	RStats      map[string]float64 `json:"rstats"`
}

// MatchResult is the stable artifact a match emits.
type MatchResult struct {
	MatchID           string              `json:"match_id"`
	TeamAID           string              `json:"team_a_id"`
	TeamBID           string              `json:"team_b_id"`
	TeamAName         string              `json:"team_a_name"`
	TeamBName         string              `json:"team_b_name"`
	WinsA             int                 `json:"wins_a"`
	WinsB             int                 `json:"wins_b"`
	Winner            string              `json:"winner"`
	TerminationReason string              `json:"termination_reason"`
	Rounds            int                 `json:"rounds"`
	Seed              int64               `json:"seed"`
	RNGPosition       int64               `json:"rng_position"`
	CharacterResults  []CharacterResult   `json:"per_character_results"`
	ConvergenceLog    []ConvergenceRecord `json:"convergence_log"`
	TraitLog          []TraitLogEntry     `json:"trait_log"`
}

// Event is a per-match notification delivered to result aggregators.
type Event struct {
	Type        string         `json:"type"`
	Round       int            `json:"round"`
	CharacterID string         `json:"character_id,omitempty"`
	TeamID      string         `json:"team_id,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// Event types.
const (
	EventMatchStart     = "match_start"
	EventMove           = "move"
	EventKO             = "ko"
	EventAssist         = "assist"
	EventDeath          = "death"
	EventRecovered      = "recovered"
	EventConvergence    = "convergence"
	EventTraitActivated = "trait_activated"
	EventStat           = "rstat"
	EventRoundEnd       = "round_end"
	EventMatchEnd       = "match_end"
)

// Result labels.
const (
	ResultWin   = "win"
	ResultLoss  = "loss"
	ResultDraw  = "draw"
	ResultBench = "bench"

	// Draw is the MatchResult.Winner value when neither side wins.
	Draw = "Draw"
)
