// Package config holds every tunable number the match engine uses. A Config
// is built once (defaults, then an optional YAML file, then environment
// overrides) and passed to each component.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "METALEAGUE_"

// Config is the root configuration object.
type Config struct {
	Seed        int64             `yaml:"seed" env:"SEED"`
	Match       MatchConfig       `yaml:"match" envPrefix:"MATCH_"`
	Combat      CombatConfig      `yaml:"combat" envPrefix:"COMBAT_"`
	Recovery    RecoveryConfig    `yaml:"recovery" envPrefix:"RECOVERY_"`
	Convergence ConvergenceConfig `yaml:"convergence" envPrefix:"CONVERGENCE_"`
	Traits      TraitConfig       `yaml:"traits" envPrefix:"TRAITS_"`
	Momentum    MomentumConfig    `yaml:"momentum" envPrefix:"MOMENTUM_"`
	Selector    SelectorConfig    `yaml:"selector" envPrefix:"SELECTOR_"`
	Progression ProgressionConfig `yaml:"progression" envPrefix:"PROGRESSION_"`
	League      LeagueConfig      `yaml:"league" envPrefix:"LEAGUE_"`
}

// MatchConfig drives setup and termination.
type MatchConfig struct {
	ActiveRosterSize int     `yaml:"active_roster_size" env:"ACTIVE_ROSTER_SIZE"`
	MaxRounds        int     `yaml:"max_rounds" env:"MAX_ROUNDS"`
	KOThreshold      int     `yaml:"ko_threshold" env:"KO_THRESHOLD"`
	HPThresholdPct   float64 `yaml:"hp_threshold_pct" env:"HP_THRESHOLD_PCT"`
	// AdjudicationMargin is the material lead needed to score an unfinished board as a win.
	AdjudicationMargin int  `yaml:"adjudication_margin" env:"ADJUDICATION_MARGIN"`
	ApplyOpenings      bool `yaml:"apply_openings" env:"APPLY_OPENINGS"`
	// PliesPerRound is how many half-moves each board advances per round.
	PliesPerRound    int     `yaml:"plies_per_round" env:"PLIES_PER_ROUND"`
	LeadershipMorale float64 `yaml:"leadership_morale" env:"LEADERSHIP_MORALE"`
}

// CombatConfig covers damage, reduction and the resource cascade.
type CombatConfig struct {
	BaseReduction     float64 `yaml:"base_reduction" env:"BASE_REDUCTION"`
	MaxReduction      float64 `yaml:"max_reduction" env:"MAX_REDUCTION"`
	DURStep           float64 `yaml:"dur_step" env:"DUR_STEP"`
	RESStep           float64 `yaml:"res_step" env:"RES_STEP"`
	CrashReduction    float64 `yaml:"crash_reduction" env:"CRASH_REDUCTION"`
	MaterialScale     float64 `yaml:"material_scale" env:"MATERIAL_SCALE"`
	OverflowRate      float64 `yaml:"overflow_rate" env:"OVERFLOW_RATE"`
	LifeLossThreshold float64 `yaml:"life_loss_threshold" env:"LIFE_LOSS_THRESHOLD"`
	LifeLoss          float64 `yaml:"life_loss" env:"LIFE_LOSS"`
	MoveStaminaCost   float64 `yaml:"move_stamina_cost" env:"MOVE_STAMINA_COST"`
	MoveCostWILStep   float64 `yaml:"move_cost_wil_step" env:"MOVE_COST_WIL_STEP"`
	MoveCostFloor     float64 `yaml:"move_cost_floor" env:"MOVE_COST_FLOOR"`
}

// RecoveryConfig covers end-of-round regeneration and KO recovery.
type RecoveryConfig struct {
	HPRegen         float64 `yaml:"hp_regen" env:"HP_REGEN"`
	StaminaRegen    float64 `yaml:"stamina_regen" env:"STAMINA_REGEN"`
	WILStaminaBonus float64 `yaml:"wil_stamina_bonus" env:"WIL_STAMINA_BONUS"`
	KOStaminaFactor float64 `yaml:"ko_stamina_factor" env:"KO_STAMINA_FACTOR"`
	MinStamina      float64 `yaml:"min_stamina" env:"MIN_STAMINA"`
	ChanceDivisor   float64 `yaml:"chance_divisor" env:"CHANCE_DIVISOR"`
	WILChanceStep   float64 `yaml:"wil_chance_step" env:"WIL_CHANCE_STEP"`
	HPFloor         float64 `yaml:"hp_floor" env:"HP_FLOOR"`
}

// ConvergenceConfig covers the cross-board duel.
type ConvergenceConfig struct {
	MaxPerCharacter int     `yaml:"max_per_character" env:"MAX_PER_CHARACTER"`
	MaxPerRound     int     `yaml:"max_per_round" env:"MAX_PER_ROUND"`
	DamageScale     float64 `yaml:"damage_scale" env:"DAMAGE_SCALE"`
	CriticalGap     float64 `yaml:"critical_gap" env:"CRITICAL_GAP"`
	MaxRerolls      int     `yaml:"max_rerolls" env:"MAX_REROLLS"`
	MaxHitStreak    int     `yaml:"max_hit_streak" env:"MAX_HIT_STREAK"`
	LowMorale       float64 `yaml:"low_morale" env:"LOW_MORALE"`
	HighMorale      float64 `yaml:"high_morale" env:"HIGH_MORALE"`
	LowMoraleMult   float64 `yaml:"low_morale_mult" env:"LOW_MORALE_MULT"`
	HighMoraleMult  float64 `yaml:"high_morale_mult" env:"HIGH_MORALE_MULT"`
	BuildingMult    float64 `yaml:"building_mult" env:"BUILDING_MULT"`
	CrashMult       float64 `yaml:"crash_mult" env:"CRASH_MULT"`
	// RoleModifiers multiplies contest rolls per role. Missing roles use 1.
	RoleModifiers map[string]float64 `yaml:"role_modifiers" env:"ROLE_MODIFIERS"`
	// SynergyLevels[n] is the roll bonus for n distinct roles beyond the first three.
	SynergyLevels []float64 `yaml:"synergy_levels" env:"SYNERGY_LEVELS"`
}

// TraitConfig covers activation probability.
type TraitConfig struct {
	BaseChance  float64 `yaml:"base_chance" env:"BASE_CHANCE"`
	WILStep     float64 `yaml:"wil_step" env:"WIL_STEP"`
	MoraleAdj   float64 `yaml:"morale_adj" env:"MORALE_ADJ"`
	LowMorale   float64 `yaml:"low_morale" env:"LOW_MORALE"`
	HighMorale  float64 `yaml:"high_morale" env:"HIGH_MORALE"`
	StaminaAdj  float64 `yaml:"stamina_adj" env:"STAMINA_ADJ"`
	LowStamina  float64 `yaml:"low_stamina" env:"LOW_STAMINA"`
	BuildingAdj float64 `yaml:"building_adj" env:"BUILDING_ADJ"`
	CrashAdj    float64 `yaml:"crash_adj" env:"CRASH_ADJ"`
	MinChance   float64 `yaml:"min_chance" env:"MIN_CHANCE"`
	MaxChance   float64 `yaml:"max_chance" env:"MAX_CHANCE"`
}

// MomentumConfig covers the per-team momentum meter.
type MomentumConfig struct {
	Limit          float64 `yaml:"limit" env:"LIMIT"`
	Building       float64 `yaml:"building" env:"BUILDING"`
	Crash          float64 `yaml:"crash" env:"CRASH"`
	MajorGap       float64 `yaml:"major_gap" env:"MAJOR_GAP"`
	MinorGap       float64 `yaml:"minor_gap" env:"MINOR_GAP"`
	MajorShift     float64 `yaml:"major_shift" env:"MAJOR_SHIFT"`
	MinorShift     float64 `yaml:"minor_shift" env:"MINOR_SHIFT"`
	FineShiftScale float64 `yaml:"fine_shift_scale" env:"FINE_SHIFT_SCALE"`
}

// SelectorConfig bounds external move selection.
type SelectorConfig struct {
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	EnginePath string        `yaml:"engine_path" env:"ENGINE_PATH"`
	MinDepth   int           `yaml:"min_depth" env:"MIN_DEPTH"`
	MaxDepth   int           `yaml:"max_depth" env:"MAX_DEPTH"`
	// MoveTimePerFS is engine think time granted per point of FS.
	MoveTimePerFS time.Duration `yaml:"move_time_per_fs" env:"MOVE_TIME_PER_FS"`
}

// ProgressionConfig covers post-match XP and morale.
type ProgressionConfig struct {
	WinXP           int     `yaml:"win_xp" env:"WIN_XP"`
	DrawXP          int     `yaml:"draw_xp" env:"DRAW_XP"`
	DamageXPDivisor float64 `yaml:"damage_xp_divisor" env:"DAMAGE_XP_DIVISOR"`
	ConvergenceXP   int     `yaml:"convergence_xp" env:"CONVERGENCE_XP"`
	WinMorale       float64 `yaml:"win_morale" env:"WIN_MORALE"`
	LossMorale      float64 `yaml:"loss_morale" env:"LOSS_MORALE"`
	// AMStep scales XP per point of Adaptive Mastery above 5.
	AMStep float64 `yaml:"am_step" env:"AM_STEP"`
}

// LeagueConfig covers matchday scheduling.
type LeagueConfig struct {
	// Workers is how many matches of a matchday run at once.
	Workers int `yaml:"workers" env:"WORKERS"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Seed: 1,
		Match: MatchConfig{
			ActiveRosterSize:   8,
			MaxRounds:          30,
			KOThreshold:        3,
			HPThresholdPct:     25,
			AdjudicationMargin: 2,
			ApplyOpenings:      true,
			PliesPerRound:      2,
			LeadershipMorale:   2,
		},
		Combat: CombatConfig{
			BaseReduction:     35,
			MaxReduction:      85,
			DURStep:           3,
			RESStep:           2,
			CrashReduction:    15,
			MaterialScale:     3,
			OverflowRate:      0.4,
			LifeLossThreshold: 100,
			LifeLoss:          0.5,
			MoveStaminaCost:   0.5,
			MoveCostWILStep:   0.08,
			MoveCostFloor:     0.3,
		},
		Recovery: RecoveryConfig{
			HPRegen:         5,
			StaminaRegen:    5,
			WILStaminaBonus: 0.8,
			KOStaminaFactor: 3,
			MinStamina:      20,
			ChanceDivisor:   150,
			WILChanceStep:   0.02,
			HPFloor:         20,
		},
		Convergence: ConvergenceConfig{
			MaxPerCharacter: 3,
			MaxPerRound:     12,
			DamageScale:     3,
			CriticalGap:     40,
			MaxRerolls:      1,
			MaxHitStreak:    5,
			LowMorale:       30,
			HighMorale:      70,
			LowMoraleMult:   0.8,
			HighMoraleMult:  1.2,
			BuildingMult:    1.1,
			CrashMult:       0.9,
			RoleModifiers: map[string]float64{
				"VG": 1.1,
				"EN": 1.05,
				"GO": 1.05,
			},
			SynergyLevels: []float64{0, 0.05, 0.1, 0.15, 0.2},
		},
		Traits: TraitConfig{
			BaseChance:  0.5,
			WILStep:     0.05,
			MoraleAdj:   0.1,
			LowMorale:   30,
			HighMorale:  70,
			StaminaAdj:  0.1,
			LowStamina:  30,
			BuildingAdj: 0.1,
			CrashAdj:    0.05,
			MinChance:   0.2,
			MaxChance:   0.9,
		},
		Momentum: MomentumConfig{
			Limit:          5,
			Building:       3,
			Crash:          -3,
			MajorGap:       0.3,
			MinorGap:       0.1,
			MajorShift:     1,
			MinorShift:     0.5,
			FineShiftScale: 2,
		},
		Selector: SelectorConfig{
			Timeout:       2 * time.Second,
			MinDepth:      1,
			MaxDepth:      12,
			MoveTimePerFS: 10 * time.Millisecond,
		},
		Progression: ProgressionConfig{
			WinXP:           25,
			DrawXP:          10,
			DamageXPDivisor: 5,
			ConvergenceXP:   10,
			WinMorale:       10,
			LossMorale:      -5,
			AMStep:          0.1,
		},
		League: LeagueConfig{Workers: 4},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty) and METALEAGUE_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays METALEAGUE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Match.ActiveRosterSize < 1 {
		errs = append(errs, fmt.Errorf("match.active_roster_size must be positive, got %d", c.Match.ActiveRosterSize))
	}
	if c.Match.MaxRounds < 1 {
		errs = append(errs, fmt.Errorf("match.max_rounds must be positive, got %d", c.Match.MaxRounds))
	}
	if c.Combat.MaxReduction < 0 || c.Combat.MaxReduction > 100 {
		errs = append(errs, fmt.Errorf("combat.max_reduction must be within [0,100], got %g", c.Combat.MaxReduction))
	}
	if c.League.Workers < 1 {
		errs = append(errs, fmt.Errorf("league.workers must be positive, got %d", c.League.Workers))
	}
	if c.Traits.MinChance > c.Traits.MaxChance {
		errs = append(errs, fmt.Errorf("traits.min_chance %g exceeds max_chance %g", c.Traits.MinChance, c.Traits.MaxChance))
	}
	if c.Traits.LowMorale > c.Traits.HighMorale {
		errs = append(errs, fmt.Errorf("traits.low_morale %g exceeds high_morale %g", c.Traits.LowMorale, c.Traits.HighMorale))
	}
	return errors.Join(errs...)
}
