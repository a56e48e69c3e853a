package traits

import (
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

// EffectKind tells callers how to fold an effect into their computation.
type EffectKind string

const (
	// KindRollBonus adds Value to a contest roll.
	KindRollBonus EffectKind = "roll_bonus"
	// KindRollMultiplier scales a contest roll by (1 + Value).
	KindRollMultiplier EffectKind = "roll_multiplier"
	// KindReroll grants one reroll, keeping the better result.
	KindReroll EffectKind = "reroll"
	// KindDamageReduction adds Value percentage points of reduction.
	KindDamageReduction EffectKind = "damage_reduction"
	// KindDamageBonus scales outgoing damage by (1 + Value/100).
	KindDamageBonus EffectKind = "damage_bonus"
	// KindKOResist cancels a knockout.
	KindKOResist EffectKind = "ko_resist"

	// Resource effects are applied by the handler itself; Value is what landed.
	KindHeal           EffectKind = "heal"
	KindMoraleRestore  EffectKind = "morale_restore"
	KindStaminaRestore EffectKind = "stamina_restore"
)

// Effect is the typed outcome of one activated trait.
type Effect struct {
	TraitID    string
	FormulaKey string
	Trigger    string
	Kind       EffectKind
	Value      float64
}

// Context carries what a handler may need beyond the character itself.
type Context struct {
	Match    *state.Match
	Opponent *types.Character
	// Roll is the contest roll in progress, when there is one.
	Roll float64
}

// Handler turns a trait definition into an effect for character c. Handlers
// may only mutate c.
type Handler func(c *types.Character, def types.TraitDef, tc Context) Effect

// builtinHandlers is the formula vocabulary every Engine starts with.
func builtinHandlers() map[string]Handler {
	return map[string]Handler{
		"roll_bonus":       rollBonus,
		"damage_reduction": damageReduction,
		"damage_bonus":     damageBonus,
		"heal":             heal,
		"reroll":           reroll,
		"stat_share":       statShare,
		"morale_restore":   moraleRestore,
		"stamina_restore":  staminaRestore,
		"ko_resist":        koResist,
		"hit_stack":        hitStack,
	}
}

// formulaAliases maps legacy formula names onto the built-in handlers.
var formulaAliases = map[string]string{
	"bonus_roll":        "roll_bonus",
	"convergence_power": "roll_bonus",
	"defense_bonus":     "damage_reduction",
	"power_strike":      "damage_bonus",
	"healing":           "heal",
	"second_chance":     "reroll",
	"share_stat":        "stat_share",
	"morale_boost":      "morale_restore",
	"stamina_regen":     "stamina_restore",
	"last_stand":        "ko_resist",
	"consecutive_hits":  "hit_stack",
}

func rollBonus(_ *types.Character, def types.TraitDef, _ Context) Effect {
	return Effect{Kind: KindRollBonus, Value: def.Magnitude}
}

func damageReduction(_ *types.Character, def types.TraitDef, _ Context) Effect {
	return Effect{Kind: KindDamageReduction, Value: def.Magnitude}
}

func damageBonus(_ *types.Character, def types.TraitDef, _ Context) Effect {
	return Effect{Kind: KindDamageBonus, Value: def.Magnitude}
}

func reroll(_ *types.Character, _ types.TraitDef, _ Context) Effect {
	return Effect{Kind: KindReroll, Value: 1}
}

func koResist(_ *types.Character, _ types.TraitDef, _ Context) Effect {
	return Effect{Kind: KindKOResist, Value: 1}
}

// statShare lends Magnitude percent of the character's best attribute,
// in roll points (one attribute point is worth ten).
func statShare(c *types.Character, def types.TraitDef, _ Context) Effect {
	best := float64(state.HighestAttribute(c.Attributes))
	return Effect{Kind: KindRollBonus, Value: best * 10 * def.Magnitude / 100}
}

// hitStack grows with every consecutive convergence win.
func hitStack(c *types.Character, def types.TraitDef, _ Context) Effect {
	return Effect{Kind: KindRollMultiplier, Value: def.Magnitude / 100 * float64(c.HitStreak)}
}

func heal(c *types.Character, def types.TraitDef, tc Context) Effect {
	restored := state.Heal(c, def.Magnitude)
	if tc.Match != nil {
		tc.Match.AddStat(c, state.StatHealing, restored)
	}
	return Effect{Kind: KindHeal, Value: restored}
}

func moraleRestore(c *types.Character, def types.TraitDef, _ Context) Effect {
	before := c.Morale
	state.AdjustMorale(c, def.Magnitude)
	return Effect{Kind: KindMoraleRestore, Value: c.Morale - before}
}

func staminaRestore(c *types.Character, def types.TraitDef, _ Context) Effect {
	return Effect{Kind: KindStaminaRestore, Value: state.RestoreStamina(c, def.Magnitude)}
}

// Sum totals the values of every effect of the given kind.
func Sum(effs []Effect, kind EffectKind) float64 {
	total := 0.0
	for _, e := range effs {
		if e.Kind == kind {
			total += e.Value
		}
	}
	return total
}

// Count returns how many effects are of the given kind.
func Count(effs []Effect, kind EffectKind) int {
	n := 0
	for _, e := range effs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
