// Package traits decides when data-defined traits fire and turns their
// formula keys into typed effects through a registered handler table.
package traits

import (
	"go.uber.org/zap"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

// Known triggers.
const (
	TriggerConvergence   = "convergence"
	TriggerDamageTaken   = "damage_taken"
	TriggerKO            = "ko"
	TriggerRoundEnd      = "round_end"
	TriggerStaminaRegen  = "stamina_regen"
	TriggerMoveMade      = "move_made"
	TriggerPieceCaptured = "piece_captured"
	TriggerMatchStart    = "match_start"
)

// KnownTriggers lists the triggers the match engine fires.
var KnownTriggers = []string{
	TriggerConvergence, TriggerDamageTaken, TriggerKO, TriggerRoundEnd,
	TriggerStaminaRegen, TriggerMoveMade, TriggerPieceCaptured, TriggerMatchStart,
}

// KnownFormula reports whether key names a built-in handler or an alias of one.
func KnownFormula(key string) bool {
	if _, ok := formulaAliases[key]; ok {
		return true
	}
	_, ok := builtinHandlers()[key]
	return ok
}

// Catalog maps trait id to definition.
type Catalog map[string]types.TraitDef

// Activation is a trait that passed its draw.
type Activation struct {
	Def    types.TraitDef
	Chance float64
}

// Engine evaluates traits against one configuration and handler table.
type Engine struct {
	catalog  Catalog
	handlers map[string]Handler
	triggers map[string]bool
	cfg      config.TraitConfig
	log      *zap.Logger
}

// New builds an Engine. Definitions without triggers are dropped; unknown
// formula keys are kept and resolve to no-ops.
func New(catalog Catalog, cfg config.TraitConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		catalog:  Catalog{},
		handlers: builtinHandlers(),
		triggers: map[string]bool{},
		cfg:      cfg,
		log:      log,
	}
	for alias, target := range formulaAliases {
		e.handlers[alias] = e.handlers[target]
	}
	for _, t := range KnownTriggers {
		e.triggers[t] = true
	}

	for id, def := range catalog {
		if def.ID == "" {
			def.ID = id
		}
		if len(def.Triggers) == 0 {
			log.Warn("dropping trait without triggers", zap.String("trait", id))
			continue
		}
		if _, ok := e.handlers[def.FormulaKey]; !ok {
			log.Warn("trait has unknown formula key",
				zap.String("trait", id), zap.String("formula", def.FormulaKey))
		}
		e.catalog[id] = def
	}
	return e
}

// Register adds or replaces a formula handler.
func (e *Engine) Register(key string, h Handler) {
	e.handlers[key] = h
}

// RegisterTrigger marks a trigger name as known.
func (e *Engine) RegisterTrigger(name string) {
	e.triggers[name] = true
}

// Def returns the definition for a trait id.
func (e *Engine) Def(id string) (types.TraitDef, bool) {
	def, ok := e.catalog[id]
	return def, ok
}

// ActivationChance is the probability any eligible trait of c fires now.
func (e *Engine) ActivationChance(c *types.Character, m *state.Match) float64 {
	wil := state.Attr(c.Attributes.WIL)
	p := e.cfg.BaseChance + e.cfg.WILStep*float64(wil-state.DefaultAttribute)

	switch {
	case c.Morale < e.cfg.LowMorale:
		p -= e.cfg.MoraleAdj
	case c.Morale > e.cfg.HighMorale:
		p += e.cfg.MoraleAdj
	}
	if c.Stamina < e.cfg.LowStamina {
		p -= e.cfg.StaminaAdj
	}
	if m != nil {
		switch m.MomentumOf(c.TeamID) {
		case state.MomentumBuilding:
			p += e.cfg.BuildingAdj
		case state.MomentumCrash:
			p += e.cfg.CrashAdj
		}
	}
	return state.ClampRange(p, e.cfg.MinChance, e.cfg.MaxChance)
}

// eligible returns c's traits that listen to trigger, are off cooldown and
// affordable, in the order c holds them.
func (e *Engine) eligible(c *types.Character, trigger string) []types.TraitDef {
	var out []types.TraitDef
	for _, id := range c.Traits {
		def, ok := e.catalog[id]
		if !ok {
			e.log.Warn("unknown trait", zap.String("trait", id), zap.String("character", c.ID))
			continue
		}
		if !hasTrigger(def, trigger) {
			continue
		}
		if _, ok := e.handlers[def.FormulaKey]; !ok {
			e.log.Debug("skipping trait with unknown formula",
				zap.String("trait", id), zap.String("formula", def.FormulaKey))
			continue
		}
		if c.Cooldowns[id] > 0 {
			continue
		}
		if c.Stamina < def.StaminaCost {
			continue
		}
		out = append(out, def)
	}
	return out
}

// CheckActivation draws once per eligible trait. Winners pay their stamina
// cost and start their cooldown.
func (e *Engine) CheckActivation(c *types.Character, trigger string, tc Context) []Activation {
	if c == nil || c.IsDead {
		return nil
	}
	if !e.triggers[trigger] {
		e.log.Debug("unregistered trigger", zap.String("trigger", trigger))
	}
	candidates := e.eligible(c, trigger)
	if len(candidates) == 0 || tc.Match == nil || tc.Match.RNG == nil {
		return nil
	}

	chance := e.ActivationChance(c, tc.Match)
	var out []Activation
	for _, def := range candidates {
		if !tc.Match.RNG.Chance(chance) {
			continue
		}
		c.Stamina = state.Clamp(c.Stamina - def.StaminaCost)
		if def.Cooldown > 0 {
			if c.Cooldowns == nil {
				c.Cooldowns = map[string]int{}
			}
			c.Cooldowns[def.ID] = def.Cooldown
		}
		out = append(out, Activation{Def: def, Chance: chance})
	}
	return out
}

// ApplyEffect activates c's traits for trigger and runs each through its
// formula handler.
func (e *Engine) ApplyEffect(c *types.Character, trigger string, tc Context) []Effect {
	var effs []Effect
	for _, act := range e.CheckActivation(c, trigger, tc) {
		h := e.handlers[act.Def.FormulaKey]
		eff := h(c, act.Def, tc)
		eff.TraitID = act.Def.ID
		eff.FormulaKey = act.Def.FormulaKey
		eff.Trigger = trigger
		effs = append(effs, eff)

		tc.Match.LogTrait(types.TraitLogEntry{
			CharacterID: c.ID,
			TraitID:     act.Def.ID,
			Trigger:     trigger,
			FormulaKey:  act.Def.FormulaKey,
			Value:       eff.Value,
		})
		tc.Match.AddStat(c, state.StatTraits, 1)
		tc.Match.Raise(types.EventTraitActivated, c, map[string]any{
			"trait":   act.Def.ID,
			"trigger": trigger,
			"value":   eff.Value,
		})
		e.log.Debug("trait activated",
			zap.Int("round", tc.Match.Round),
			zap.String("character", c.ID),
			zap.String("trait", act.Def.ID),
			zap.String("trigger", trigger),
			zap.Float64("value", eff.Value))
	}
	return effs
}

// UpdateCooldowns decrements every running cooldown and drops finished ones.
func (e *Engine) UpdateCooldowns(chars []*types.Character) {
	for _, c := range chars {
		for id, cd := range c.Cooldowns {
			if cd <= 1 {
				delete(c.Cooldowns, id)
				continue
			}
			c.Cooldowns[id] = cd - 1
		}
	}
}

func hasTrigger(def types.TraitDef, trigger string) bool {
	for _, t := range def.Triggers {
		if t == trigger {
			return true
		}
	}
	return false
}
