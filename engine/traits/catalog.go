package traits

import "github.com/nathoo/metaleague/types"

// DefaultCatalog returns the stock trait table. Loaders may replace or extend it.
func DefaultCatalog() Catalog {
	defs := []types.TraitDef{
		{ID: "genius", Name: "Genius", Type: "combat", Triggers: []string{TriggerConvergence}, FormulaKey: "bonus_roll", Magnitude: 15, StaminaCost: 5, Cooldown: 2},
		{ID: "armor", Name: "Armor", Type: "defense", Triggers: []string{TriggerDamageTaken}, FormulaKey: "damage_reduction", Magnitude: 25, StaminaCost: 5, Cooldown: 1},
		{ID: "tactical", Name: "Tactical", Type: "combat", Triggers: []string{TriggerConvergence}, FormulaKey: "bonus_roll", Magnitude: 20, StaminaCost: 10, Cooldown: 3},
		{ID: "shield", Name: "Shield", Type: "defense", Triggers: []string{TriggerDamageTaken}, FormulaKey: "damage_reduction", Magnitude: 30, StaminaCost: 10, Cooldown: 3},
		{ID: "agile", Name: "Agile", Type: "combat", Triggers: []string{TriggerConvergence}, FormulaKey: "bonus_roll", Magnitude: 15, StaminaCost: 5, Cooldown: 2},
		{ID: "spider-sense", Name: "Spider-Sense", Type: "defense", Triggers: []string{TriggerDamageTaken}, FormulaKey: "defense_bonus", Magnitude: 20, StaminaCost: 5, Cooldown: 2},
		{ID: "stretchy", Name: "Stretchy", Type: "combat", Triggers: []string{TriggerConvergence}, FormulaKey: "bonus_roll", Magnitude: 10, StaminaCost: 5, Cooldown: 1},
		{ID: "healing", Name: "Healing Factor", Type: "recovery", Triggers: []string{TriggerRoundEnd}, FormulaKey: "heal", Magnitude: 5},
		{ID: "lucky", Name: "Lucky", Type: "combat", Triggers: []string{TriggerConvergence}, FormulaKey: "reroll", Magnitude: 1, StaminaCost: 5, Cooldown: 3},
		{ID: "relentless", Name: "Relentless", Type: "combat", Triggers: []string{TriggerConvergence}, FormulaKey: "hit_stack", Magnitude: 10, StaminaCost: 5, Cooldown: 1},
		{ID: "mimic", Name: "Mimic", Type: "combat", Triggers: []string{TriggerConvergence}, FormulaKey: "stat_share", Magnitude: 30, StaminaCost: 10, Cooldown: 3},
		{ID: "iron-will", Name: "Iron Will", Type: "defense", Triggers: []string{TriggerKO}, FormulaKey: "ko_resist", Magnitude: 1, StaminaCost: 0, Cooldown: 5},
		{ID: "rally", Name: "Rally", Type: "support", Triggers: []string{TriggerRoundEnd}, FormulaKey: "morale_restore", Magnitude: 5, Cooldown: 2},
		{ID: "second-wind", Name: "Second Wind", Type: "recovery", Triggers: []string{TriggerStaminaRegen}, FormulaKey: "stamina_restore", Magnitude: 8, Cooldown: 2},
		{ID: "berserker", Name: "Berserker", Type: "combat", Triggers: []string{TriggerConvergence, TriggerPieceCaptured}, FormulaKey: "damage_bonus", Magnitude: 25, StaminaCost: 10, Cooldown: 2},
	}
	cat := make(Catalog, len(defs))
	for _, d := range defs {
		cat[d.ID] = d
	}
	return cat
}
