// Package combat turns material swings and duel outcomes into damage and
// owns the HP → stamina → life cascade, knockouts and recovery.
package combat

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// DamageResult describes what one ApplyDamage call did.
type DamageResult struct {
	Raw         float64
	Reduction   float64
	Applied     float64
	HPLoss      float64
	StaminaLoss float64
	LifeLoss    float64
	KO          bool
	KOResisted  bool
	Died        bool
	// Ignored is set when the target was already dead or raw was not positive.
	Ignored bool
}

// Resolver applies damage and recovery under one configuration.
type Resolver struct {
	combat   config.CombatConfig
	recovery config.RecoveryConfig
	traits   *traits.Engine
	log      *zap.Logger
}

// New creates a Resolver. te may be nil, in which case no trait fires.
func New(cfg *config.Config, te *traits.Engine, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		combat:   cfg.Combat,
		recovery: cfg.Recovery,
		traits:   te,
		log:      log,
	}
}

// TotalReduction is the percentage of incoming damage target shrugs off.
func (r *Resolver) TotalReduction(m *state.Match, target *types.Character, traitReduction float64) float64 {
	a := state.Attrs(target.Attributes)
	total := r.combat.BaseReduction + traitReduction +
		float64(a.DUR-state.DefaultAttribute)*r.combat.DURStep +
		float64(a.RES-state.DefaultAttribute)*r.combat.RESStep
	if m != nil && m.MomentumOf(target.TeamID) == state.MomentumCrash {
		total += r.combat.CrashReduction
	}
	return state.ClampRange(total, 0, r.combat.MaxReduction)
}

// DefenseReduction fires target's damage_taken traits and totals their
// reduction.
func (r *Resolver) DefenseReduction(m *state.Match, target *types.Character, attacker *types.Character) float64 {
	effs := r.fire(m, target, traits.TriggerDamageTaken, attacker)
	return traits.Sum(effs, traits.KindDamageReduction)
}

// ApplyDamage lands raw damage on target. attacker may be nil.
func (r *Resolver) ApplyDamage(m *state.Match, target *types.Character, raw float64,
	attacker *types.Character, reductionPct float64) DamageResult {

	res := DamageResult{Raw: raw}
	if target.IsDead || raw <= 0 || math.IsNaN(raw) {
		res.Ignored = true
		return res
	}

	res.Reduction = r.TotalReduction(m, target, reductionPct)
	res.Applied = math.Max(1, raw*(1-res.Reduction/100))

	// HP first.
	overflow := res.Applied
	if target.HP >= overflow {
		target.HP -= overflow
		res.HPLoss = overflow
		overflow = 0
	} else {
		res.HPLoss = target.HP
		overflow -= target.HP
		target.HP = 0
	}

	// Remainder drains stamina at the overflow rate.
	if overflow > 0 {
		staminaDmg := overflow * r.combat.OverflowRate
		if staminaDmg <= target.Stamina {
			target.Stamina -= staminaDmg
			res.StaminaLoss = staminaDmg
		} else {
			excess := staminaDmg - target.Stamina
			res.StaminaLoss = target.Stamina
			target.Stamina = 0
			if excess > r.combat.LifeLossThreshold {
				res.LifeLoss = math.Min(r.combat.LifeLoss, target.Life)
				target.Life -= res.LifeLoss
			}
		}
	}
	state.ClampResources(target)

	if m != nil {
		m.AddStat(target, state.StatDamageTaken, res.Applied)
		if attacker != nil {
			m.AddContributor(target.ID, attacker.ID)
			r.creditDamage(m, attacker, res.Applied)
		}
	}

	switch {
	case target.Life <= 0:
		target.Life = 0
		target.IsDead = true
		target.IsKO = false
		res.Died = true
		if m != nil {
			m.Raise(types.EventDeath, target, map[string]any{"by": idOf(attacker)})
		}
		r.log.Info("character died", zap.String("character", target.ID), zap.String("by", idOf(attacker)))
	case target.HP == 0 && target.Stamina == 0 && !target.IsKO:
		if r.resistKO(m, target, attacker) {
			target.HP = 1
			res.KOResisted = true
			break
		}
		target.IsKO = true
		res.KO = true
		r.creditKO(m, target, attacker)
	}
	return res
}

// DamageFromMaterialChange converts a material swing (from c's point of
// view) into dealt or taken damage.
func (r *Resolver) DamageFromMaterialChange(m *state.Match, c *types.Character, delta float64) DamageResult {
	if delta == 0 || c.IsDead {
		return DamageResult{Ignored: true}
	}
	amount := math.Abs(delta) * r.combat.MaterialScale
	if delta > 0 {
		if m != nil {
			r.creditDamage(m, c, amount)
			m.AddStat(c, state.StatCaptures, 1)
		}
		return DamageResult{Raw: amount}
	}
	reduction := r.DefenseReduction(m, c, nil)
	return r.ApplyDamage(m, c, amount, nil, reduction)
}

// MoveCost is the stamina one move costs c. Will above 5 makes it cheaper.
func (r *Resolver) MoveCost(c *types.Character) float64 {
	wil := state.Attr(c.Attributes.WIL)
	factor := math.Max(r.combat.MoveCostFloor, 1-float64(wil-state.DefaultAttribute)*r.combat.MoveCostWILStep)
	return r.combat.MoveStaminaCost * factor
}

// ApplyMoveCost charges c for one move.
func (r *Resolver) ApplyMoveCost(c *types.Character) {
	if c.IsDead {
		return
	}
	c.Stamina = state.Clamp(c.Stamina - r.MoveCost(c))
}

// ApplyHealing restores HP to target. Returns the amount that landed.
func (r *Resolver) ApplyHealing(m *state.Match, target *types.Character, amount float64) float64 {
	healed := state.Heal(target, amount)
	if m != nil {
		m.AddStat(target, state.StatHealing, healed)
	}
	return healed
}

// ApplyEndOfRoundRecovery regenerates every living character. KO'd
// characters regain stamina faster and may get back up.
func (r *Resolver) ApplyEndOfRoundRecovery(m *state.Match, chars []*types.Character) {
	for _, c := range chars {
		if c.IsDead || c.Bench {
			continue
		}
		wil := state.Attr(c.Attributes.WIL)
		regen := math.Max(0, r.recovery.StaminaRegen+float64(wil-state.DefaultAttribute)*r.recovery.WILStaminaBonus)

		if !c.IsKO {
			r.ApplyHealing(m, c, r.recovery.HPRegen)
			state.RestoreStamina(c, regen)
			continue
		}

		state.RestoreStamina(c, regen*r.recovery.KOStaminaFactor)
		if c.Stamina <= r.recovery.MinStamina || m == nil || m.RNG == nil {
			continue
		}
		chance := c.Stamina/r.recovery.ChanceDivisor + float64(wil-state.DefaultAttribute)*r.recovery.WILChanceStep
		if !m.RNG.Chance(state.ClampRange(chance, 0, 1)) {
			continue
		}
		c.IsKO = false
		c.HP = state.Clamp(math.Max(r.recovery.HPFloor, c.HP))
		m.AddStat(c, state.StatRecoveries, 1)
		m.Raise(types.EventRecovered, c, map[string]any{"hp": c.HP})
		r.log.Debug("character recovered", zap.Int("round", m.Round), zap.String("character", c.ID))
	}
}

func (r *Resolver) resistKO(m *state.Match, target, attacker *types.Character) bool {
	effs := r.fire(m, target, traits.TriggerKO, attacker)
	if traits.Count(effs, traits.KindKOResist) == 0 {
		return false
	}
	if m != nil {
		m.AddStat(target, state.StatKOResisted, 1)
	}
	return true
}

func (r *Resolver) creditKO(m *state.Match, target, attacker *types.Character) {
	r.log.Debug("knockout", zap.String("character", target.ID), zap.String("by", idOf(attacker)))
	if m == nil {
		return
	}
	m.Raise(types.EventKO, target, map[string]any{"by": idOf(attacker)})
	if attacker != nil {
		m.AddStat(attacker, state.StatKOs, 1)
	}
	for _, id := range sortedIDs(m.Contributors[target.ID]) {
		if id == idOf(attacker) {
			continue
		}
		helper, ok := m.Characters[id]
		if !ok {
			continue
		}
		m.AddStat(helper, state.StatAssists, 1)
		m.Raise(types.EventAssist, helper, map[string]any{"target": target.ID})
	}
}

func (r *Resolver) creditDamage(m *state.Match, attacker *types.Character, amount float64) {
	m.AddStat(attacker, state.StatDamageDealt, amount)
	if attacker.Division == types.DivisionOps {
		m.AddStat(attacker, state.StatDamageDealtOp, amount)
	} else {
		m.AddStat(attacker, state.StatDamageDealtIn, amount)
	}
}

func (r *Resolver) fire(m *state.Match, c *types.Character, trigger string, opponent *types.Character) []traits.Effect {
	if r.traits == nil || m == nil {
		return nil
	}
	return r.traits.ApplyEffect(c, trigger, traits.Context{Match: m, Opponent: opponent})
}

// sortedIDs keeps event order stable across runs.
func sortedIDs(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func idOf(c *types.Character) string {
	if c == nil {
		return ""
	}
	return c.ID
}
