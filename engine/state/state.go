// Package state holds character resource helpers and the per-match context
// that every engine component reads and appends to.
package state

import "github.com/nathoo/metaleague/types"

// DefaultAttribute is used for any attribute that is missing or non-positive.
const DefaultAttribute = 5

// Resource bounds.
const (
	MinResource = 0.0
	MaxResource = 100.0

	DefaultMorale = 50.0
)

// Attr returns the named attribute with the default applied.
func Attr(v int) int {
	if v <= 0 {
		return DefaultAttribute
	}
	return v
}

// Attrs returns a copy of a with every missing attribute defaulted.
func Attrs(a types.Attributes) types.Attributes {
	return types.Attributes{
		STR: Attr(a.STR),
		SPD: Attr(a.SPD),
		DUR: Attr(a.DUR),
		RES: Attr(a.RES),
		WIL: Attr(a.WIL),
		FS:  Attr(a.FS),
		OP:  Attr(a.OP),
		LDR: Attr(a.LDR),
		AM:  Attr(a.AM),
	}
}

// HighestAttribute returns the largest defaulted attribute value.
func HighestAttribute(a types.Attributes) int {
	a = Attrs(a)
	best := a.STR
	for _, v := range []int{a.SPD, a.DUR, a.RES, a.WIL, a.FS, a.OP, a.LDR, a.AM} {
		if v > best {
			best = v
		}
	}
	return best
}

// Clamp bounds v to [MinResource, MaxResource].
func Clamp(v float64) float64 {
	if v < MinResource {
		return MinResource
	}
	if v > MaxResource {
		return MaxResource
	}
	return v
}

// ClampRange bounds v to [lo, hi].
func ClampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DivisionFor maps a role onto its division.
func DivisionFor(r types.Role) types.Division {
	switch r {
	case types.RoleFieldLeader, types.RoleVanguard, types.RoleEnforcer:
		return types.DivisionOps
	default:
		return types.DivisionIntel
	}
}

// Reset puts a character into its pre-match state.
func Reset(c *types.Character) {
	c.HP = MaxResource
	c.Stamina = MaxResource
	c.Life = MaxResource
	c.Morale = DefaultMorale
	c.IsKO = false
	c.IsDead = false
	c.HitStreak = 0
	c.Cooldowns = map[string]int{}
	c.RStats = map[string]float64{}
	if c.Division == "" {
		c.Division = DivisionFor(c.Role)
	}
}

// ClampResources forces every resource field back into bounds.
func ClampResources(c *types.Character) {
	c.HP = Clamp(c.HP)
	c.Stamina = Clamp(c.Stamina)
	c.Life = Clamp(c.Life)
	c.Morale = Clamp(c.Morale)
}

// Active reports whether a character can act this round.
func Active(c *types.Character) bool {
	return c != nil && !c.Bench && !c.IsKO && !c.IsDead
}

// Heal adds amount HP. Dead and KO'd characters are not healed; a KO'd
// character only gets back up through recovery. Returns the amount restored.
func Heal(c *types.Character, amount float64) float64 {
	if c.IsDead || c.IsKO || amount <= 0 {
		return 0
	}
	before := c.HP
	c.HP = Clamp(c.HP + amount)
	return c.HP - before
}

// RestoreStamina adds amount stamina to a living character.
func RestoreStamina(c *types.Character, amount float64) float64 {
	if c.IsDead || amount <= 0 {
		return 0
	}
	before := c.Stamina
	c.Stamina = Clamp(c.Stamina + amount)
	return c.Stamina - before
}

// AdjustMorale shifts morale by delta. Dead characters keep their morale.
func AdjustMorale(c *types.Character, delta float64) {
	if c.IsDead {
		return
	}
	c.Morale = Clamp(c.Morale + delta)
}

// HPPercent returns the average HP of the given characters as a percentage.
func HPPercent(chars []*types.Character) float64 {
	if len(chars) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range chars {
		total += c.HP
	}
	return total / (float64(len(chars)) * MaxResource) * 100
}

// KOCount returns how many characters are KO'd or dead.
func KOCount(chars []*types.Character) int {
	n := 0
	for _, c := range chars {
		if c.IsKO || c.IsDead {
			n++
		}
	}
	return n
}

// CloneCharacter returns a deep copy of c.
func CloneCharacter(c *types.Character) *types.Character {
	cp := *c
	cp.Traits = append([]string(nil), c.Traits...)
	cp.Cooldowns = make(map[string]int, len(c.Cooldowns))
	for k, v := range c.Cooldowns {
		cp.Cooldowns[k] = v
	}
	cp.RStats = make(map[string]float64, len(c.RStats))
	for k, v := range c.RStats {
		cp.RStats[k] = v
	}
	return &cp
}

// CloneTeam returns a deep copy of t so independent matches never share
// characters.
func CloneTeam(t types.Team) types.Team {
	cp := t
	cp.Roster = make([]*types.Character, len(t.Roster))
	for i, c := range t.Roster {
		cp.Roster[i] = CloneCharacter(c)
	}
	return cp
}
