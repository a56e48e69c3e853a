package state

import (
	"testing"

	"github.com/nathoo/metaleague/engine/rng"
	"github.com/nathoo/metaleague/types"
)

func testCharacter(id string) *types.Character {
	c := &types.Character{ID: id, TeamID: "alpha", Role: types.RoleRanger}
	Reset(c)
	return c
}

func TestAttrs_Defaults(t *testing.T) {
	a := Attrs(types.Attributes{STR: 8, DUR: -2})
	if a.STR != 8 {
		t.Errorf("STR = %d, want 8", a.STR)
	}
	if a.DUR != DefaultAttribute {
		t.Errorf("DUR = %d, want default", a.DUR)
	}
	if a.AM != DefaultAttribute {
		t.Errorf("AM = %d, want default", a.AM)
	}
}

func TestHighestAttribute(t *testing.T) {
	if got := HighestAttribute(types.Attributes{OP: 9, FS: 7}); got != 9 {
		t.Errorf("HighestAttribute = %d, want 9", got)
	}
	if got := HighestAttribute(types.Attributes{}); got != DefaultAttribute {
		t.Errorf("HighestAttribute of empty = %d, want %d", got, DefaultAttribute)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{55.5, 55.5},
		{100, 100},
		{140, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestDivisionFor(t *testing.T) {
	tests := []struct {
		role types.Role
		want types.Division
	}{
		{types.RoleFieldLeader, types.DivisionOps},
		{types.RoleVanguard, types.DivisionOps},
		{types.RoleEnforcer, types.DivisionOps},
		{types.RoleRanger, types.DivisionIntel},
		{types.RoleGhostOp, types.DivisionIntel},
		{types.RolePsyOp, types.DivisionIntel},
		{types.RoleSovereign, types.DivisionIntel},
	}
	for _, tt := range tests {
		if got := DivisionFor(tt.role); got != tt.want {
			t.Errorf("DivisionFor(%s) = %s, want %s", tt.role, got, tt.want)
		}
	}
}

func TestReset(t *testing.T) {
	c := &types.Character{ID: "x", Role: types.RoleFieldLeader, HP: 3, IsKO: true, IsDead: true}
	Reset(c)
	if c.HP != 100 || c.Stamina != 100 || c.Life != 100 || c.Morale != 50 {
		t.Errorf("resources not reset: %+v", c)
	}
	if c.IsKO || c.IsDead {
		t.Error("status flags not cleared")
	}
	if c.Division != types.DivisionOps {
		t.Errorf("Division = %q, want o", c.Division)
	}
	if c.Cooldowns == nil || c.RStats == nil {
		t.Error("maps should be non-nil after reset")
	}
}

func TestHeal_DeadIgnored(t *testing.T) {
	c := testCharacter("a")
	c.HP = 0
	c.IsDead = true
	if got := Heal(c, 50); got != 0 {
		t.Errorf("Heal on dead returned %g", got)
	}
	if c.HP != 0 {
		t.Errorf("dead HP changed to %g", c.HP)
	}
	if got := RestoreStamina(c, 50); got != 0 || c.Stamina != 100 {
		t.Errorf("RestoreStamina on dead changed stamina")
	}
}

func TestHeal_Clamps(t *testing.T) {
	c := testCharacter("a")
	c.HP = 90
	if got := Heal(c, 25); got != 10 {
		t.Errorf("Heal restored %g, want 10", got)
	}
	if c.HP != 100 {
		t.Errorf("HP = %g, want 100", c.HP)
	}
}

func TestAdjustMorale_Bounds(t *testing.T) {
	c := testCharacter("a")
	AdjustMorale(c, 80)
	if c.Morale != 100 {
		t.Errorf("Morale = %g, want 100", c.Morale)
	}
	AdjustMorale(c, -300)
	if c.Morale != 0 {
		t.Errorf("Morale = %g, want 0", c.Morale)
	}
}

func TestHPPercentAndKOCount(t *testing.T) {
	a, b := testCharacter("a"), testCharacter("b")
	b.HP = 50
	b.IsKO = true
	chars := []*types.Character{a, b}
	if got := HPPercent(chars); got != 75 {
		t.Errorf("HPPercent = %g, want 75", got)
	}
	if got := KOCount(chars); got != 1 {
		t.Errorf("KOCount = %d, want 1", got)
	}
	if got := HPPercent(nil); got != 0 {
		t.Errorf("HPPercent(nil) = %g, want 0", got)
	}
}

func TestCloneTeam_Independent(t *testing.T) {
	orig := types.Team{ID: "t", Roster: []*types.Character{testCharacter("a")}}
	orig.Roster[0].Traits = []string{"armor"}
	cp := CloneTeam(orig)

	cp.Roster[0].HP = 1
	cp.Roster[0].Traits[0] = "shield"
	cp.Roster[0].RStats["rDD"] = 9

	if orig.Roster[0].HP != 100 {
		t.Error("clone shares HP with original")
	}
	if orig.Roster[0].Traits[0] != "armor" {
		t.Error("clone shares trait slice with original")
	}
	if _, ok := orig.Roster[0].RStats["rDD"]; ok {
		t.Error("clone shares rStats with original")
	}
}

func TestMatch_AddStatEmits(t *testing.T) {
	m := NewMatch(rng.New(1))
	var got []types.Event
	m.Emit = func(e types.Event) { got = append(got, e) }
	m.Round = 4

	c := testCharacter("a")
	m.AddStat(c, StatDamageDealt, 6)
	m.AddStat(c, StatDamageDealt, 0)

	if c.RStats[StatDamageDealt] != 6 {
		t.Errorf("rDD = %g, want 6", c.RStats[StatDamageDealt])
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Type != types.EventStat || got[0].Round != 4 || got[0].CharacterID != "a" {
		t.Errorf("unexpected event %+v", got[0])
	}
}

func TestMatch_AddContributor(t *testing.T) {
	m := NewMatch(rng.New(1))
	m.AddContributor("t", "a")
	m.AddContributor("t", "b")
	m.AddContributor("t", "a")
	m.AddContributor("t", "t")
	m.AddContributor("", "a")

	if len(m.Contributors["t"]) != 2 {
		t.Errorf("contributors = %v, want a and b", m.Contributors["t"])
	}
	if len(m.Contributors) != 1 {
		t.Errorf("unexpected targets: %v", m.Contributors)
	}
}

func TestMatch_MomentumOfDefault(t *testing.T) {
	m := NewMatch(rng.New(1))
	if got := m.MomentumOf("nobody"); got != MomentumNeutral {
		t.Errorf("MomentumOf = %q, want neutral", got)
	}
	m.MomentumLabel["alpha"] = MomentumCrash
	if got := m.MomentumOf("alpha"); got != MomentumCrash {
		t.Errorf("MomentumOf = %q, want crash", got)
	}
}
