package rules

import (
	"testing"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/types"
)

func roster(team string, roles ...types.Role) []*types.Character {
	out := make([]*types.Character, len(roles))
	for i, r := range roles {
		c := &types.Character{ID: team + string(rune('1'+i)), TeamID: team, Role: r}
		state.Reset(c)
		out[i] = c
	}
	return out
}

func eight(team string) []*types.Character {
	return roster(team,
		types.RoleFieldLeader, types.RoleVanguard, types.RoleEnforcer, types.RoleRanger,
		types.RoleGhostOp, types.RolePsyOp, types.RoleSovereign, types.RoleRanger)
}

func knockOut(c *types.Character) {
	c.HP, c.Stamina, c.IsKO = 0, 0, true
}

func TestNew_RegistersBuiltins(t *testing.T) {
	r := New(config.Default().Match)
	want := []string{ReasonFieldLeaderKO, ReasonKOThreshold, ReasonHPThreshold, ReasonBoardsDone, ReasonMaxRounds}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("condition %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCheck(t *testing.T) {
	cfg := config.Default().Match

	tests := []struct {
		name       string
		round      int
		boards     int
		mutate     func(a, b []*types.Character)
		wantReason string
		wantTeam   string
		wantDone   bool
	}{
		{
			name: "healthy mid match", round: 5, boards: 16,
			mutate: func(a, b []*types.Character) {},
		},
		{
			name: "field leader knocked out", round: 1, boards: 16,
			mutate:     func(a, b []*types.Character) { knockOut(b[0]) },
			wantReason: ReasonFieldLeaderKO, wantTeam: "B", wantDone: true,
		},
		{
			name: "field leader dead", round: 1, boards: 16,
			mutate:     func(a, b []*types.Character) { a[0].IsDead = true },
			wantReason: ReasonFieldLeaderKO, wantTeam: "A", wantDone: true,
		},
		{
			name: "ko threshold", round: 3, boards: 16,
			mutate: func(a, b []*types.Character) {
				knockOut(a[1])
				knockOut(a[2])
				knockOut(a[3])
			},
			wantReason: ReasonKOThreshold, wantTeam: "A", wantDone: true,
		},
		{
			name: "two knockouts is not enough", round: 3, boards: 16,
			mutate: func(a, b []*types.Character) {
				knockOut(a[1])
				knockOut(a[2])
			},
		},
		{
			name: "hp threshold", round: 3, boards: 16,
			mutate: func(a, b []*types.Character) {
				for _, c := range b {
					c.HP = 20
				}
			},
			wantReason: ReasonHPThreshold, wantTeam: "B", wantDone: true,
		},
		{
			name: "every board finished", round: 3, boards: 0,
			mutate:     func(a, b []*types.Character) {},
			wantReason: ReasonBoardsDone, wantDone: true,
		},
		{
			name: "max rounds", round: cfg.MaxRounds, boards: 16,
			mutate:     func(a, b []*types.Character) {},
			wantReason: ReasonMaxRounds, wantDone: true,
		},
		{
			name: "field leader wins over max rounds", round: cfg.MaxRounds, boards: 16,
			mutate:     func(a, b []*types.Character) { knockOut(a[0]) },
			wantReason: ReasonFieldLeaderKO, wantTeam: "A", wantDone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := eight("A"), eight("B")
			tt.mutate(a, b)
			r := New(cfg)
			reason, team, done := r.Check(View{
				Round:        tt.round,
				A:            Standing{TeamID: "A", Active: a},
				B:            Standing{TeamID: "B", Active: b},
				BoardsActive: tt.boards,
			})
			if done != tt.wantDone || reason != tt.wantReason || team != tt.wantTeam {
				t.Errorf("Check = (%q, %q, %v), want (%q, %q, %v)",
					reason, team, done, tt.wantReason, tt.wantTeam, tt.wantDone)
			}
		})
	}
}

func TestRegister_CustomCondition(t *testing.T) {
	r := New(config.Default().Match)
	r.Register(Condition{Name: "sudden_death", Match: func(v View, _ config.MatchConfig) bool {
		return v.Round == 2
	}})

	v := View{Round: 2, A: Standing{TeamID: "A", Active: eight("A")}, B: Standing{TeamID: "B", Active: eight("B")}, BoardsActive: 16}
	reason, _, done := r.Check(v)
	if !done || reason != "sudden_death" {
		t.Errorf("Check = (%q, %v), want sudden_death", reason, done)
	}
}

func TestCheck_ZeroThresholdsDisabled(t *testing.T) {
	cfg := config.Default().Match
	cfg.KOThreshold = 0
	cfg.HPThresholdPct = 0
	a := eight("A")
	for _, c := range a[1:] {
		knockOut(c)
	}
	a[1].HP = 0
	r := New(cfg)
	_, _, done := r.Check(View{Round: 1, A: Standing{TeamID: "A", Active: a}, B: Standing{TeamID: "B", Active: eight("B")}, BoardsActive: 16})
	if done {
		t.Error("disabled thresholds should not end the match")
	}
}
