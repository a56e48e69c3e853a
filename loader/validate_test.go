package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

func validContent() *Content {
	return &Content{
		Traits: traits.DefaultCatalog(),
		Teams: []types.Team{
			{ID: "a", Roster: []*types.Character{
				{ID: "a1", Role: types.RoleFieldLeader, Traits: []string{"genius"}},
			}},
			{ID: "b", Roster: []*types.Character{
				{ID: "b1", Role: types.RoleSovereign, Attributes: types.Attributes{STR: 10, AM: 1}},
			}},
		},
		Fixtures: []types.Fixture{{Home: "a", Away: "b"}},
	}
}

func TestValidate_ValidContent(t *testing.T) {
	warnings, err := validate(validContent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Content)
		want   string
	}{
		{"duplicate team", func(c *Content) {
			c.Teams = append(c.Teams, types.Team{ID: "a", Roster: []*types.Character{{ID: "z", Role: types.RoleRanger}}})
		}, `duplicate team id "a"`},
		{"duplicate character", func(c *Content) {
			c.Teams[1].Roster = append(c.Teams[1].Roster, &types.Character{ID: "a1", Role: types.RoleRanger})
		}, `character "a1" in team "b" already belongs to team "a"`},
		{"empty roster", func(c *Content) {
			c.Teams[1].Roster = nil
		}, `team "b" has an empty roster`},
		{"unknown role", func(c *Content) {
			c.Teams[0].Roster[0].Role = "captain"
		}, `unknown role "captain"`},
		{"unknown division", func(c *Content) {
			c.Teams[0].Roster[0].Division = "x"
		}, `unknown division "x"`},
		{"fixture team", func(c *Content) {
			c.Fixtures = append(c.Fixtures, types.Fixture{Home: "a", Away: "c"})
		}, `fixture 2 references undefined team "c"`},
		{"self fixture", func(c *Content) {
			c.Fixtures[0].Away = "a"
		}, `pairs team "a" with itself`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContent()
			tt.mutate(c)
			_, err := validate(c)
			if err == nil {
				t.Fatal("expected error")
			}
			ve := err.(*ValidationError)
			assertContains(t, ve.Errors, tt.want)
			if !strings.HasPrefix(err.Error(), "validation failed with") {
				t.Errorf("error = %q", err.Error())
			}
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Content)
		want   string
	}{
		{"undefined trait", func(c *Content) {
			c.Teams[0].Roster[0].Traits = []string{"flight"}
		}, `undefined trait "flight"`},
		{"no triggers", func(c *Content) {
			c.Traits["quiet"] = types.TraitDef{ID: "quiet", FormulaKey: "heal"}
		}, `trait "quiet" has no triggers`},
		{"unknown trigger", func(c *Content) {
			c.Traits["odd"] = types.TraitDef{ID: "odd", Triggers: []string{"dusk"}, FormulaKey: "heal"}
		}, `unknown trigger "dusk"`},
		{"unknown formula", func(c *Content) {
			c.Traits["odd"] = types.TraitDef{ID: "odd", Triggers: []string{"ko"}, FormulaKey: "warp"}
		}, `unknown formula "warp"`},
		{"formula alias accepted", func(c *Content) {
			c.Traits["alias"] = types.TraitDef{ID: "alias", Triggers: []string{"ko"}, FormulaKey: "healing"}
			c.Teams[0].Roster[0].Attributes.OP = 11
		}, "OP 11 outside 1..10"},
		{"negative attribute", func(c *Content) {
			c.Teams[1].Roster[0].Attributes.WIL = -2
		}, "WIL -2 outside 1..10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContent()
			tt.mutate(c)
			warnings, err := validate(c)
			if err != nil {
				t.Fatalf("warnings must not fail validation: %v", err)
			}
			if len(warnings) != 1 {
				t.Errorf("warnings = %v, want exactly one", warnings)
			}
			assertContains(t, warnings, tt.want)
		})
	}
}

func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got %v", substr, strs)
}
