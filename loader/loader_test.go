package loader

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nathoo/metaleague/types"
)

func TestLoad_Minimal(t *testing.T) {
	content, err := Load("testdata/minimal", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if content.League.Name != "Minimal" {
		t.Errorf("League.Name = %q, want Minimal", content.League.Name)
	}
	if len(content.Teams) != 1 {
		t.Fatalf("expected 1 team, got %d", len(content.Teams))
	}
	team := content.Teams[0]
	if team.Name != "solo" {
		t.Errorf("team name defaults to id, got %q", team.Name)
	}
	if len(team.Roster) != 1 || team.Roster[0].Name != "solo-1" {
		t.Errorf("roster = %+v", team.Roster)
	}
	// Stock traits are always present.
	if _, ok := content.Traits["genius"]; !ok {
		t.Error("default catalog missing from content")
	}
}

func TestLoad_FullLeague(t *testing.T) {
	content, err := Load("testdata/full", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if content.League.Name != "Test League" || content.League.Season != 3 || content.League.Seed != 77 {
		t.Errorf("League = %+v", content.League)
	}

	// Teams, in file order.
	if len(content.Teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(content.Teams))
	}
	north, ok := content.Team("north")
	if !ok {
		t.Fatal("team north not found")
	}
	if north.Name != "Northern Lights" || north.Manager != "R. Vale" {
		t.Errorf("north = %q / %q", north.Name, north.Manager)
	}
	if len(north.Roster) != 9 {
		t.Fatalf("north roster = %d, want 9", len(north.Roster))
	}
	leader := north.Roster[0]
	if leader.ID != "nl-1" || leader.Role != types.RoleFieldLeader {
		t.Errorf("leader = %s/%s", leader.ID, leader.Role)
	}
	if leader.Attributes.FS != 9 || leader.Attributes.STR != 4 {
		t.Errorf("leader attributes = %+v", leader.Attributes)
	}
	if len(leader.Traits) != 1 || leader.Traits[0] != "overclock" {
		t.Errorf("leader traits = %v", leader.Traits)
	}
	if sub := north.Roster[8]; !sub.Bench || sub.ID != "nl-sub" {
		t.Errorf("reserve = %s bench=%v", sub.ID, sub.Bench)
	}
	if _, ok := content.Team("nowhere"); ok {
		t.Error("unknown team should not be found")
	}

	// Traits: custom plus overridden stock.
	oc, ok := content.Traits["overclock"]
	if !ok {
		t.Fatal("trait overclock not found")
	}
	if oc.FormulaKey != "bonus_roll" || oc.Magnitude != 12 || oc.StaminaCost != 8 || oc.Cooldown != 2 {
		t.Errorf("overclock = %+v", oc)
	}
	if len(oc.Triggers) != 1 || oc.Triggers[0] != "convergence" {
		t.Errorf("overclock triggers = %v", oc.Triggers)
	}
	if h := content.Traits["healing"]; h.Name != "Regrowth" || h.Magnitude != 8 {
		t.Errorf("healing override = %+v", h)
	}

	// Fixtures.
	if len(content.Fixtures) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(content.Fixtures))
	}
	want := types.Fixture{Home: "north", Away: "south", Seed: 11}
	if content.Fixtures[0] != want {
		t.Errorf("fixture 0 = %+v, want %+v", content.Fixtures[0], want)
	}
	if content.Fixtures[1].Seed != 0 {
		t.Errorf("fixture 1 seed = %d, want 0", content.Fixtures[1].Seed)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs", nil)
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	if !strings.Contains(err.Error(), "undefined team") {
		t.Errorf("error = %q, expected 'undefined team'", err.Error())
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	assertContains(t, ve.Warnings, "undefined trait")
}

func TestLoad_DuplicateCharacterIDs_Fails(t *testing.T) {
	_, err := Load("testdata/duplicate_ids", nil)
	if err == nil {
		t.Fatal("expected error for duplicate character IDs")
	}
	if !strings.Contains(err.Error(), "already belongs to team") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_UnknownRole_Fails(t *testing.T) {
	_, err := Load("testdata/bad_role", nil)
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
	if !strings.Contains(err.Error(), `unknown role "XX"`) {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua", nil)
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
}

func TestLoad_NoLuaFiles_Fails(t *testing.T) {
	_, err := Load("testdata/empty", nil)
	if err == nil {
		t.Fatal("expected error for a directory without .lua files")
	}
	if !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_MissingDir_Fails(t *testing.T) {
	if _, err := Load("testdata/does-not-exist", nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoad_WarningsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	content, err := Load("testdata/warnings", zap.New(core))
	if err != nil {
		t.Fatalf("warnings must not fail a load: %v", err)
	}
	if len(content.Teams) != 1 {
		t.Fatalf("teams = %d", len(content.Teams))
	}

	var got []string
	for _, e := range logs.FilterMessage("league content").All() {
		got = append(got, e.ContextMap()["warning"].(string))
	}
	assertContains(t, got, `unknown trigger "sunrise"`)
	assertContains(t, got, `unknown formula "teleport"`)
	assertContains(t, got, `trait "idle" has no triggers`)
	assertContains(t, got, `undefined trait "missing"`)
	assertContains(t, got, "STR 14 outside 1..10")
}

func TestLoad_SandboxEnforced(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, code := range []string{
		`os.execute("echo pwned")`,
		`io.open("/etc/passwd")`,
		`dofile("x.lua")`,
		`math.randomseed(1)`,
		`return math.random()`,
	} {
		if err := L.DoString(code); err == nil {
			t.Errorf("expected sandbox to block %s", code)
		}
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"teams.lua", "league.lua", "fixtures.lua", "traits.lua"})
	if files[0] != "league.lua" {
		t.Errorf("first file = %q, want league.lua", files[0])
	}
	// Rest should be alphabetical.
	if files[1] != "fixtures.lua" || files[3] != "traits.lua" {
		t.Errorf("files = %v", files)
	}
}
