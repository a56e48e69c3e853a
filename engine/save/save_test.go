package save

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/nathoo/metaleague/engine/rng"
	"github.com/nathoo/metaleague/types"
)

func testResult() *types.MatchResult {
	return &types.MatchResult{
		MatchID:           "m-1",
		TeamAID:           "alpha",
		TeamBID:           "beta",
		WinsA:             3,
		WinsB:             1,
		Winner:            "alpha",
		TerminationReason: "max_rounds",
		Rounds:            30,
		Seed:              42,
		RNGPosition:       17,
		CharacterResults: []types.CharacterResult{
			{CharacterID: "a1", TeamID: "alpha", Role: types.RoleFieldLeader, Result: types.ResultWin,
				HP: 80, Stamina: 90, Life: 100, RStats: map[string]float64{"rDD": 12.5}},
		},
		ConvergenceLog: []types.ConvergenceRecord{
			{Round: 2, Square: "d4", AttackerA: "a1", DefenderB: "b1", RollA: 80, RollB: 20,
				Winner: "a1", Loser: "b1", Damage: 3.2, Outcome: "critical_success"},
		},
		TraitLog: []types.TraitLogEntry{
			{Round: 2, CharacterID: "a1", TraitID: "genius", Trigger: "convergence", FormulaKey: "roll_bonus", Value: 15},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	data, err := Save(testResult())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sd.Version != FormatVersion {
		t.Errorf("version = %q, want %q", sd.Version, FormatVersion)
	}
	r := sd.Result
	if r.Winner != "alpha" || r.TerminationReason != "max_rounds" || r.Rounds != 30 {
		t.Errorf("header lost: %+v", r)
	}
	if len(r.CharacterResults) != 1 || r.CharacterResults[0].RStats["rDD"] != 12.5 {
		t.Errorf("character results lost: %+v", r.CharacterResults)
	}
	if len(r.ConvergenceLog) != 1 || r.ConvergenceLog[0].Outcome != "critical_success" {
		t.Errorf("convergence log lost: %+v", r.ConvergenceLog)
	}
	if len(r.TraitLog) != 1 || r.TraitLog[0].TraitID != "genius" {
		t.Errorf("trait log lost: %+v", r.TraitLog)
	}
}

func TestSave_ResultContractKeys(t *testing.T) {
	data, err := Save(testResult())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	var result map[string]any
	if err := json.Unmarshal(raw["result"], &result); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"team_a_id", "team_b_id", "per_character_results", "convergence_log", "trait_log", "winner", "termination_reason"} {
		if _, ok := result[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestSave_Nil(t *testing.T) {
	if _, err := Save(nil); err == nil {
		t.Error("expected error saving nil result")
	}
}

func TestLoad_NilCollectionsNormalized(t *testing.T) {
	sd, err := Load([]byte(`{"version":"1","result":{"winner":"Draw","per_character_results":[{"character_id":"a"}]}}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sd.Result.ConvergenceLog == nil || sd.Result.TraitLog == nil {
		t.Error("logs should be non-nil after load")
	}
	if sd.Result.CharacterResults[0].RStats == nil {
		t.Error("rstats should be non-nil after load")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", "{not json"},
		{"future version", `{"version":"9","result":{}}`},
	}
	for _, tt := range tests {
		if _, err := Load([]byte(tt.data)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	if err := WriteFile(path, testResult()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sd, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if sd.Result.MatchID != "m-1" {
		t.Errorf("match id = %q", sd.Result.MatchID)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResumeRNG(t *testing.T) {
	live := rng.New(42)
	for i := 0; i < 17; i++ {
		live.Roll(100)
	}

	resumed := ResumeRNG(&SaveData{Result: *testResult()})
	if resumed.Position() != live.Position() {
		t.Fatalf("position = %d, want %d", resumed.Position(), live.Position())
	}
	for i := 0; i < 5; i++ {
		if a, b := live.Roll(100), resumed.Roll(100); a != b {
			t.Fatalf("draw %d differs: %d vs %d", i, a, b)
		}
	}
}
