// Package save encodes match results as JSON, the one artifact downstream
// report and stat tools consume.
package save

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nathoo/metaleague/engine/rng"
	"github.com/nathoo/metaleague/types"
)

// FormatVersion is written into every saved result.
const FormatVersion = "1"

// SaveData is the JSON-serializable result format.
type SaveData struct {
	Version string            `json:"version"`
	Result  types.MatchResult `json:"result"`
}

// Save serializes a match result to JSON bytes.
func Save(res *types.MatchResult) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("nothing to save")
	}
	return json.MarshalIndent(SaveData{Version: FormatVersion, Result: *res}, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != "" && sd.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported result version %q", sd.Version)
	}
	// Slices and maps are never nil after load.
	r := &sd.Result
	if r.CharacterResults == nil {
		r.CharacterResults = []types.CharacterResult{}
	}
	if r.ConvergenceLog == nil {
		r.ConvergenceLog = []types.ConvergenceRecord{}
	}
	if r.TraitLog == nil {
		r.TraitLog = []types.TraitLogEntry{}
	}
	for i := range r.CharacterResults {
		if r.CharacterResults[i].RStats == nil {
			r.CharacterResults[i].RStats = map[string]float64{}
		}
	}
	return &sd, nil
}

// WriteFile saves res to path.
func WriteFile(path string, res *types.MatchResult) error {
	data, err := Save(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a result saved with WriteFile.
func ReadFile(path string) (*SaveData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", path, err)
	}
	sd, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return sd, nil
}

// ResumeRNG returns the match RNG positioned where the saved match left it.
func ResumeRNG(sd *SaveData) *rng.RNG {
	return rng.Restore(sd.Result.Seed, sd.Result.RNGPosition)
}
