package board

import (
	"fmt"

	"github.com/nathoo/metaleague/engine/rng"
	"github.com/nathoo/metaleague/types"
)

// openings are each role's preferred lines, most likely first.
var openings = map[types.Role][][]string{
	types.RoleFieldLeader: {{"e2e4"}, {"d2d4"}, {"c2c4"}},
	types.RoleRanger:      {{"g1f3"}, {"g2g3"}, {"b2b3"}},
	types.RoleVanguard:    {{"e2e4", "e7e5", "g1f3"}, {"d2d4", "d7d5", "c2c4"}},
	types.RoleEnforcer:    {{"c2c4"}, {"d2d4", "d7d5"}, {"e2e4", "c7c5"}},
	types.RoleGhostOp:     {{"g2g3"}, {"b2b3"}, {"c2c4"}},
	types.RolePsyOp:       {{"d2d4", "g8f6"}, {"e2e4", "e7e6"}, {"c2c4", "c7c5"}},
	types.RoleSovereign:   {{"e2e4", "e7e5", "g1f3", "b8c6"}, {"d2d4", "d7d5", "c2c4", "e7e6"}},
}

// Opening picks one of role's lines. Earlier lines are weighted higher.
// Unknown roles get no opening.
func Opening(role types.Role, r *rng.RNG) []string {
	lines := openings[role]
	if len(lines) == 0 {
		return nil
	}
	weights := make([]int, len(lines))
	for i := range lines {
		weights[i] = len(lines) - i
	}
	return lines[r.WeightedSelect(weights)]
}

// ApplyOpening plays moves onto b, stopping at the first one that fails.
func ApplyOpening(b Board, moves []string) error {
	for i, m := range moves {
		if err := b.Push(m); err != nil {
			return fmt.Errorf("opening move %d: %w", i+1, err)
		}
	}
	return nil
}
