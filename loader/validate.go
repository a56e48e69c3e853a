package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known roster roles.
var validRoles = map[types.Role]bool{
	types.RoleFieldLeader: true,
	types.RoleVanguard:    true,
	types.RoleEnforcer:    true,
	types.RoleRanger:      true,
	types.RoleGhostOp:     true,
	types.RolePsyOp:       true,
	types.RoleSovereign:   true,
}

// Attribute ratings outside this range are accepted but flagged.
const (
	minRating = 1
	maxRating = 10
)

// validate checks cross-references in compiled content. Warnings never
// fail a load; any error does.
func validate(c *Content) ([]string, error) {
	ve := &ValidationError{}

	validateTraits(c.Traits, ve)

	teams := map[string]bool{}
	characters := map[string]string{}
	for _, t := range c.Teams {
		if teams[t.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate team id %q", t.ID))
		}
		teams[t.ID] = true

		if len(t.Roster) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("team %q has an empty roster", t.ID))
		}
		for _, ch := range t.Roster {
			if owner, ok := characters[ch.ID]; ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"character %q in team %q already belongs to team %q", ch.ID, t.ID, owner))
			}
			characters[ch.ID] = t.ID
			validateCharacter(ch, c.Traits, ve)
		}
	}

	for i, f := range c.Fixtures {
		for _, id := range []string{f.Home, f.Away} {
			if !teams[id] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"fixture %d references undefined team %q", i+1, id))
			}
		}
		if f.Home == f.Away && f.Home != "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"fixture %d pairs team %q with itself", i+1, f.Home))
		}
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateTraits(cat traits.Catalog, ve *ValidationError) {
	triggers := map[string]bool{}
	for _, t := range traits.KnownTriggers {
		triggers[t] = true
	}
	for _, id := range sortedTraitIDs(cat) {
		def := cat[id]
		if len(def.Triggers) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("trait %q has no triggers", id))
		}
		for _, tr := range def.Triggers {
			if !triggers[tr] {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"trait %q uses unknown trigger %q", id, tr))
			}
		}
		if !traits.KnownFormula(def.FormulaKey) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"trait %q uses unknown formula %q", id, def.FormulaKey))
		}
	}
}

func validateCharacter(ch *types.Character, cat traits.Catalog, ve *ValidationError) {
	if !validRoles[ch.Role] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"character %q has unknown role %q", ch.ID, ch.Role))
	}
	switch ch.Division {
	case "", types.DivisionOps, types.DivisionIntel:
	default:
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"character %q has unknown division %q", ch.ID, ch.Division))
	}
	for _, id := range ch.Traits {
		if _, ok := cat[id]; !ok {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"character %q references undefined trait %q", ch.ID, id))
		}
	}
	values := attributeValues(ch.Attributes)
	for _, name := range attributeNames {
		// Zero means unset; the engine substitutes the default.
		if v := values[name]; v != 0 && (v < minRating || v > maxRating) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"character %q has %s %d outside %d..%d", ch.ID, name, v, minRating, maxRating))
		}
	}
}
