// Package loader loads Lua league content into Go structs. The Lua VM is
// discarded after loading; matches never run Lua.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// rawTrait holds a trait table before compilation.
type rawTrait struct {
	id    string
	table *lua.LTable
}

// rawTeam holds a team table before compilation.
type rawTeam struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field, in order.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts collected Lua tables into league content.
func compile(coll *collector) (*Content, error) {
	content := &Content{Traits: traits.DefaultCatalog()}

	if coll.league != nil {
		content.League = LeagueInfo{
			Name:   getString(coll.league, "name"),
			Season: getInt(coll.league, "season"),
			Seed:   int64(getNumber(coll.league, "seed")),
		}
	}

	for _, raw := range coll.traits {
		content.Traits[raw.id] = compileTrait(raw)
	}

	for _, raw := range coll.teams {
		team, err := compileTeam(raw)
		if err != nil {
			return nil, err
		}
		content.Teams = append(content.Teams, team)
	}

	for _, tbl := range coll.fixtures {
		content.Fixtures = append(content.Fixtures, types.Fixture{
			Home: getString(tbl, "home"),
			Away: getString(tbl, "away"),
			Seed: int64(getNumber(tbl, "seed")),
		})
	}
	return content, nil
}

func compileTrait(raw rawTrait) types.TraitDef {
	name := getString(raw.table, "name")
	if name == "" {
		name = raw.id
	}
	return types.TraitDef{
		ID:          raw.id,
		Name:        name,
		Type:        getString(raw.table, "type"),
		Triggers:    getStrings(raw.table, "triggers"),
		FormulaKey:  getString(raw.table, "formula"),
		Magnitude:   getNumber(raw.table, "magnitude"),
		StaminaCost: getNumber(raw.table, "stamina_cost"),
		Cooldown:    getInt(raw.table, "cooldown"),
	}
}

func compileTeam(raw rawTeam) (types.Team, error) {
	team := types.Team{
		ID:      raw.id,
		Name:    getString(raw.table, "name"),
		Manager: getString(raw.table, "manager"),
	}
	if team.Name == "" {
		team.Name = raw.id
	}

	roster := getTable(raw.table, "roster")
	if roster == nil {
		return team, nil
	}
	for i := 1; i <= roster.MaxN(); i++ {
		tbl, ok := roster.RawGetInt(i).(*lua.LTable)
		if !ok {
			return team, fmt.Errorf("team %q: roster entry %d is not a table", raw.id, i)
		}
		c, err := compileCharacter(tbl)
		if err != nil {
			return team, fmt.Errorf("team %q: roster entry %d: %w", raw.id, i, err)
		}
		team.Roster = append(team.Roster, c)
	}
	return team, nil
}

func compileCharacter(tbl *lua.LTable) (*types.Character, error) {
	id := getString(tbl, characterMarker)
	if id == "" {
		id = getString(tbl, "id")
	}
	if id == "" {
		return nil, fmt.Errorf("character has no id")
	}
	c := &types.Character{
		ID:       id,
		Name:     getString(tbl, "name"),
		Role:     types.Role(getString(tbl, "role")),
		Division: types.Division(getString(tbl, "division")),
		Bench:    getBool(tbl, "bench", false),
		Traits:   getStrings(tbl, "traits"),
	}
	if c.Name == "" {
		c.Name = id
	}
	if attrs := getTable(tbl, "attributes"); attrs != nil {
		c.Attributes = compileAttributes(attrs)
	}
	return c, nil
}

func compileAttributes(tbl *lua.LTable) types.Attributes {
	return types.Attributes{
		STR: getInt(tbl, "STR"),
		SPD: getInt(tbl, "SPD"),
		DUR: getInt(tbl, "DUR"),
		RES: getInt(tbl, "RES"),
		WIL: getInt(tbl, "WIL"),
		FS:  getInt(tbl, "FS"),
		OP:  getInt(tbl, "OP"),
		LDR: getInt(tbl, "LDR"),
		AM:  getInt(tbl, "AM"),
	}
}

// attributeNames lists the rating keys in display order.
var attributeNames = []string{"STR", "SPD", "DUR", "RES", "WIL", "FS", "OP", "LDR", "AM"}

// attributeValues pairs each rating name with its value.
func attributeValues(a types.Attributes) map[string]int {
	return map[string]int{
		"STR": a.STR, "SPD": a.SPD, "DUR": a.DUR,
		"RES": a.RES, "WIL": a.WIL, "FS": a.FS,
		"OP": a.OP, "LDR": a.LDR, "AM": a.AM,
	}
}

// sortedTraitIDs returns catalog keys in order, for stable warnings.
func sortedTraitIDs(cat traits.Catalog) []string {
	ids := make([]string, 0, len(cat))
	for id := range cat {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
