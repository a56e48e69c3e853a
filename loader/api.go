package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// characterMarker tags tables produced by Character "id" {...}.
const characterMarker = "__character_id"

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerTriggerNames(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// League { name = "...", season = 1, seed = 7 }
	L.SetGlobal("League", L.NewFunction(func(L *lua.LState) int {
		coll.league = L.CheckTable(1)
		return 0
	}))

	// Trait "id" { ... }: Trait("id") returns a function that takes a table.
	L.SetGlobal("Trait", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.traits = append(coll.traits, rawTrait{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Character "id" { ... } returns the table, marked, for use in a roster.
	L.SetGlobal("Character", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString(characterMarker, lua.LString(id))
			L.Push(tbl)
			return 1
		}))
		return 1
	}))

	// Team "id" { name = "...", roster = { Character "x" {...}, ... } }
	L.SetGlobal("Team", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.teams = append(coll.teams, rawTeam{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Fixture { home = "a", away = "b", seed = 3 }
	L.SetGlobal("Fixture", L.NewFunction(func(L *lua.LState) int {
		coll.fixtures = append(coll.fixtures, L.CheckTable(1))
		return 0
	}))
}

// registerTriggerNames exposes the trigger vocabulary as On.<Name>.
func registerTriggerNames(L *lua.LState) {
	on := L.NewTable()
	for name, trigger := range map[string]string{
		"Convergence":   "convergence",
		"DamageTaken":   "damage_taken",
		"KO":            "ko",
		"RoundEnd":      "round_end",
		"StaminaRegen":  "stamina_regen",
		"MoveMade":      "move_made",
		"PieceCaptured": "piece_captured",
		"MatchStart":    "match_start",
	} {
		on.RawSetString(name, lua.LString(trigger))
	}
	L.SetGlobal("On", on)
}
