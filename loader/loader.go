package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

// Content is everything a league directory defines.
type Content struct {
	League   LeagueInfo
	Traits   traits.Catalog
	Teams    []types.Team
	Fixtures []types.Fixture
}

// LeagueInfo is the optional League {} header.
type LeagueInfo struct {
	Name   string
	Season int
	Seed   int64
}

// Team returns the team with the given id.
func (c *Content) Team(id string) (types.Team, bool) {
	for _, t := range c.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return types.Team{}, false
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	league   *lua.LTable
	traits   []rawTrait
	teams    []rawTeam
	fixtures []*lua.LTable
}

// Load reads all .lua files from dir, compiles them into league content,
// validates references, and returns the result. The Lua VM is discarded
// after loading. Warnings are logged; errors are returned as a
// *ValidationError.
func Load(dir string, log *zap.Logger) (*Content, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Discover .lua files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading league directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: league.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	content, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling league data: %w", err)
	}

	warnings, err := validate(content)
	for _, w := range warnings {
		log.Warn("league content", zap.String("dir", dir), zap.String("warning", w))
	}
	if err != nil {
		return nil, err
	}
	return content, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not reseed or draw from Lua's RNG: matches replay from a seed.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}

// sortedLuaFiles puts league.lua first, then the rest alphabetically.
func sortedLuaFiles(files []string) []string {
	var result []string
	var rest []string
	for _, f := range files {
		if f == "league.lua" {
			result = append(result, f)
		} else {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	return append(result, rest...)
}
