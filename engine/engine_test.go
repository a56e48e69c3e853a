package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/nathoo/metaleague/config"
	"github.com/nathoo/metaleague/engine/board"
	"github.com/nathoo/metaleague/engine/events"
	"github.com/nathoo/metaleague/engine/state"
	"github.com/nathoo/metaleague/engine/traits"
	"github.com/nathoo/metaleague/types"
)

var lineup = []types.Role{
	types.RoleFieldLeader, types.RoleVanguard, types.RoleEnforcer, types.RoleRanger,
	types.RoleGhostOp, types.RolePsyOp, types.RoleSovereign, types.RoleRanger,
}

// testTeam builds a roster of n baseline characters named id-0, id-1, ...
func testTeam(id string, n int, traitIDs ...string) types.Team {
	t := types.Team{ID: id, Name: "Team " + id}
	for i := 0; i < n; i++ {
		t.Roster = append(t.Roster, &types.Character{
			ID:     fmt.Sprintf("%s-%d", id, i),
			Name:   fmt.Sprintf("%s hero %d", id, i),
			Role:   lineup[i%len(lineup)],
			Traits: append([]string(nil), traitIDs...),
		})
	}
	return t
}

// staticBoard never changes: officers on fixed squares, no legal moves.
type staticBoard struct {
	squares map[string]bool
}

func (s *staticBoard) LegalMoves() []string { return nil }
func (s *staticBoard) Push(string) error    { return nil }
func (s *staticBoard) PieceAt(sq string) (board.Piece, bool) {
	if s.squares[sq] {
		return board.Piece{Type: board.Rook, White: true}, true
	}
	return board.Piece{}, false
}
func (s *staticBoard) Material(bool) int  { return 0 }
func (s *staticBoard) IsGameOver() bool   { return false }
func (s *staticBoard) Result() string     { return board.NoResult }
func (s *staticBoard) WhiteToMove() bool  { return true }
func (s *staticBoard) Clone() board.Board { return s }

// disjointAdapter gives team "A" officers on rank 1 and everyone else rank 8.
func disjointAdapter() board.Adapter {
	return board.AdapterFunc(func(c *types.Character) board.Board {
		rank := "8"
		if c.TeamID == "A" {
			rank = "1"
		}
		sq := map[string]bool{}
		for _, f := range "abcdefgh" {
			sq[string(f)+rank] = true
		}
		return &staticBoard{squares: sq}
	})
}

func runMatch(t *testing.T, cfg *config.Config, a, b types.Team, opts ...Option) *types.MatchResult {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	e := New(cfg, traits.DefaultCatalog(), opts...)
	res, err := e.Run(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func TestRun_ZeroConvergenceDraw(t *testing.T) {
	cfg := config.Default()
	res := runMatch(t, cfg, testTeam("A", 8), testTeam("B", 8), WithAdapter(disjointAdapter()))

	if len(res.ConvergenceLog) != 0 {
		t.Errorf("expected no convergences, got %d", len(res.ConvergenceLog))
	}
	if res.Rounds != cfg.Match.MaxRounds {
		t.Errorf("rounds = %d, want %d", res.Rounds, cfg.Match.MaxRounds)
	}
	if res.TerminationReason != "max_rounds" {
		t.Errorf("reason = %q, want max_rounds", res.TerminationReason)
	}
	if res.Winner != types.Draw {
		t.Errorf("winner = %q, want Draw", res.Winner)
	}
	for _, cr := range res.CharacterResults {
		if cr.Result != types.ResultDraw {
			t.Errorf("%s result = %q, want draw", cr.CharacterID, cr.Result)
		}
	}
}

func TestRun_FieldLeaderKOEndsRound(t *testing.T) {
	hook := func(p Phase, m *state.Match) {
		if p != PhaseRoundSettling || m.Round != 1 {
			return
		}
		fl := m.Characters["A-0"]
		fl.HP, fl.Stamina, fl.IsKO = 0, 0, true
	}
	res := runMatch(t, config.Default(), testTeam("A", 8), testTeam("B", 8), WithRoundHook(hook))

	if res.Rounds != 1 {
		t.Errorf("rounds = %d, want 1", res.Rounds)
	}
	if res.TerminationReason != "field_leader_ko" {
		t.Errorf("reason = %q, want field_leader_ko", res.TerminationReason)
	}
	for _, cr := range res.CharacterResults {
		if cr.CharacterID == "A-0" && cr.Result != types.ResultLoss {
			t.Errorf("knocked out leader result = %q, want loss", cr.Result)
		}
	}
}

func TestRun_RosterSize(t *testing.T) {
	var phases []Phase
	e := New(config.Default(), nil, WithRoundHook(func(p Phase, _ *state.Match) { phases = append(phases, p) }))

	_, err := e.Run(context.Background(), testTeam("A", 7), testTeam("B", 8))
	if !errors.Is(err, ErrRosterSize) {
		t.Fatalf("err = %v, want ErrRosterSize", err)
	}
	if len(phases) != 0 {
		t.Errorf("no phase should run on a bad roster, saw %v", phases)
	}

	benched := testTeam("B", 9)
	benched.Roster[0].Bench = true
	benched.Roster[1].Bench = true
	if _, err := e.Run(context.Background(), testTeam("A", 8), benched); !errors.Is(err, ErrRosterSize) {
		t.Errorf("err = %v, want ErrRosterSize with only 7 available", err)
	}
}

func TestRun_DuplicateIDs(t *testing.T) {
	e := New(config.Default(), nil)
	_, err := e.Run(context.Background(), testTeam("A", 8), testTeam("A", 8))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestRun_Bench(t *testing.T) {
	res := runMatch(t, config.Default(), testTeam("A", 10), testTeam("B", 8))

	if len(res.CharacterResults) != 18 {
		t.Fatalf("character results = %d, want 18", len(res.CharacterResults))
	}
	bench := 0
	for _, cr := range res.CharacterResults {
		if cr.Result != types.ResultBench {
			continue
		}
		bench++
		if cr.TeamID != "A" {
			t.Errorf("%s benched on team %s", cr.CharacterID, cr.TeamID)
		}
		if cr.RStats[state.StatMoves] != 0 || cr.XP != 0 {
			t.Errorf("bench character %s played: %+v", cr.CharacterID, cr)
		}
	}
	if bench != 2 {
		t.Errorf("bench count = %d, want 2", bench)
	}
}

func TestRun_Deterministic(t *testing.T) {
	play := func() *types.MatchResult {
		a := testTeam("A", 8, "genius", "lucky", "healing", "berserker")
		b := testTeam("B", 8, "armor", "spider-sense", "relentless", "iron-will")
		return runMatch(t, config.Default(), a, b, WithSeed(2024))
	}

	first, second := play(), play()
	if !reflect.DeepEqual(first.ConvergenceLog, second.ConvergenceLog) {
		t.Error("convergence logs differ")
	}
	if !reflect.DeepEqual(first.TraitLog, second.TraitLog) {
		t.Error("trait logs differ")
	}
	if first.Winner != second.Winner || first.TerminationReason != second.TerminationReason {
		t.Errorf("outcome differs: %s/%s vs %s/%s", first.Winner, first.TerminationReason, second.Winner, second.TerminationReason)
	}
	if first.MatchID != second.MatchID || first.RNGPosition != second.RNGPosition {
		t.Error("match id or rng position differs")
	}
	if len(first.ConvergenceLog) == 0 {
		t.Error("standard boards should converge at least once")
	}
	if len(first.TraitLog) == 0 {
		t.Error("expected trait activations")
	}
}

func TestRun_ConvergenceCap(t *testing.T) {
	cfg := config.Default()
	res := runMatch(t, cfg, testTeam("A", 8), testTeam("B", 8), WithSeed(7))

	counts := map[string]int{}
	perRound := map[int]int{}
	for _, rec := range res.ConvergenceLog {
		counts[rec.AttackerA]++
		counts[rec.DefenderB]++
		perRound[rec.Round]++
	}
	for id, n := range counts {
		if n > cfg.Convergence.MaxPerCharacter {
			t.Errorf("%s took part in %d convergences, cap is %d", id, n, cfg.Convergence.MaxPerCharacter)
		}
	}
	for round, n := range perRound {
		if n > cfg.Convergence.MaxPerRound {
			t.Errorf("round %d resolved %d convergences, cap is %d", round, n, cfg.Convergence.MaxPerRound)
		}
	}
}

func TestRun_ResourcesStayInBounds(t *testing.T) {
	check := func(p Phase, m *state.Match) {
		for id, c := range m.Characters {
			for name, v := range map[string]float64{"hp": c.HP, "stamina": c.Stamina, "life": c.Life, "morale": c.Morale} {
				if v < 0 || v > 100 {
					t.Errorf("%s: %s %s = %g out of range", p, id, name, v)
				}
			}
			if c.IsKO && c.HP != 0 {
				t.Errorf("%s: %s is KO with HP %g", p, id, c.HP)
			}
		}
	}
	a := testTeam("A", 8, "berserker", "relentless", "lucky")
	b := testTeam("B", 8, "healing", "second-wind", "rally")
	runMatch(t, config.Default(), a, b, WithSeed(99), WithRoundHook(check))
}

func TestRun_DoesNotTouchCallerRosters(t *testing.T) {
	a, b := testTeam("A", 8), testTeam("B", 8)
	runMatch(t, config.Default(), a, b)
	for _, c := range a.Roster {
		if c.HP != 0 || c.RStats != nil || c.TeamID != "" {
			t.Fatalf("caller roster modified: %+v", c)
		}
	}
}

func TestRun_SinksAndPanickingSelector(t *testing.T) {
	rec := events.NewRecorder()
	sel := board.MoveSelector(panicSelector{})
	res := runMatch(t, config.Default(), testTeam("A", 8), testTeam("B", 8),
		WithSink(rec), WithSink(events.SinkFunc(func(types.Event) { panic("sink down") })), WithSelector(sel))

	if rec.Count(types.EventMatchStart) != 1 || rec.Count(types.EventMatchEnd) != 1 {
		t.Errorf("match start/end events = %d/%d", rec.Count(types.EventMatchStart), rec.Count(types.EventMatchEnd))
	}
	if got := rec.Count(types.EventRoundEnd); got != res.Rounds {
		t.Errorf("round_end events = %d, want %d", got, res.Rounds)
	}
	if rec.Count(types.EventMove) == 0 {
		t.Error("fallback moves should still be played")
	}
	for _, cr := range res.CharacterResults {
		if got := rec.Stat(cr.CharacterID, state.StatMoves); got != cr.RStats[state.StatMoves] {
			t.Errorf("%s moves: recorder %g, result %g", cr.CharacterID, got, cr.RStats[state.StatMoves])
		}
	}
}

type panicSelector struct{}

func (panicSelector) SelectMove(context.Context, board.Board, *types.Character) (string, error) {
	panic("engine crashed")
}

func TestMomentum(t *testing.T) {
	cfg := config.Default().Momentum
	shifts := []struct {
		name string
		a, b float64
		want float64
	}{
		{"even", 0.8, 0.8, 0},
		{"major lead", 1, 0.5, 1},
		{"major deficit", 0.5, 1, -1},
		{"minor lead", 1, 0.8, 0.5},
		{"fine lead", 1, 0.95, 0.1},
		{"both down", 0, 0, 0},
	}
	for _, tt := range shifts {
		got := MomentumShift(cfg, tt.a, tt.b)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: shift = %g, want %g", tt.name, got, tt.want)
		}
	}

	labels := []struct {
		v    float64
		want string
	}{
		{0, state.MomentumNeutral},
		{3, state.MomentumBuilding},
		{5, state.MomentumBuilding},
		{-2.5, state.MomentumNeutral},
		{-3, state.MomentumCrash},
	}
	for _, tt := range labels {
		if got := MomentumLabel(cfg, tt.v); got != tt.want {
			t.Errorf("label(%g) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestAwardXP(t *testing.T) {
	cfg := config.Default().Progression
	tests := []struct {
		name   string
		am     int
		stats  map[string]float64
		result string
		want   int
	}{
		{"win", 5, nil, types.ResultWin, 25},
		{"draw", 5, nil, types.ResultDraw, 10},
		{"loss", 5, nil, types.ResultLoss, 0},
		{"bench", 9, map[string]float64{state.StatDamageDealt: 50}, types.ResultBench, 0},
		{"damage and convergence", 5, map[string]float64{state.StatDamageDealt: 20, state.StatConvergences: 2}, types.ResultLoss, 24},
		{"mastery", 10, nil, types.ResultWin, 38},
		{"missing mastery", 0, nil, types.ResultWin, 25},
	}
	for _, tt := range tests {
		c := &types.Character{Attributes: types.Attributes{AM: tt.am}, RStats: tt.stats}
		if got := AwardXP(cfg, c, tt.result); got != tt.want {
			t.Errorf("%s: xp = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestMatchID(t *testing.T) {
	if MatchID("A", "B", 1) != MatchID("A", "B", 1) {
		t.Error("match id should be stable")
	}
	if MatchID("A", "B", 1) == MatchID("A", "B", 2) || MatchID("A", "B", 1) == MatchID("B", "A", 1) {
		t.Error("match ids should differ across fixtures")
	}
}

func TestLeadership(t *testing.T) {
	team := testTeam("A", 8).Roster
	for _, c := range team {
		state.Reset(c)
	}
	team[0].Attributes.LDR = 8
	applyLeadership(team, 2)

	if team[0].Morale != state.DefaultMorale {
		t.Errorf("leader morale = %g, want unchanged", team[0].Morale)
	}
	if team[1].Morale != state.DefaultMorale+6 {
		t.Errorf("teammate morale = %g, want %g", team[1].Morale, state.DefaultMorale+6)
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		PhaseSetup: "setup", PhaseRoundInProgress: "round_in_progress",
		PhaseRoundSettling: "round_settling", PhaseTerminated: "terminated", Phase(9): "phase(9)",
	} {
		if p.String() != want {
			t.Errorf("%d: %q, want %q", int(p), p.String(), want)
		}
	}
}
