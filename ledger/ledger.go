// Package ledger persists match results and event streams to SQLite.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nathoo/metaleague/engine/events"
	"github.com/nathoo/metaleague/types"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("ledger closed")

// Ledger is a SQLite-backed record of played matches.
type Ledger struct {
	db  *sql.DB
	log *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string, log *zap.Logger) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db, log: log}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			match_id TEXT PRIMARY KEY,
			team_a TEXT NOT NULL,
			team_b TEXT NOT NULL,
			wins_a INTEGER NOT NULL,
			wins_b INTEGER NOT NULL,
			winner TEXT NOT NULL,
			reason TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			rng_position INTEGER NOT NULL,
			result_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS character_results (
			match_id TEXT NOT NULL REFERENCES matches(match_id) ON DELETE CASCADE,
			character_id TEXT NOT NULL,
			team_id TEXT NOT NULL,
			role TEXT NOT NULL,
			result TEXT NOT NULL,
			hp REAL NOT NULL,
			stamina REAL NOT NULL,
			life REAL NOT NULL,
			xp INTEGER NOT NULL,
			is_ko INTEGER NOT NULL,
			is_dead INTEGER NOT NULL,
			PRIMARY KEY (match_id, character_id)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			type TEXT NOT NULL,
			character_id TEXT,
			team_id TEXT,
			data_json TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS events_match ON events(match_id, seq);`,
		`CREATE INDEX IF NOT EXISTS character_results_character ON character_results(character_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record stores a finished match. Recording the same match again replaces it.
func (l *Ledger) Record(ctx context.Context, res *types.MatchResult) error {
	if res == nil {
		return fmt.Errorf("nil match result")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}

	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", res.MatchID, err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE match_id = ?`, res.MatchID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO matches (match_id, team_a, team_b, wins_a, wins_b, winner, reason, rounds, seed, rng_position, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.MatchID, res.TeamAID, res.TeamBID, res.WinsA, res.WinsB, res.Winner,
		res.TerminationReason, res.Rounds, res.Seed, res.RNGPosition, string(blob)); err != nil {
		return fmt.Errorf("inserting match %s: %w", res.MatchID, err)
	}
	for _, cr := range res.CharacterResults {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO character_results (match_id, character_id, team_id, role, result, hp, stamina, life, xp, is_ko, is_dead)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.MatchID, cr.CharacterID, cr.TeamID, string(cr.Role), cr.Result,
			cr.HP, cr.Stamina, cr.Life, cr.XP, cr.IsKO, cr.IsDead); err != nil {
			return fmt.Errorf("inserting character %s: %w", cr.CharacterID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	l.log.Debug("match recorded", zap.String("match_id", res.MatchID))
	return nil
}

// Result loads a recorded match.
func (l *Ledger) Result(ctx context.Context, matchID string) (*types.MatchResult, error) {
	var blob string
	err := l.db.QueryRowContext(ctx, `SELECT result_json FROM matches WHERE match_id = ?`, matchID).Scan(&blob)
	if err != nil {
		return nil, fmt.Errorf("loading match %s: %w", matchID, err)
	}
	var res types.MatchResult
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, fmt.Errorf("decoding match %s: %w", matchID, err)
	}
	return &res, nil
}

// Sink returns an event sink that appends events under matchID. Write
// failures are logged; a sink never interrupts a match.
func (l *Ledger) Sink(matchID string) events.Sink {
	return events.SinkFunc(func(evt types.Event) {
		if err := l.appendEvent(matchID, evt); err != nil {
			l.log.Warn("event not recorded",
				zap.String("match_id", matchID),
				zap.String("type", evt.Type),
				zap.Error(err))
		}
	})
}

func (l *Ledger) appendEvent(matchID string, evt types.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	var data sql.NullString
	if len(evt.Data) > 0 {
		b, err := json.Marshal(evt.Data)
		if err != nil {
			return err
		}
		data = sql.NullString{String: string(b), Valid: true}
	}
	// A match_start opens a fresh stream; a replayed match replaces its log.
	if evt.Type == types.EventMatchStart {
		if _, err := l.db.Exec(`DELETE FROM events WHERE match_id = ?`, matchID); err != nil {
			return err
		}
	}
	_, err := l.db.Exec(
		`INSERT INTO events (match_id, round, type, character_id, team_id, data_json) VALUES (?, ?, ?, ?, ?, ?)`,
		matchID, evt.Round, evt.Type, nullable(evt.CharacterID), nullable(evt.TeamID), data)
	return err
}

// Events returns a match's events in emission order.
func (l *Ledger) Events(ctx context.Context, matchID string) ([]types.Event, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT round, type, character_id, team_id, data_json FROM events WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Event
	for rows.Next() {
		var (
			evt        types.Event
			char, team sql.NullString
			data       sql.NullString
		)
		if err := rows.Scan(&evt.Round, &evt.Type, &char, &team, &data); err != nil {
			return nil, err
		}
		evt.CharacterID = char.String
		evt.TeamID = team.String
		if data.Valid {
			if err := json.Unmarshal([]byte(data.String), &evt.Data); err != nil {
				return nil, fmt.Errorf("decoding event data: %w", err)
			}
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// Standing is one row of the league table.
type Standing struct {
	TeamID string
	Played int
	Won    int
	Drawn  int
	Lost   int
	Points int
}

// Points awarded per match result.
const (
	PointsWin  = 3
	PointsDraw = 1
)

// Standings tallies every recorded match into a table ordered by points,
// then wins, then team id.
func (l *Ledger) Standings(ctx context.Context) ([]Standing, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT team_a, team_b, winner FROM matches`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := map[string]*Standing{}
	row := func(id string) *Standing {
		s, ok := table[id]
		if !ok {
			s = &Standing{TeamID: id}
			table[id] = s
		}
		return s
	}
	for rows.Next() {
		var a, b, winner string
		if err := rows.Scan(&a, &b, &winner); err != nil {
			return nil, err
		}
		for _, id := range []string{a, b} {
			s := row(id)
			s.Played++
			switch winner {
			case types.Draw:
				s.Drawn++
				s.Points += PointsDraw
			case id:
				s.Won++
				s.Points += PointsWin
			default:
				s.Lost++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Standing, 0, len(table))
	for _, s := range table {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Won != out[j].Won {
			return out[i].Won > out[j].Won
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

// Close closes the database. Later writes return ErrClosed.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
