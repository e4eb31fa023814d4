package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/golf-results/internal/result"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	espn_id    INTEGER UNIQUE,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tournaments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	season     INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (name, season)
);

CREATE TABLE IF NOT EXISTS player_tournaments (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id        INTEGER NOT NULL REFERENCES players(id),
	tournament_id    INTEGER NOT NULL REFERENCES tournaments(id),
	season           INTEGER NOT NULL,
	tournament_name  TEXT NOT NULL,
	course_name      TEXT,
	date_range       TEXT,
	position         TEXT,
	position_numeric INTEGER,
	is_tied          BOOLEAN NOT NULL DEFAULT 0,
	overall_score    TEXT,
	total_score      INTEGER,
	score_to_par     INTEGER,
	earnings_usd     INTEGER,
	earnings_display TEXT,
	status           TEXT NOT NULL DEFAULT 'completed',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tournament_rounds (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	player_tournament_id INTEGER NOT NULL REFERENCES player_tournaments(id),
	round_number         INTEGER NOT NULL,
	score                INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_player_tournaments_lookup ON player_tournaments(player_id, tournament_name, season);
CREATE INDEX IF NOT EXISTS idx_tournament_rounds_result ON tournament_rounds(player_tournament_id);
`

// NewSQLite opens the SQLite database at path, creating the file, its
// directory and the tables as needed.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, wrap("create directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("open", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, wrap("open", eris.Wrapf(err, "exec %s", pragma))
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close() //nolint:errcheck
		return nil, wrap("create tables", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindOrCreateTournament(ctx context.Context, name string, season int) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM tournaments WHERE name = ? AND season = ? LIMIT 1`,
		name, season,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, wrap("find tournament", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tournaments (name, season) VALUES (?, ?)`,
		name, season,
	)
	if err != nil {
		return 0, wrap("insert tournament", err)
	}
	id, err = res.LastInsertId()
	return id, wrap("insert tournament", err)
}

func (s *SQLiteStore) FindPlayerByExternalID(ctx context.Context, externalID int) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM players WHERE espn_id = ? LIMIT 1`,
		externalID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("find player", err)
	}
	return id, true, nil
}

func (s *SQLiteStore) CreatePlayer(ctx context.Context, name string, externalID int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO players (name, espn_id) VALUES (?, ?)`,
		name, externalID,
	)
	if err != nil {
		return 0, wrap("insert player", err)
	}
	id, err := res.LastInsertId()
	return id, wrap("insert player", err)
}

func (s *SQLiteStore) ExistsResult(ctx context.Context, playerID int64, tournamentName string, season int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM player_tournaments WHERE player_id = ? AND tournament_name = ? AND season = ?)`,
		playerID, tournamentName, season,
	).Scan(&exists)
	if err != nil {
		return false, wrap("check result", err)
	}
	return exists, nil
}

func (s *SQLiteStore) InsertResult(ctx context.Context, row *result.Row, playerID, tournamentID int64, season int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO player_tournaments (`+insertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resultArgs(row, playerID, tournamentID, season)...,
	)
	if err != nil {
		return 0, wrap("insert result", eris.Wrapf(err, "tournament %q season %d", row.TournamentName, season))
	}
	id, err := res.LastInsertId()
	return id, wrap("insert result", err)
}

func (s *SQLiteStore) InsertRoundScores(ctx context.Context, resultID int64, scores []RoundScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("insert rounds", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tournament_rounds (player_tournament_id, round_number, score) VALUES (?, ?, ?)`)
	if err != nil {
		return wrap("insert rounds", err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, rs := range scores {
		if _, err := stmt.ExecContext(ctx, resultID, rs.Number, rs.Score); err != nil {
			return wrap("insert rounds", err)
		}
	}
	return wrap("insert rounds", tx.Commit())
}

func (s *SQLiteStore) Counts(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	err := s.db.QueryRowContext(ctx, countsQuery).Scan(&c.Players, &c.Tournaments, &c.Results, &c.Rounds)
	if err != nil {
		return TableCounts{}, wrap("count rows", err)
	}
	return c, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	for _, table := range Tables {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return wrap("clear "+table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, listPlayersQuery)
	if err != nil {
		return nil, wrap("list players", err)
	}
	defer rows.Close() //nolint:errcheck

	players, err := scanPlayers(rows)
	return players, wrap("list players", err)
}

func (s *SQLiteStore) ListTournaments(ctx context.Context) ([]Tournament, error) {
	rows, err := s.db.QueryContext(ctx, listTournamentsQuery)
	if err != nil {
		return nil, wrap("list tournaments", err)
	}
	defer rows.Close() //nolint:errcheck

	tournaments, err := scanTournaments(rows)
	return tournaments, wrap("list tournaments", err)
}

func (s *SQLiteStore) SeasonSummaries(ctx context.Context) ([]SeasonSummary, error) {
	rows, err := s.db.QueryContext(ctx, seasonSummariesQuery)
	if err != nil {
		return nil, wrap("season summaries", err)
	}
	defer rows.Close() //nolint:errcheck

	summaries, err := scanSeasonSummaries(rows)
	return summaries, wrap("season summaries", err)
}

func (s *SQLiteStore) RoundHistogram(ctx context.Context) ([]RoundCount, error) {
	rows, err := s.db.QueryContext(ctx, roundHistogramQuery)
	if err != nil {
		return nil, wrap("round histogram", err)
	}
	defer rows.Close() //nolint:errcheck

	counts, err := scanRoundCounts(rows)
	return counts, wrap("round histogram", err)
}
