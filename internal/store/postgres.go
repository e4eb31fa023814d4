package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/pfrederiksen/golf-results/internal/result"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it too.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a small connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, wrap("parse config", err)
	}

	// One importer goroutine at a time.
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, wrap("create pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrap("ping", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FindOrCreateTournament(ctx context.Context, name string, season int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM tournaments WHERE name = $1 AND season = $2 LIMIT 1`,
		name, season,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, wrap("find tournament", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO tournaments (name, season) VALUES ($1, $2) RETURNING id`,
		name, season,
	).Scan(&id)
	if err != nil {
		return 0, wrap("insert tournament", err)
	}
	return id, nil
}

func (s *PostgresStore) FindPlayerByExternalID(ctx context.Context, externalID int) (int64, bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM players WHERE espn_id = $1 LIMIT 1`,
		externalID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("find player", err)
	}
	return id, true, nil
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, name string, externalID int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO players (name, espn_id) VALUES ($1, $2) RETURNING id`,
		name, externalID,
	).Scan(&id)
	if err != nil {
		return 0, wrap("insert player", err)
	}
	return id, nil
}

func (s *PostgresStore) ExistsResult(ctx context.Context, playerID int64, tournamentName string, season int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM player_tournaments WHERE player_id = $1 AND tournament_name = $2 AND season = $3)`,
		playerID, tournamentName, season,
	).Scan(&exists)
	if err != nil {
		return false, wrap("check result", err)
	}
	return exists, nil
}

func (s *PostgresStore) InsertResult(ctx context.Context, row *result.Row, playerID, tournamentID int64, season int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO player_tournaments (`+insertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		resultArgs(row, playerID, tournamentID, season)...,
	).Scan(&id)
	if err != nil {
		return 0, wrap("insert result", eris.Wrapf(err, "tournament %q season %d", row.TournamentName, season))
	}
	return id, nil
}

func (s *PostgresStore) InsertRoundScores(ctx context.Context, resultID int64, scores []RoundScore) error {
	if len(scores) == 0 {
		return nil
	}

	rows := make([][]any, len(scores))
	for i, rs := range scores {
		rows[i] = []any{resultID, rs.Number, rs.Score}
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"tournament_rounds"},
		[]string{"player_tournament_id", "round_number", "score"},
		pgx.CopyFromRows(rows),
	)
	return wrap("insert rounds", err)
}

func (s *PostgresStore) Counts(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	err := s.pool.QueryRow(ctx, countsQuery).Scan(&c.Players, &c.Tournaments, &c.Results, &c.Rounds)
	if err != nil {
		return TableCounts{}, wrap("count rows", err)
	}
	return c, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	for _, table := range Tables {
		if _, err := s.pool.Exec(ctx, `DELETE FROM `+pgx.Identifier{table}.Sanitize()); err != nil {
			return wrap("clear "+table, err)
		}
	}
	return nil
}

func (s *PostgresStore) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.pool.Query(ctx, listPlayersQuery)
	if err != nil {
		return nil, wrap("list players", err)
	}
	defer rows.Close()

	players, err := scanPlayers(rows)
	return players, wrap("list players", err)
}

func (s *PostgresStore) ListTournaments(ctx context.Context) ([]Tournament, error) {
	rows, err := s.pool.Query(ctx, listTournamentsQuery)
	if err != nil {
		return nil, wrap("list tournaments", err)
	}
	defer rows.Close()

	tournaments, err := scanTournaments(rows)
	return tournaments, wrap("list tournaments", err)
}

func (s *PostgresStore) SeasonSummaries(ctx context.Context) ([]SeasonSummary, error) {
	rows, err := s.pool.Query(ctx, seasonSummariesQuery)
	if err != nil {
		return nil, wrap("season summaries", err)
	}
	defer rows.Close()

	summaries, err := scanSeasonSummaries(rows)
	return summaries, wrap("season summaries", err)
}

func (s *PostgresStore) RoundHistogram(ctx context.Context) ([]RoundCount, error) {
	rows, err := s.pool.Query(ctx, roundHistogramQuery)
	if err != nil {
		return nil, wrap("round histogram", err)
	}
	defer rows.Close()

	counts, err := scanRoundCounts(rows)
	return counts, wrap("round histogram", err)
}
