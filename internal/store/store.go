package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/pfrederiksen/golf-results/internal/result"
)

// ErrNotConfigured is returned by Open when the backend has no connection
// settings. Callers treat it as "run without a database".
var ErrNotConfigured = errors.New("store: database not configured")

// Tables lists the backend tables in foreign-key delete order.
var Tables = []string{"tournament_rounds", "player_tournaments", "tournaments", "players"}

// Store persists players, tournaments and results.
type Store interface {
	FindOrCreateTournament(ctx context.Context, name string, season int) (int64, error)
	FindPlayerByExternalID(ctx context.Context, externalID int) (id int64, found bool, err error)
	CreatePlayer(ctx context.Context, name string, externalID int) (int64, error)
	ExistsResult(ctx context.Context, playerID int64, tournamentName string, season int) (bool, error)
	InsertResult(ctx context.Context, row *result.Row, playerID, tournamentID int64, season int) (int64, error)
	InsertRoundScores(ctx context.Context, resultID int64, scores []RoundScore) error

	// Admin
	Counts(ctx context.Context) (TableCounts, error)
	Clear(ctx context.Context) error
	ListPlayers(ctx context.Context) ([]Player, error)
	ListTournaments(ctx context.Context) ([]Tournament, error)
	SeasonSummaries(ctx context.Context) ([]SeasonSummary, error)
	RoundHistogram(ctx context.Context) ([]RoundCount, error)

	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver      string
	DatabaseURL string
	Path        string
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "postgres":
		if cfg.DatabaseURL == "" {
			return nil, ErrNotConfigured
		}
		st, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, ErrNotConfigured
		}
		st, err := NewSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// RoundScore is one round of a result. Number starts at 1.
type RoundScore struct {
	Number int `json:"round_number"`
	Score  int `json:"score"`
}

// RoundScores numbers scores in order, starting at 1.
func RoundScores(scores []int) []RoundScore {
	out := make([]RoundScore, len(scores))
	for i, s := range scores {
		out[i] = RoundScore{Number: i + 1, Score: s}
	}
	return out
}

// TableCounts holds the row count of each table.
type TableCounts struct {
	Players     int64 `json:"players"`
	Tournaments int64 `json:"tournaments"`
	Results     int64 `json:"player_tournaments"`
	Rounds      int64 `json:"tournament_rounds"`
}

// Total returns the number of rows across all tables.
func (c TableCounts) Total() int64 {
	return c.Players + c.Tournaments + c.Results + c.Rounds
}

// Player is a stored player.
type Player struct {
	ID         int64  `json:"id"`
	ExternalID int    `json:"espn_id"`
	Name       string `json:"name"`
}

// Tournament is a stored tournament.
type Tournament struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
}

// SeasonSummary aggregates one player's results for a season.
type SeasonSummary struct {
	PlayerID    int64  `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Season      int    `json:"season"`
	Results     int64  `json:"results"`
	Wins        int64  `json:"wins"`
	Top10s      int64  `json:"top_10s"`
	EarningsUSD int64  `json:"earnings_usd"`
}

// RoundCount is the number of stored scores for one round number.
type RoundCount struct {
	Round int   `json:"round_number"`
	Count int64 `json:"count"`
}

// StoreError reports a backend failure for one operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrap returns nil for a nil err, otherwise a *StoreError for op.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: eris.Wrap(err, op)}
}

// resultArgs returns the player_tournaments column values in insertColumns order.
func resultArgs(row *result.Row, playerID, tournamentID int64, season int) []any {
	return []any{
		playerID,
		tournamentID,
		season,
		row.TournamentName,
		row.CourseName,
		row.DateRange,
		row.Position.Raw,
		row.Position.Rank,
		row.Position.Tied,
		row.ScoreDisplay,
		row.ScoreTotal,
		row.ScoreToPar,
		row.EarningsUSD,
		result.FormatEarnings(row.EarningsUSD),
		row.Position.Status.ResultStatus(),
	}
}

const insertColumns = `player_id, tournament_id, season, tournament_name, course_name, date_range,
	position, position_numeric, is_tied, overall_score, total_score, score_to_par,
	earnings_usd, earnings_display, status`

// Read queries are plain SQL shared by both backends.
const (
	countsQuery = `SELECT
	(SELECT COUNT(*) FROM players),
	(SELECT COUNT(*) FROM tournaments),
	(SELECT COUNT(*) FROM player_tournaments),
	(SELECT COUNT(*) FROM tournament_rounds)`

	listPlayersQuery = `SELECT id, COALESCE(espn_id, 0), name FROM players ORDER BY id`

	listTournamentsQuery = `SELECT id, name, season FROM tournaments ORDER BY season DESC, name`

	seasonSummariesQuery = `SELECT pt.player_id, COALESCE(p.name, 'Player ' || pt.player_id), pt.season,
	COUNT(*),
	SUM(CASE WHEN pt.position = '1' THEN 1 ELSE 0 END),
	SUM(CASE WHEN pt.position_numeric <= 10 THEN 1 ELSE 0 END),
	CAST(COALESCE(SUM(pt.earnings_usd), 0) AS BIGINT)
FROM player_tournaments pt
LEFT JOIN players p ON p.id = pt.player_id
GROUP BY pt.player_id, p.name, pt.season
ORDER BY pt.player_id, pt.season DESC`

	roundHistogramQuery = `SELECT round_number, COUNT(*) FROM tournament_rounds GROUP BY round_number ORDER BY round_number`
)

// scanner is satisfied by both pgx.Rows and *sql.Rows.
type scanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPlayers(rows scanner) ([]Player, error) {
	var out []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.ExternalID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanTournaments(rows scanner) ([]Tournament, error) {
	var out []Tournament
	for rows.Next() {
		var t Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Season); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanSeasonSummaries(rows scanner) ([]SeasonSummary, error) {
	var out []SeasonSummary
	for rows.Next() {
		var s SeasonSummary
		if err := rows.Scan(&s.PlayerID, &s.PlayerName, &s.Season, &s.Results, &s.Wins, &s.Top10s, &s.EarningsUSD); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanRoundCounts(rows scanner) ([]RoundCount, error) {
	var out []RoundCount
	for rows.Next() {
		var rc RoundCount
		if err := rows.Scan(&rc.Round, &rc.Count); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
