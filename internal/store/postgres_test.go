package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/golf-results/internal/result"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func intPtr(v int) *int { return &v }

func TestPostgresStore_FindOrCreateTournament_Existing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM tournaments WHERE name = \$1 AND season = \$2`).
		WithArgs("Masters Tournament", 2024).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := s.FindOrCreateTournament(context.Background(), "Masters Tournament", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindOrCreateTournament_Creates(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM tournaments`).
		WithArgs("Masters Tournament", 2024).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO tournaments \(name, season\) VALUES \(\$1, \$2\) RETURNING id`).
		WithArgs("Masters Tournament", 2024).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(8)))

	id, err := s.FindOrCreateTournament(context.Background(), "Masters Tournament", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindOrCreateTournament_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM tournaments`).
		WithArgs("Masters Tournament", 2024).
		WillReturnError(errors.New("connection reset"))

	_, err := s.FindOrCreateTournament(context.Background(), "Masters Tournament", 2024)
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "find tournament", storeErr.Op)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindPlayerByExternalID(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM players WHERE espn_id = \$1`).
		WithArgs(9478).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(`SELECT id FROM players WHERE espn_id = \$1`).
		WithArgs(1).
		WillReturnError(pgx.ErrNoRows)

	id, found, err := s.FindPlayerByExternalID(context.Background(), 9478)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), id)

	_, found, err = s.FindPlayerByExternalID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreatePlayer(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO players \(name, espn_id\)`).
		WithArgs("Scottie Scheffler", 9478).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := s.CreatePlayer(context.Background(), "Scottie Scheffler", 9478)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExistsResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM player_tournaments WHERE player_id = \$1 AND tournament_name = \$2 AND season = \$3\)`).
		WithArgs(int64(1), "Masters Tournament", 2024).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.ExistsResult(context.Background(), 1, "Masters Tournament", 2024)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	row := &result.Row{
		DateRange:       "4/11 - 4/14",
		TournamentName:  "Masters Tournament",
		CourseName:      "Augusta National Golf Club",
		Position:        result.ParsePosition("1"),
		ScoreDisplay:    "273 (-11)",
		ScoreTotal:      intPtr(273),
		ScoreToPar:      intPtr(-11),
		EarningsDisplay: "$3,600,000",
		EarningsUSD:     intPtr(3600000),
	}

	mock.ExpectQuery(`INSERT INTO player_tournaments`).
		WithArgs(
			int64(1), int64(7), 2024, "Masters Tournament", "Augusta National Golf Club", "4/11 - 4/14",
			"1", pgxmock.AnyArg(), false, "273 (-11)", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), "$3,600,000", "completed",
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := s.InsertResult(context.Background(), row, 1, 7, 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertResult_Rejected(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	row := &result.Row{TournamentName: "The Open", Position: result.ParsePosition("CUT")}

	mock.ExpectQuery(`INSERT INTO player_tournaments`).
		WithArgs(
			int64(1), int64(9), 2024, "The Open", "", "",
			"CUT", pgxmock.AnyArg(), false, "", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), "--", "cut",
		).
		WillReturnError(errors.New("violates check constraint"))

	_, err := s.InsertResult(context.Background(), row, 1, 9, 2024)
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "insert result", storeErr.Op)
	assert.Contains(t, err.Error(), `tournament "The Open" season 2024`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRoundScores(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"tournament_rounds"}, []string{"player_tournament_id", "round_number", "score"}).
		WillReturnResult(4)

	err := s.InsertRoundScores(context.Background(), 42, RoundScores([]int{68, 66, 71, 68}))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRoundScores_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	require.NoError(t, s.InsertRoundScores(context.Background(), 42, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Counts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players`).
		WillReturnRows(pgxmock.NewRows([]string{"players", "tournaments", "results", "rounds"}).
			AddRow(int64(10), int64(120), int64(300), int64(1000)))

	c, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TableCounts{Players: 10, Tournaments: 120, Results: 300, Rounds: 1000}, c)
	assert.Equal(t, int64(1430), c.Total())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Clear(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// Foreign-key order: children first.
	mock.ExpectExec(`DELETE FROM "tournament_rounds"`).WillReturnResult(pgxmock.NewResult("DELETE", 1000))
	mock.ExpectExec(`DELETE FROM "player_tournaments"`).WillReturnResult(pgxmock.NewResult("DELETE", 300))
	mock.ExpectExec(`DELETE FROM "tournaments"`).WillReturnResult(pgxmock.NewResult("DELETE", 120))
	mock.ExpectExec(`DELETE FROM "players"`).WillReturnResult(pgxmock.NewResult("DELETE", 10))

	require.NoError(t, s.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Clear_StopsOnError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM "tournament_rounds"`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM "player_tournaments"`).WillReturnError(errors.New("permission denied"))

	err := s.Clear(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear player_tournaments")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPlayers(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, COALESCE\(espn_id, 0\), name FROM players ORDER BY id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "espn_id", "name"}).
			AddRow(int64(1), 9478, "Scottie Scheffler").
			AddRow(int64(2), 8793, "Rory McIlroy"))

	players, err := s.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Player{
		{ID: 1, ExternalID: 9478, Name: "Scottie Scheffler"},
		{ID: 2, ExternalID: 8793, Name: "Rory McIlroy"},
	}, players)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeasonSummaries(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM player_tournaments pt`).
		WillReturnRows(pgxmock.NewRows([]string{"player_id", "name", "season", "results", "wins", "top10s", "earnings"}).
			AddRow(int64(1), "Scottie Scheffler", 2024, int64(19), int64(7), int64(16), int64(29228357)))

	summaries, err := s.SeasonSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, SeasonSummary{
		PlayerID: 1, PlayerName: "Scottie Scheffler", Season: 2024,
		Results: 19, Wins: 7, Top10s: 16, EarningsUSD: 29228357,
	}, summaries[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RoundHistogram_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT round_number, COUNT\(\*\) FROM tournament_rounds`).
		WillReturnError(errors.New("relation does not exist"))

	_, err := s.RoundHistogram(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "round histogram")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_NotConfigured(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(context.Background(), Config{Driver: "sqlite"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(context.Background(), Config{Driver: "mysql", DatabaseURL: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "mysql"`)
}
