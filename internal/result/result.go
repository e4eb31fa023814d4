package result

// NameSeparator joins the text nodes of the combined tournament/course cell.
const NameSeparator = "|"

// Status is the finishing state of a player in a tournament
type Status int

const (
	StatusUnknown Status = iota
	StatusRanked
	StatusCut
	StatusWithdrawn
	StatusDisqualified
)

var statusNames = map[Status]string{
	StatusUnknown:      "unknown",
	StatusRanked:       "ranked",
	StatusCut:          "cut",
	StatusWithdrawn:    "withdrawn",
	StatusDisqualified: "disqualified",
}

// String returns the lowercase name of the status
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

// IsSentinel reports whether the status replaces a numeric rank
func (s Status) IsSentinel() bool {
	return s == StatusCut || s == StatusWithdrawn || s == StatusDisqualified
}

// ResultStatus maps the status onto the player_tournaments.status column
func (s Status) ResultStatus() string {
	switch s {
	case StatusCut:
		return "cut"
	case StatusWithdrawn:
		return "withdrawn"
	case StatusDisqualified:
		return "disqualified"
	default:
		return "completed"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognised names decode as unknown.
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	*s = StatusUnknown
	return nil
}

// Position is a normalized finishing position
type Position struct {
	Raw    string `json:"raw"`
	Status Status `json:"status"`
	Rank   *int   `json:"rank"`
	Tied   bool   `json:"tied"`
}

// Row is one normalized tournament result for a player in a season
type Row struct {
	DateRange       string   `json:"date_range"`
	TournamentName  string   `json:"tournament_name"`
	CourseName      string   `json:"course_name"`
	Position        Position `json:"position"`
	ScoreDisplay    string   `json:"score_display"`
	ScoreTotal      *int     `json:"score_total"`
	ScoreToPar      *int     `json:"score_to_par"`
	EarningsDisplay string   `json:"earnings_display"`
	EarningsUSD     *int     `json:"earnings_usd"`
	RoundScores     []int    `json:"round_scores"`
}

// IsWin reports whether the row is an outright first place. A tie for first is not a win.
func (r *Row) IsWin() bool {
	return r.Position.Rank != nil && *r.Position.Rank == 1 && !r.Position.Tied
}

// IsTopN reports whether the row finished at or inside rank n
func (r *Row) IsTopN(n int) bool {
	return r.Position.Rank != nil && *r.Position.Rank <= n
}
