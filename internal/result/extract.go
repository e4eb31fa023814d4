package result

import (
	"strconv"
	"strings"
)

const (
	// MinCells is the fewest cells a results row can have
	MinCells = 5

	headerToken = "DATE"

	MinRoundScore = 50
	MaxRoundScore = 90
)

// classifier claims a trailing cell for one field of the row.
// accepts is only asked while the field is still open (or always, when repeatable).
type classifier struct {
	name       string
	repeatable bool
	accepts    func(text string) bool
	assign     func(row *Row, text string)
}

// classifiers are evaluated in order for every trailing cell; the first one
// that accepts a cell claims it. Score is checked before earnings and earnings
// before rounds, so "(1,234)" is a score and "1234" is earnings rather than a round.
var classifiers = []classifier{
	{
		name:    "score",
		accepts: isScoreCell,
		assign:  func(row *Row, text string) { row.ScoreDisplay = text },
	},
	{
		name:    "earnings",
		accepts: isEarningsCell,
		assign:  func(row *Row, text string) { row.EarningsDisplay = text },
	},
	{
		name:       "round",
		repeatable: true,
		accepts:    isRoundCell,
		assign: func(row *Row, text string) {
			n, _ := strconv.Atoi(text)
			row.RoundScores = append(row.RoundScores, n)
		},
	},
}

// Extract converts the cell texts of one table row into a Row.
// The second return value is false when the row is not a result (too few
// cells, empty first cell, or the table header).
func Extract(cells []string) (*Row, bool) {
	if len(cells) < MinCells {
		return nil, false
	}

	date := strings.TrimSpace(cells[0])
	if date == "" || date == headerToken {
		return nil, false
	}

	tournament, course := SplitName(cells[1])
	row := &Row{
		DateRange:      date,
		TournamentName: tournament,
		CourseName:     course,
		Position:       ParsePosition(cells[2]),
		RoundScores:    []int{},
	}

	filled := make([]bool, len(classifiers))
	for _, cell := range cells[3:] {
		text := strings.TrimSpace(cell)
		for i, c := range classifiers {
			if filled[i] && !c.repeatable {
				continue
			}
			if !c.accepts(text) {
				continue
			}
			c.assign(row, text)
			filled[i] = true
			break
		}
	}

	row.ScoreTotal, row.ScoreToPar = ParseScore(row.ScoreDisplay)
	row.EarningsUSD = ParseEarnings(row.EarningsDisplay)

	return row, true
}

func isScoreCell(text string) bool {
	return strings.Contains(text, "(") && strings.Contains(text, ")")
}

func isEarningsCell(text string) bool {
	if strings.Contains(text, "$") {
		return true
	}
	return len(text) > 3 && isDigits(strings.ReplaceAll(text, ",", ""))
}

func isRoundCell(text string) bool {
	if !isDigits(text) {
		return false
	}
	n, err := strconv.Atoi(text)
	return err == nil && n >= MinRoundScore && n <= MaxRoundScore
}

// isDigits reports whether s is non-empty and made only of ASCII digits
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
