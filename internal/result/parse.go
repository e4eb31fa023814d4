package result

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	scorePattern    = regexp.MustCompile(`^(\d+)\s*\(([+-]?\d+|E)\)$`)
	earningsPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

var sentinels = map[string]Status{
	"CUT": StatusCut,
	"MC":  StatusCut,
	"WD":  StatusWithdrawn,
	"DQ":  StatusDisqualified,
}

// ParsePosition normalizes finishing-position text such as "1", "T5", "CUT" or "WD".
// Anything that is neither a sentinel nor an optionally T-prefixed integer is unknown.
// Matching is case-sensitive: "cut" and "t5" are unknown.
func ParsePosition(text string) Position {
	text = strings.TrimSpace(text)
	pos := Position{Raw: text, Status: StatusUnknown}

	if status, ok := sentinels[text]; ok {
		pos.Status = status
		return pos
	}

	tied := strings.HasPrefix(text, "T")
	n, err := strconv.Atoi(strings.TrimPrefix(text, "T"))
	if err != nil {
		return pos
	}

	pos.Status = StatusRanked
	pos.Rank = &n
	pos.Tied = tied
	return pos
}

// ParseScore splits "273 (-15)" or "283 (E)" into the stroke total and score to par.
// Both values are nil when the text does not match.
func ParseScore(text string) (total, toPar *int) {
	m := scorePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, nil
	}

	t, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, nil
	}

	par := 0
	if m[2] != "E" {
		par, err = strconv.Atoi(m[2])
		if err != nil {
			return nil, nil
		}
	}

	return &t, &par
}

// ParseEarnings strips currency formatting from text like "$1,234,567" and
// returns the amount rounded to whole dollars, or nil if it is not a plain
// decimal number or does not fit in an int.
func ParseEarnings(text string) *int {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	if !earningsPattern.MatchString(cleaned) {
		return nil
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}

	f = math.Round(f)
	if f >= math.MaxInt || f < math.MinInt {
		return nil
	}

	n := int(f)
	return &n
}

var usd = message.NewPrinter(language.English)

// FormatEarnings renders whole dollars as "$1,234,567", or "--" when absent or zero
func FormatEarnings(amount *int) string {
	if amount == nil || *amount == 0 {
		return "--"
	}
	return usd.Sprintf("$%d", *amount)
}

// SplitName separates the combined tournament/course cell text
func SplitName(text string) (tournament, course string) {
	parts := strings.SplitN(text, NameSeparator, 3)
	tournament = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		course = strings.TrimSpace(parts[1])
	}
	return tournament, course
}
