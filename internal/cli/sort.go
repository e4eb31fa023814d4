package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/golf-results/internal/result"
)

// SortOrder represents the available row orderings within a season
type SortOrder string

const (
	SortByPage     SortOrder = "page"
	SortByName     SortOrder = "name"
	SortByPosition SortOrder = "position"
)

// Valid reports whether o is a known sort order
func (o SortOrder) Valid() bool {
	switch o {
	case SortByPage, SortByName, SortByPosition:
		return true
	}
	return false
}

// sortRows sorts one season's rows in place. Page order is left untouched
// since the date range text is not comparable.
func sortRows(rows []*result.Row, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].TournamentName) < strings.ToLower(rows[j].TournamentName)
		})
	case SortByPosition:
		sort.SliceStable(rows, func(i, j int) bool {
			return compareByPosition(rows[i], rows[j])
		})
	}
}

// compareByPosition returns true if row i should come before row j: ranked
// finishes by rank, then cut/withdrawn/disqualified, then unknown positions
func compareByPosition(i, j *result.Row) bool {
	ri, rj := i.Position.Rank, j.Position.Rank

	// If both are ranked, compare ranks; an outright finish beats a tie
	if ri != nil && rj != nil {
		if *ri != *rj {
			return *ri < *rj
		}
		return !i.Position.Tied && j.Position.Tied
	}

	// If only one is ranked, put the ranked one first
	if ri != nil {
		return true
	}
	if rj != nil {
		return false
	}

	// Neither ranked: sentinels before unknown, then by name
	si, sj := i.Position.Status.IsSentinel(), j.Position.Status.IsSentinel()
	if si != sj {
		return si
	}
	return strings.ToLower(i.TournamentName) < strings.ToLower(j.TournamentName)
}
