package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/pfrederiksen/golf-results/internal/importer"
	"github.com/pfrederiksen/golf-results/internal/result"
	"github.com/pfrederiksen/golf-results/internal/store"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// tournamentsShown caps the tournament names listed per season in text output
const tournamentsShown = 5

// DatabaseReport is everything `db read` shows
type DatabaseReport struct {
	Counts      store.TableCounts     `json:"counts"`
	Players     []store.Player        `json:"players"`
	Tournaments []store.Tournament    `json:"tournaments"`
	Summaries   []store.SeasonSummary `json:"season_summaries"`
	Rounds      []store.RoundCount    `json:"rounds"`
}

// WriteReport writes an import report in the specified format
func WriteReport(w io.Writer, report *importer.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeReportText(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteCounts writes table row counts in the specified format
func WriteCounts(w io.Writer, counts store.TableCounts, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, counts)
	case FormatText:
		return writeCountsText(w, counts)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteDatabaseReport writes the database contents in the specified format
func WriteDatabaseReport(w io.Writer, report *DatabaseReport, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeDatabaseText(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeReportText(w io.Writer, report *importer.Report) error {
	if len(report.Players) == 0 {
		fmt.Fprintln(w, "No players processed.")
		return nil
	}

	for _, p := range report.Players {
		fmt.Fprintf(w, "%s (ESPN ID: %d)\n", p.Player.Name, p.Player.ExternalID)
		fmt.Fprintf(w, "  Seasons: %d fetched", p.SeasonsFetched)
		if p.SeasonsFailed > 0 {
			fmt.Fprintf(w, ", %d failed", p.SeasonsFailed)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Results: %d found, %d stored, %d already stored", p.RowsFound, p.RowsStored, p.RowsDuplicate)
		if p.RowsFailed > 0 {
			fmt.Fprintf(w, ", %d failed", p.RowsFailed)
		}
		fmt.Fprintln(w)
		if p.StoreDisabled {
			fmt.Fprintln(w, "  Database: skipped (player lookup failed)")
		}
		if p.BackupPath != "" {
			fmt.Fprintf(w, "  Backup: %s\n", p.BackupPath)
		}
	}

	t := report.Totals()
	fmt.Fprintf(w, "\nTotal: %d results found, %d stored across %d players\n", t.RowsFound, t.RowsStored, len(report.Players))
	if report.Cancelled {
		fmt.Fprintln(w, "Run was cancelled before finishing.")
	}
	return nil
}

func writeCountsText(w io.Writer, counts store.TableCounts) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  players\t%d\n", counts.Players)
	fmt.Fprintf(tw, "  tournaments\t%d\n", counts.Tournaments)
	fmt.Fprintf(tw, "  player_tournaments\t%d\n", counts.Results)
	fmt.Fprintf(tw, "  tournament_rounds\t%d\n", counts.Rounds)
	fmt.Fprintf(tw, "  total\t%d\n", counts.Total())
	return tw.Flush()
}

func writeDatabaseText(w io.Writer, report *DatabaseReport) error {
	fmt.Fprintf(w, "PLAYERS (%d):\n", len(report.Players))
	for _, p := range report.Players {
		fmt.Fprintf(w, "  ID: %d, Name: %s, ESPN ID: %d\n", p.ID, p.Name, p.ExternalID)
	}

	fmt.Fprintf(w, "\nTOURNAMENTS (%d):\n", len(report.Tournaments))
	bySeason := make(map[int][]string)
	for _, t := range report.Tournaments {
		bySeason[t.Season] = append(bySeason[t.Season], t.Name)
	}
	seasons := make([]int, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(seasons)))

	for _, s := range seasons {
		names := bySeason[s]
		fmt.Fprintf(w, "\n  %d: %d tournaments\n", s, len(names))
		for _, name := range names[:min(tournamentsShown, len(names))] {
			fmt.Fprintf(w, "    - %s\n", name)
		}
		if len(names) > tournamentsShown {
			fmt.Fprintf(w, "    ... and %d more\n", len(names)-tournamentsShown)
		}
	}

	fmt.Fprintf(w, "\nRESULTS (%d):\n", report.Counts.Results)
	var current int64 = -1
	for _, s := range report.Summaries {
		if s.PlayerID != current {
			fmt.Fprintf(w, "\n  %s:\n", s.PlayerName)
			current = s.PlayerID
		}
		earnings := int(s.EarningsUSD)
		fmt.Fprintf(w, "    %d: %d tournaments, %d wins, %d top-10s, %s earnings\n",
			s.Season, s.Results, s.Wins, s.Top10s, result.FormatEarnings(&earnings))
	}

	fmt.Fprintf(w, "\nROUNDS (%d):\n", report.Counts.Rounds)
	for _, rc := range report.Rounds {
		fmt.Fprintf(w, "  Round %d: %d scores\n", rc.Round, rc.Count)
	}

	fmt.Fprintln(w, "\nSUMMARY:")
	return writeCountsText(w, report.Counts)
}
