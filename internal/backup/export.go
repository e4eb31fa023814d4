package backup

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/pfrederiksen/golf-results/internal/result"
)

// Record is one exported result row
type Record struct {
	Season      int    `csv:"season"`
	DateRange   string `csv:"date_range"`
	Tournament  string `csv:"tournament"`
	Course      string `csv:"course"`
	Position    string `csv:"position"`
	Status      string `csv:"status"`
	Rank        *int   `csv:"rank"`
	Tied        bool   `csv:"tied"`
	Score       string `csv:"score"`
	ScoreTotal  *int   `csv:"score_total"`
	ScoreToPar  *int   `csv:"score_to_par"`
	Earnings    string `csv:"earnings"`
	EarningsUSD *int   `csv:"earnings_usd"`
	Rounds      string `csv:"rounds"`
}

// Records flattens a backup into one record per result, in season order
func Records(f *File) []Record {
	records := make([]Record, 0, f.RowCount())
	for _, y := range f.Years {
		for _, row := range y.Tournaments {
			records = append(records, newRecord(y.Year, row))
		}
	}
	return records
}

func newRecord(season int, row *result.Row) Record {
	rounds := make([]string, len(row.RoundScores))
	for i, s := range row.RoundScores {
		rounds[i] = strconv.Itoa(s)
	}

	return Record{
		Season:      season,
		DateRange:   row.DateRange,
		Tournament:  row.TournamentName,
		Course:      row.CourseName,
		Position:    row.Position.Raw,
		Status:      row.Position.Status.String(),
		Rank:        row.Position.Rank,
		Tied:        row.Position.Tied,
		Score:       row.ScoreDisplay,
		ScoreTotal:  row.ScoreTotal,
		ScoreToPar:  row.ScoreToPar,
		Earnings:    row.EarningsDisplay,
		EarningsUSD: row.EarningsUSD,
		Rounds:      strings.Join(rounds, " "),
	}
}

// ExportCSV writes the backup as CSV with a header row
func ExportCSV(f *File, w io.Writer) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(Record{}); err != nil {
		return eris.Wrap(err, "backup: csv header")
	}
	for _, rec := range Records(f) {
		if err := enc.Encode(rec); err != nil {
			return eris.Wrapf(err, "backup: csv row %s %d", rec.Tournament, rec.Season)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "backup: csv flush")
}

// ExportXLSX writes the backup as a single-sheet workbook named after the player
func ExportXLSX(f *File, w io.Writer) error {
	header, err := csvutil.Header(Record{}, "csv")
	if err != nil {
		return eris.Wrap(err, "backup: xlsx header")
	}

	book := xlsx.NewFile()
	sheet, err := book.AddSheet(sheetName(f.PlayerName))
	if err != nil {
		return eris.Wrap(err, "backup: xlsx sheet")
	}

	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}

	for _, rec := range Records(f) {
		row := sheet.AddRow()
		row.AddCell().SetInt(rec.Season)
		row.AddCell().SetString(rec.DateRange)
		row.AddCell().SetString(rec.Tournament)
		row.AddCell().SetString(rec.Course)
		row.AddCell().SetString(rec.Position)
		row.AddCell().SetString(rec.Status)
		setOptionalInt(row.AddCell(), rec.Rank)
		row.AddCell().SetBool(rec.Tied)
		row.AddCell().SetString(rec.Score)
		setOptionalInt(row.AddCell(), rec.ScoreTotal)
		setOptionalInt(row.AddCell(), rec.ScoreToPar)
		row.AddCell().SetString(rec.Earnings)
		setOptionalInt(row.AddCell(), rec.EarningsUSD)
		row.AddCell().SetString(rec.Rounds)
	}

	return eris.Wrap(book.Write(w), "backup: xlsx write")
}

func setOptionalInt(cell *xlsx.Cell, v *int) {
	if v != nil {
		cell.SetInt(*v)
	}
}

// sheetName trims a player name to Excel's 31 character sheet limit
func sheetName(playerName string) string {
	name := strings.TrimSpace(playerName)
	if name == "" {
		name = "Results"
	}
	r := []rune(name)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
