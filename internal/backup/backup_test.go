package backup

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tealeg/xlsx/v2"

	"github.com/pfrederiksen/golf-results/internal/result"
)

func extract(t *testing.T, cells ...string) *result.Row {
	t.Helper()
	row, ok := result.Extract(cells)
	if !ok {
		t.Fatalf("Extract(%q) rejected the row", cells)
	}
	return row
}

func sampleSeasons(t *testing.T) map[int][]*result.Row {
	return map[int][]*result.Row{
		2024: {
			extract(t, "4/11 - 4/14", "Masters Tournament|Augusta National Golf Club", "1", "68", "66", "71", "68", "273 (-11)", "$3,600,000"),
			extract(t, "7/18 - 7/21", "The Open", "CUT", "77", "75", "--", "--"),
		},
		2023: {
			extract(t, "6/15 - 6/18", "U.S. Open|Los Angeles CC", "T3", "67", "68", "70", "70", "275 (E)", "$1,098,000"),
		},
		2022: {},
	}
}

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := New(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	w.now = func() time.Time { return time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC) }
	return w
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name       string
		playerName string
		id         int
		want       string
	}{
		{"two words", "Scottie Scheffler", 9478, "scottie_scheffler_9478.json"},
		{"three words", "Bryson De Chambeau", 9794, "bryson_de_chambeau_9794.json"},
		{"surrounding space", " Tiger Woods ", 3448, "tiger_woods_3448.json"},
		{"slash", "A/B Player", 1, "a_b_player_1.json"},
		{"parent dirs", "../../etc/passwd", 2, ".._.._etc_passwd_2.json"},
		{"backslash", `..\Player`, 3, ".._player_3.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.playerName, tt.id); got != tt.want {
				t.Errorf("FileName(%q, %d) = %q, want %q", tt.playerName, tt.id, got, tt.want)
			}
		})
	}
}

func TestWrite_StaysInDir(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	row := extract(t, "4/11 - 4/14", "Masters Tournament", "1", "68", "$3,600,000")
	path, err := w.Write("../escape", 7, map[int][]*result.Row{2024: {row}})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if filepath.Dir(path) != w.Dir() {
		t.Errorf("Write() path = %q, want a file directly under %q", path, w.Dir())
	}
	if _, err := os.Stat(filepath.Join(dir, "escape_7.json")); !os.IsNotExist(err) {
		t.Errorf("backup escaped its directory: %v", err)
	}
}

func TestNew_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	w, err := New("~/golf-backups")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	want := filepath.Join(home, "golf-backups")
	if w.Dir() != want {
		t.Errorf("Dir() = %q, want %q", w.Dir(), want)
	}
	if info, err := os.Stat(want); err != nil || !info.IsDir() {
		t.Errorf("backup directory was not created: %v", err)
	}
}

func TestWrite_Layout(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.Write("Scottie Scheffler", 9478, sampleSeasons(t))
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if filepath.Base(path) != "scottie_scheffler_9478.json" {
		t.Errorf("Write() path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	for _, key := range []string{"player_name", "espn_id", "scraped_at", "years"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("backup is missing %q", key)
		}
	}
	if raw["scraped_at"] != "2024-12-01T10:00:00Z" {
		t.Errorf("scraped_at = %v", raw["scraped_at"])
	}

	f, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	// empty 2022 is omitted, years ascend
	if len(f.Years) != 2 || f.Years[0].Year != 2023 || f.Years[1].Year != 2024 {
		t.Fatalf("Years = %+v, want 2023 then 2024", f.Years)
	}
	if f.Years[1].TournamentCount != 2 {
		t.Errorf("TournamentCount = %d, want 2", f.Years[1].TournamentCount)
	}
	if f.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", f.RowCount())
	}
}

func TestWrite_RoundTripIsLossless(t *testing.T) {
	w := newTestWriter(t)
	seasons := sampleSeasons(t)

	path, err := w.Write("Scottie Scheffler", 9478, seasons)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	got := f.Seasons()
	delete(seasons, 2022)

	if !reflect.DeepEqual(got, seasons) {
		t.Errorf("Seasons() after round trip differs\n got: %+v\nwant: %+v", got, seasons)
	}

	cut := got[2024][1]
	if cut.EarningsUSD != nil || cut.Position.Rank != nil || cut.ScoreTotal != nil {
		t.Errorf("absent values should stay absent after round trip: %+v", cut)
	}
	if cut.Position.Status != result.StatusCut {
		t.Errorf("Status = %v, want cut", cut.Position.Status)
	}
}

func TestWrite_AbsentValuesAreNull(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.Write("Tiger Woods", 3448, map[int][]*result.Row{
		2024: {extract(t, "7/18 - 7/21", "The Open", "CUT", "79", "77", "--", "--")},
	})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"earnings_usd": null`) {
		t.Error(`absent earnings should serialize as null, not 0`)
	}
	if !strings.Contains(string(data), `"rank": null`) {
		t.Error(`sentinel position should serialize rank as null`)
	}
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Read(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Read() of a missing file expected error")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(bad); err == nil {
		t.Error("Read() of invalid JSON expected error")
	}
}

func TestExportCSV(t *testing.T) {
	w := newTestWriter(t)
	path, err := w.Write("Scottie Scheffler", 9478, sampleSeasons(t))
	if err != nil {
		t.Fatal(err)
	}
	f, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportCSV(f, &buf); err != nil {
		t.Fatalf("ExportCSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("CSV has %d lines, want header plus 3 rows:\n%s", len(lines), buf.String())
	}

	wantHeader := "season,date_range,tournament,course,position,status,rank,tied,score,score_total,score_to_par,earnings,earnings_usd,rounds"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if want := `2023,6/15 - 6/18,U.S. Open,Los Angeles CC,T3,ranked,3,true,275 (E),275,0,"$1,098,000",1098000,67 68 70 70`; lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
	if want := "2024,7/18 - 7/21,The Open,,CUT,cut,,false,,,,,,77 75"; lines[3] != want {
		t.Errorf("row = %q, want %q", lines[3], want)
	}
}

func TestExportXLSX(t *testing.T) {
	w := newTestWriter(t)
	path, err := w.Write("Scottie Scheffler", 9478, sampleSeasons(t))
	if err != nil {
		t.Fatal(err)
	}
	f, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "export.xlsx")
	file, err := os.Create(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := ExportXLSX(f, file); err != nil {
		t.Fatalf("ExportXLSX() error: %v", err)
	}
	file.Close() //nolint:errcheck

	book, err := xlsx.OpenFile(out)
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	sheet, ok := book.Sheet["Scottie Scheffler"]
	if !ok {
		t.Fatalf("sheet not found, have %d sheets", len(book.Sheets))
	}
	if len(sheet.Rows) != 4 {
		t.Fatalf("sheet has %d rows, want 4", len(sheet.Rows))
	}
	if got := sheet.Rows[0].Cells[2].String(); got != "tournament" {
		t.Errorf("header cell = %q, want tournament", got)
	}
	if got := sheet.Rows[2].Cells[2].String(); got != "Masters Tournament" {
		t.Errorf("tournament cell = %q, want Masters Tournament", got)
	}
}

func TestSheetName(t *testing.T) {
	if got := sheetName(""); got != "Results" {
		t.Errorf("sheetName(\"\") = %q, want Results", got)
	}
	long := strings.Repeat("x", 40)
	if got := sheetName(long); len(got) != 31 {
		t.Errorf("sheetName() length = %d, want 31", len(got))
	}
}
