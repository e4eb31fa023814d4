package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pfrederiksen/golf-results/internal/result"
)

// File is the on-disk backup layout
type File struct {
	PlayerName string `json:"player_name"`
	ESPNID     int    `json:"espn_id"`
	ScrapedAt  string `json:"scraped_at"`
	Years      []Year `json:"years"`
}

// Year holds the rows for one season
type Year struct {
	Year            int           `json:"year"`
	TournamentCount int           `json:"tournament_count"`
	Tournaments     []*result.Row `json:"tournaments"`
}

// Seasons restores the season to rows mapping
func (f *File) Seasons() map[int][]*result.Row {
	seasons := make(map[int][]*result.Row, len(f.Years))
	for _, y := range f.Years {
		seasons[y.Year] = y.Tournaments
	}
	return seasons
}

// RowCount returns the number of rows across all seasons
func (f *File) RowCount() int {
	n := 0
	for _, y := range f.Years {
		n += len(y.Tournaments)
	}
	return n
}

// Writer writes backup files into a directory
type Writer struct {
	dir string
	now func() time.Time
}

// New creates a Writer for dir, expanding a leading ~/ and creating the
// directory if it doesn't exist
func New(dir string) (*Writer, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, eris.Wrap(err, "backup: home directory")
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, eris.Wrapf(err, "backup: create directory %s", dir)
	}

	return &Writer{dir: dir, now: time.Now}, nil
}

// Dir returns the expanded backup directory
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns the backup path for a player
func (w *Writer) Path(playerName string, externalID int) string {
	return filepath.Join(w.dir, FileName(playerName, externalID))
}

var slugReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// FileName returns "<lowercase name, spaces as underscores>_<id>.json".
// Path separators also become underscores so the file stays in the backup dir.
func FileName(playerName string, externalID int) string {
	slug := slugReplacer.Replace(strings.ToLower(strings.TrimSpace(playerName)))
	return fmt.Sprintf("%s_%d.json", slug, externalID)
}

// Write saves a player's rows, keyed by season, and returns the file path.
// Seasons without rows are left out and years are written in ascending order.
func (w *Writer) Write(playerName string, externalID int, seasons map[int][]*result.Row) (string, error) {
	f := File{
		PlayerName: playerName,
		ESPNID:     externalID,
		ScrapedAt:  w.now().UTC().Format(time.RFC3339),
		Years:      make([]Year, 0, len(seasons)),
	}

	for season, rows := range seasons {
		if len(rows) == 0 {
			continue
		}
		f.Years = append(f.Years, Year{
			Year:            season,
			TournamentCount: len(rows),
			Tournaments:     rows,
		})
	}
	sort.Slice(f.Years, func(i, j int) bool {
		return f.Years[i].Year < f.Years[j].Year
	})

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "backup: encoding")
	}

	path := w.Path(playerName, externalID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", eris.Wrapf(err, "backup: writing %s", path)
	}

	return path, nil
}

// Read loads a backup file
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "backup: reading %s", path)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "backup: parsing %s", path)
	}

	for _, y := range f.Years {
		for _, row := range y.Tournaments {
			if row != nil && row.RoundScores == nil {
				row.RoundScores = []int{}
			}
		}
	}

	return &f, nil
}
