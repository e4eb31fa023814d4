// Package importer runs the scrape-and-load loop: for every player and season
// it fetches the results page, stores new rows and finally writes a backup.
//
// A failed season fetch or a rejected row is logged and skipped; the run
// carries on with the next unit of work. Fetches are paced by a fixed delay.
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/golf-results/internal/logger"
	"github.com/pfrederiksen/golf-results/internal/result"
	"github.com/pfrederiksen/golf-results/internal/scraper"
	"github.com/pfrederiksen/golf-results/internal/store"
)

// Player is a roster entry
type Player struct {
	ExternalID int    `json:"espn_id"`
	Name       string `json:"name"`
}

// Pacer spaces fetches apart. Wait blocks before a fetch and Done is called
// once the fetch has returned.
type Pacer interface {
	Wait(ctx context.Context) error
	Done()
}

// BackupWriter persists one player's rows. *backup.Writer satisfies it.
type BackupWriter interface {
	Write(playerName string, externalID int, seasons map[int][]*result.Row) (string, error)
}

// DelayPacer keeps a fixed pause between the end of one fetch and the start
// of the next, however long the fetch took. The first fetch is not delayed.
type DelayPacer struct {
	delay time.Duration
	next  *rate.Limiter
}

// NewPacer returns a DelayPacer. A delay of zero or less disables pacing.
func NewPacer(delay time.Duration) *DelayPacer {
	return &DelayPacer{delay: delay}
}

// Wait blocks until the delay has passed since the last Done, or ctx ends
func (p *DelayPacer) Wait(ctx context.Context) error {
	if p.next == nil {
		return ctx.Err()
	}
	return p.next.Wait(ctx)
}

// Done starts the pause. The limiter's only token is spent now, so the next
// one becomes available a full delay later.
func (p *DelayPacer) Done() {
	if p.delay <= 0 {
		return
	}
	p.next = rate.NewLimiter(rate.Every(p.delay), 1)
	p.next.AllowN(time.Now(), 1)
}

// Importer wires a fetcher to an optional store and an optional backup writer
type Importer struct {
	Fetcher scraper.Fetcher
	Store   store.Store  // nil runs without a database
	Backup  BackupWriter // nil skips backups
	Pacer   Pacer
	Logger  *logger.Logger
	Metrics *logger.Metrics
}

// PlayerReport summarizes one player's import
type PlayerReport struct {
	Player         Player `json:"player"`
	StoreID        int64  `json:"store_id,omitempty"`
	StoreDisabled  bool   `json:"store_disabled"`
	SeasonsFetched int    `json:"seasons_fetched"`
	SeasonsFailed  int    `json:"seasons_failed"`
	RowsFound      int    `json:"rows_found"`
	RowsStored     int    `json:"rows_stored"`
	RowsDuplicate  int    `json:"rows_duplicate"`
	RowsFailed     int    `json:"rows_failed"`
	BackupPath     string `json:"backup_path,omitempty"`
}

// Report summarizes a run
type Report struct {
	RunID     string         `json:"run_id"`
	Started   time.Time      `json:"started"`
	Finished  time.Time      `json:"finished"`
	Cancelled bool           `json:"cancelled"`
	Players   []PlayerReport `json:"players"`
}

// Totals sums the per-player counters
func (r *Report) Totals() PlayerReport {
	var t PlayerReport
	for _, p := range r.Players {
		t.SeasonsFetched += p.SeasonsFetched
		t.SeasonsFailed += p.SeasonsFailed
		t.RowsFound += p.RowsFound
		t.RowsStored += p.RowsStored
		t.RowsDuplicate += p.RowsDuplicate
		t.RowsFailed += p.RowsFailed
	}
	return t
}

// Run imports every season for every player, in order. It stops early only
// when ctx is done.
func (im *Importer) Run(ctx context.Context, players []Player, seasons []int) *Report {
	im.setDefaults()

	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Players: make([]PlayerReport, 0, len(players)),
	}
	log := im.Logger.With(logger.Fields{"run_id": report.RunID})

	log.Info("Starting import", logger.Fields{
		"players":  len(players),
		"seasons":  len(seasons),
		"database": im.Store != nil,
	})
	im.Metrics.SetGauge("import.players", float64(len(players)))

	for _, p := range players {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		pr, cancelled := im.importPlayer(ctx, log, p, seasons)
		report.Players = append(report.Players, pr)
		if cancelled {
			report.Cancelled = true
			break
		}
	}

	report.Finished = time.Now().UTC()
	totals := report.Totals()
	log.Info("Import finished", logger.Fields{
		"rows_found":     totals.RowsFound,
		"rows_stored":    totals.RowsStored,
		"rows_duplicate": totals.RowsDuplicate,
		"rows_failed":    totals.RowsFailed,
		"seasons_failed": totals.SeasonsFailed,
		"cancelled":      report.Cancelled,
		"duration":       report.Finished.Sub(report.Started).String(),
	})

	return report
}

func (im *Importer) setDefaults() {
	if im.Pacer == nil {
		im.Pacer = NewPacer(0)
	}
	if im.Logger == nil {
		im.Logger = logger.Default()
	}
	if im.Metrics == nil {
		im.Metrics = logger.DefaultMetrics()
	}
}

// importPlayer returns the player's report and whether ctx ended the run
func (im *Importer) importPlayer(ctx context.Context, log *logger.Logger, p Player, seasons []int) (PlayerReport, bool) {
	pr := PlayerReport{Player: p}
	log = log.With(logger.Fields{"player": p.Name, "espn_id": p.ExternalID})
	log.Info("Processing player", nil)

	db := im.Store
	if db != nil {
		id, err := im.resolvePlayer(ctx, p)
		if err != nil {
			log.Error("Player lookup failed, skipping database writes", nil, err)
			pr.StoreDisabled = true
			db = nil
		} else {
			pr.StoreID = id
		}
	}

	found := make(map[int][]*result.Row)
	cancelled := false

	for _, season := range seasons {
		if err := im.Pacer.Wait(ctx); err != nil {
			cancelled = true
			break
		}

		start := time.Now()
		rows, err := im.Fetcher.FetchResults(ctx, p.ExternalID, season)
		im.Pacer.Done()
		im.Metrics.RecordTiming("fetch", time.Since(start))
		if err != nil {
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			pr.SeasonsFailed++
			im.Metrics.IncrCounter("seasons.failed")
			log.Error("Fetch failed, skipping season", logger.Fields{"season": season}, err)
			continue
		}

		pr.SeasonsFetched++
		pr.RowsFound += len(rows)
		im.Metrics.IncrCounter("seasons.fetched")
		im.Metrics.AddCounter("rows.found", int64(len(rows)))
		log.Info("Fetched season", logger.Fields{"season": season, "tournaments": len(rows)})

		if len(rows) == 0 {
			continue
		}
		found[season] = rows

		if db != nil && !im.storeRows(ctx, log, db, &pr, season, rows) {
			cancelled = true
			break
		}
	}

	if len(found) > 0 && im.Backup != nil {
		path, err := im.Backup.Write(p.Name, p.ExternalID, found)
		if err != nil {
			log.Error("Backup failed", nil, err)
		} else {
			pr.BackupPath = path
			log.Info("Wrote backup", logger.Fields{"path": path})
		}
	}

	return pr, cancelled
}

func (im *Importer) resolvePlayer(ctx context.Context, p Player) (int64, error) {
	id, found, err := im.Store.FindPlayerByExternalID(ctx, p.ExternalID)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	return im.Store.CreatePlayer(ctx, p.Name, p.ExternalID)
}

// storeRows returns false when ctx ended before every row was handled
func (im *Importer) storeRows(ctx context.Context, log *logger.Logger, db store.Store, pr *PlayerReport, season int, rows []*result.Row) bool {
	for _, row := range rows {
		if ctx.Err() != nil {
			return false
		}

		fields := logger.Fields{"season": season, "tournament": row.TournamentName}

		stored, err := im.storeRow(ctx, db, pr.StoreID, season, row)
		switch {
		case err != nil:
			pr.RowsFailed++
			im.Metrics.IncrCounter("rows.failed")
			log.Error("Store failed, skipping row", fields, err)
		case !stored:
			pr.RowsDuplicate++
			im.Metrics.IncrCounter("rows.duplicate")
			log.Debug("Already stored", fields)
		default:
			pr.RowsStored++
			im.Metrics.IncrCounter("rows.stored")
			fields["position"] = row.Position.Raw
			log.Debug("Stored result", fields)
		}
	}

	return ctx.Err() == nil
}

// storeRow reports false when the result was already stored
func (im *Importer) storeRow(ctx context.Context, db store.Store, playerID int64, season int, row *result.Row) (bool, error) {
	tournamentID, err := db.FindOrCreateTournament(ctx, row.TournamentName, season)
	if err != nil {
		return false, err
	}

	exists, err := db.ExistsResult(ctx, playerID, row.TournamentName, season)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	resultID, err := db.InsertResult(ctx, row, playerID, tournamentID, season)
	if err != nil {
		return false, err
	}

	if len(row.RoundScores) > 0 {
		if err := db.InsertRoundScores(ctx, resultID, store.RoundScores(row.RoundScores)); err != nil {
			return false, err
		}
	}
	return true, nil
}
