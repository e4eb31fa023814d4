package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/golf-results/internal/backup"
	"github.com/pfrederiksen/golf-results/internal/importer"
	"github.com/pfrederiksen/golf-results/internal/logger"
	"github.com/pfrederiksen/golf-results/internal/scraper"
	"github.com/pfrederiksen/golf-results/internal/store"
)

var (
	flagPlayers   []string
	flagFrom      int
	flagTo        int
	flagNoStore   bool
	flagBackupDir string
	flagFormat    string
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape player results and load them into the database",
		Long: `Fetch every season's results page for each player, store new results in
the database and write a JSON backup per player. Without database settings
only the backups are written.`,
		Args: cobra.NoArgs,
		RunE: runScrape,
	}

	cmd.Flags().StringArrayVar(&flagPlayers, "player", nil, "Player as id:name (repeatable, default: configured roster)")
	cmd.Flags().IntVar(&flagFrom, "from", 0, "First season (default: scrape.first_season)")
	cmd.Flags().IntVar(&flagTo, "to", 0, "Last season, inclusive (default: scrape.last_season)")
	cmd.Flags().BoolVar(&flagNoStore, "no-store", false, "Only write backups, skip the database")
	cmd.Flags().StringVar(&flagBackupDir, "backup-dir", "", "Backup directory (default: backup.dir)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	if flagFrom != 0 {
		cfg.Scrape.FirstSeason = flagFrom
	}
	if flagTo != 0 {
		cfg.Scrape.LastSeason = flagTo
	}
	if flagBackupDir != "" {
		cfg.Backup.Dir = flagBackupDir
	}
	if err := cfg.Validate("scrape"); err != nil {
		return err
	}

	players, err := rosterPlayers()
	if err != nil {
		return err
	}

	bk, err := backup.New(cfg.Backup.Dir)
	if err != nil {
		return fmt.Errorf("initializing backups: %w", err)
	}

	var st store.Store
	if !flagNoStore {
		st, err = store.Open(ctx, storeConfig())
		switch {
		case errors.Is(err, store.ErrNotConfigured):
			logger.Warn("Database not configured, writing backups only", logger.Fields{"driver": cfg.Store.Driver})
			st = nil
		case err != nil:
			return fmt.Errorf("opening database: %w", err)
		default:
			defer st.Close() //nolint:errcheck
		}
	}

	im := &importer.Importer{
		Fetcher: scraper.NewWithOptions(scraper.Options{
			BaseURL:   cfg.Scrape.BaseURL,
			UserAgent: cfg.Scrape.UserAgent,
			Timeout:   cfg.Scrape.Timeout,
		}),
		Store:  st,
		Backup: bk,
		Pacer:  importer.NewPacer(cfg.Scrape.Delay),
	}

	report := im.Run(ctx, players, cfg.Scrape.Seasons())
	logger.Debug("Run metrics", logger.GetMetricsSnapshot())

	if err := WriteReport(cmd.OutOrStdout(), report, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if report.Cancelled {
		return ctx.Err()
	}
	return nil
}

// rosterPlayers returns the --player flags, or the configured roster
func rosterPlayers() ([]importer.Player, error) {
	if len(flagPlayers) == 0 {
		players := make([]importer.Player, 0, len(cfg.Players))
		for _, p := range cfg.Players {
			players = append(players, importer.Player{ExternalID: p.ID, Name: p.Name})
		}
		return players, nil
	}

	players := make([]importer.Player, 0, len(flagPlayers))
	for _, s := range flagPlayers {
		p, err := parsePlayer(s)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// parsePlayer parses "9478:Scottie Scheffler"
func parsePlayer(s string) (importer.Player, error) {
	idText, name, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return importer.Player{}, fmt.Errorf("invalid player %q (want id:name)", s)
	}

	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil || id <= 0 {
		return importer.Player{}, fmt.Errorf("invalid player id in %q", s)
	}

	return importer.Player{ExternalID: id, Name: name}, nil
}
