package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/golf-results/internal/logger"
	"github.com/pfrederiksen/golf-results/internal/scraper"
)

const sampleSize = 10

var flagPlayersOut string

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Collect player links from ESPN's golf stats page into a CSV",
		Args:  cobra.NoArgs,
		RunE:  runPlayers,
	}

	cmd.Flags().StringVar(&flagPlayersOut, "out", filepath.Join("data", "espn_players.csv"), "CSV output path")

	return cmd
}

func runPlayers(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	sc := scraper.NewWithOptions(scraper.Options{
		BaseURL:   cfg.Scrape.BaseURL,
		UserAgent: cfg.Scrape.UserAgent,
		Timeout:   cfg.Scrape.Timeout,
	})

	links, err := sc.FetchPlayerLinks(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching player links: %w", err)
	}

	if len(links) == 0 {
		fmt.Fprintln(out, "No player links found.")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(flagPlayersOut), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(flagPlayersOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", flagPlayersOut, err)
	}
	defer f.Close() //nolint:errcheck

	if err := scraper.WritePlayerLinksCSV(f, links); err != nil {
		return err
	}
	logger.Info("Wrote player links", logger.Fields{"path": flagPlayersOut, "players": len(links)})

	fmt.Fprintf(out, "Saved %d players to %s\n\n", len(links), flagPlayersOut)
	for _, l := range links[:min(sampleSize, len(links))] {
		fmt.Fprintf(out, "  %s (ID: %d)\n", l.Name, l.ID)
	}
	if len(links) > sampleSize {
		fmt.Fprintf(out, "  ... and %d more\n", len(links)-sampleSize)
	}

	return f.Close()
}
