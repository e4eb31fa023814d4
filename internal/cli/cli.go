package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pfrederiksen/golf-results/internal/config"
	"github.com/pfrederiksen/golf-results/internal/logger"
	"github.com/pfrederiksen/golf-results/internal/store"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	cfg *config.Config

	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "golf-results",
		Short: "Scrape ESPN golf results into a database",
		Long: `A CLI tool to scrape PGA Tour player results from ESPN, load them into
Postgres or SQLite, and keep a JSON backup of every player's seasons.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if flagVerbose {
				c.Log.Level = "debug"
			}
			if err := config.InitLogger(c.Log); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.SetDefault(nil)
			cfg = c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newScrapeCmd(),
		newPlayersCmd(),
		newDBCmd(),
		newBackupCmd(),
	)

	return cmd
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}

// parseFormat validates a text/json output flag
func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(s))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

func storeConfig() store.Config {
	return store.Config{
		Driver:      cfg.Store.Driver,
		DatabaseURL: cfg.Store.DatabaseURL,
		Path:        cfg.Store.Path,
	}
}

// openStore opens the configured backend for the admin commands, which
// cannot run without one
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("db"); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, storeConfig())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}
