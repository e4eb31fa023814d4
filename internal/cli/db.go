package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/golf-results/internal/logger"
	"github.com/pfrederiksen/golf-results/internal/store"
)

// ConfirmPhrase must be typed to clear the database
const ConfirmPhrase = "YES DELETE ALL"

var (
	flagDBFormat string
	flagYes      bool
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect or clear the results database",
	}
	cmd.PersistentFlags().StringVar(&flagDBFormat, "format", "text", "Output format: text or json")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show row counts per table",
		Args:  cobra.NoArgs,
		RunE:  runDBStatus,
	}

	read := &cobra.Command{
		Use:   "read",
		Short: "Show players, tournaments, season summaries and round counts",
		Args:  cobra.NoArgs,
		RunE:  runDBRead,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every row from every table",
		Long: fmt.Sprintf(`Delete all rows in foreign-key order: %s.
Asks for the confirmation phrase %q unless --yes is given.`, strings.Join(store.Tables, ", "), ConfirmPhrase),
		Args: cobra.NoArgs,
		RunE: runDBClear,
	}
	clearCmd.Flags().BoolVar(&flagYes, "yes", false, "Skip the confirmation prompt")

	cmd.AddCommand(status, read, clearCmd)
	return cmd
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagDBFormat)
	if err != nil {
		return err
	}

	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	counts, err := st.Counts(cmd.Context())
	if err != nil {
		return err
	}
	return WriteCounts(cmd.OutOrStdout(), counts, format)
}

func runDBRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := parseFormat(flagDBFormat)
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	report := &DatabaseReport{}
	if report.Counts, err = st.Counts(ctx); err != nil {
		return err
	}
	if report.Players, err = st.ListPlayers(ctx); err != nil {
		return err
	}
	if report.Tournaments, err = st.ListTournaments(ctx); err != nil {
		return err
	}
	if report.Summaries, err = st.SeasonSummaries(ctx); err != nil {
		return err
	}
	if report.Rounds, err = st.RoundHistogram(ctx); err != nil {
		return err
	}

	return WriteDatabaseReport(cmd.OutOrStdout(), report, format)
}

func runDBClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	before, err := st.Counts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Current row counts:")
	if err := WriteCounts(out, before, FormatText); err != nil {
		return err
	}

	if before.Total() == 0 {
		fmt.Fprintln(out, "\nDatabase is already empty.")
		return nil
	}

	if !flagYes {
		fmt.Fprintf(out, "\nThis deletes ALL %d rows. Type '%s' to confirm: ", before.Total(), ConfirmPhrase)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.TrimSpace(line) != ConfirmPhrase {
			if err != nil && line == "" {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, "Cancelled, nothing was deleted.")
			return nil
		}
	}

	if err := st.Clear(ctx); err != nil {
		return err
	}
	logger.Warn("Cleared database", logger.Fields{"rows": before.Total()})

	after, err := st.Counts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nFinal row counts:")
	return WriteCounts(out, after, FormatText)
}
