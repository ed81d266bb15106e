package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shiori-dev/pdfa11ycrawl/internal/config"
	"github.com/shiori-dev/pdfa11ycrawl/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawl runs from the scan history database",
		Long: `History lists the crawl runs recorded in the scan history database,
most recent first, with their summary counts.

Examples:
  # Show the last 20 runs
  pdfa11ycrawl history

  # Show the last 5 runs
  pdfa11ycrawl history -n 5`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 for all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	dbDir := config.XDGDataDir()
	if _, err := os.Stat(filepath.Join(dbDir, "pdfa11ycrawl.db")); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No scan history yet. Run `pdfa11ycrawl scan <url>` first.")
		return nil
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only access

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scan history yet. Run `pdfa11ycrawl scan <url>` first.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTART URL\tPAGES\tPDFS\tTEXT\tIMAGE\tUNKNOWN")
	for _, run := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.StartURL,
			run.PagesVisited,
			run.Total,
			run.TextBased,
			run.ImageOnly,
			run.Unknown,
		)
	}
	return tw.Flush()
}
