package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nholik/sharecrawl/internal/config"
	"github.com/nholik/sharecrawl/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target-id]",
		Short: "Show stored crawl history",
		Long: `History lists the crawl artifacts stored in the local database.

Without arguments it lists every stored run across all targets. With a
target identifier it lists that target's runs only.

Examples:
  # All stored runs
  sharecrawl history

  # Runs of one target
  sharecrawl history Троси`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	var history []database.ArtifactMetadata
	if len(args) == 1 {
		history, err = db.History(ctx, args[0])
	} else {
		history, err = db.AllHistory(ctx)
	}
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored crawls.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tGENERATED\tFOLDERS\tFILES\tDEPTH")
	for _, meta := range history {
		depth := "unbounded"
		if meta.MaxDepth != nil {
			depth = fmt.Sprintf("%d", *meta.MaxDepth)
		}
		generated := "unknown"
		if !meta.GeneratedAt.IsZero() {
			generated = meta.GeneratedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			meta.TargetID, generated, meta.FolderCount, meta.FileCount, depth)
	}
	return w.Flush()
}
