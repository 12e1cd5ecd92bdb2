package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest DIR",
	Short: "Extract and index every supported judgment in a directory",
	Long: `ingest walks DIR for .pdf, .txt and image files, extracts case metadata from each
and appends it to the index. Files whose document already has an indexed record are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		stats, err := app.BatchUC.IngestDirectory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), stats); err != nil {
			return err
		}
		if stats.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", stats.Failed, stats.Seen)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
