package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write every indexed case record to an .xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		n, err := app.ExportUC.ExportXLSX(cmd.Context(), f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(args[0])
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d cases to %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
