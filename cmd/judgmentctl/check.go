package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that metadata and the vector index hold the same cases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.QueryUC.CheckIndex(cmd.Context()); err != nil {
			return err
		}
		n, err := app.Cases.CountIndexed(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d indexed cases\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
