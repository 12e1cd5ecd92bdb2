package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask QUERY",
	Short: "Answer a question about the indexed judgments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.QueryUC.CheckIndex(cmd.Context()); err != nil {
			return err
		}
		answer, err := app.QueryUC.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), answer)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, answer.Text)
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			fmt.Fprintf(out, "\npath=%s outcome=%s intent=%s\n", answer.Path, answer.Outcome, answer.Intent)
			for i, r := range answer.Shortlist {
				fmt.Fprintf(out, "%d. %s (%s, %s) similarity=%.3f\n", i+1, r.Record.CaseID, r.Record.Court, r.Record.Date, r.Similarity)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("json", false, "print the full answer as JSON")
	askCmd.Flags().BoolP("verbose", "v", false, "print the ranking path and shortlist")
	rootCmd.AddCommand(askCmd)
}
