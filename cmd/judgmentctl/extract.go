package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/judgment-assistant/internal/bootstrap"
	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/extraction"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/storage/localfs"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Print the case record extracted from one file without indexing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		storage, err := localfs.New(filepath.Dir(abs))
		if err != nil {
			return err
		}
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel,
			ollama.WithTimeout(cfg.OllamaTimeout),
			ollama.WithNERModel(cfg.OllamaNERModel),
		)
		source, fields := bootstrap.NewExtractionPipeline(cfg, storage, client, logger)

		name := filepath.Base(abs)
		doc := &domain.Document{ID: name, Filename: name, StoragePath: name}
		text, err := source.Extract(cmd.Context(), doc)
		if err != nil {
			return err
		}
		rec, report := fields.Extract(cmd.Context(), doc.ID, text.Text)
		extraction.FinalizeCaseID(&rec)

		return printJSON(cmd.OutOrStdout(), struct {
			Record   domain.CaseRecord `json:"record"`
			Gaps     []string          `json:"gaps,omitempty"`
			Method   string            `json:"method"`
			Pages    int               `json:"pages"`
			Warnings []string          `json:"warnings,omitempty"`
		}{rec, report.Gaps, text.Method, text.Pages, text.Warnings})
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
