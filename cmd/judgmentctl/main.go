// Command judgmentctl runs ingestion, queries and exports against the judgment index without
// the API or the queue.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/judgment-assistant/internal/bootstrap"
	"github.com/kirillkom/judgment-assistant/internal/config"
	"github.com/kirillkom/judgment-assistant/internal/observability/logging"
)

const service = "judgmentctl"

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "judgmentctl",
	Short:         "Index and query court judgments from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			loaded.LogLevel = level
		}
		cfg = loaded
		logger = logging.NewJSONLoggerTo(cmd.ErrOrStderr(), service, cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", os.Getenv("CONFIG_FILE"), "YAML config file; environment variables override its values")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

// openApp bootstraps without NATS; commands run the use cases in-process.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.New(ctx, cfg, bootstrap.WithLogger(logger), bootstrap.WithoutQueue())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
