package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpadapter "github.com/kirillkom/judgment-assistant/internal/adapters/mcp"
	"github.com/kirillkom/judgment-assistant/internal/bootstrap"
	"github.com/kirillkom/judgment-assistant/internal/config"
	"github.com/kirillkom/judgment-assistant/internal/observability/logging"
)

const service = "judgment-mcp"

func main() {
	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	// stdout carries the protocol in stdio mode.
	logger := logging.NewJSONLoggerTo(os.Stderr, service, cfg.LogLevel)
	if err != nil {
		logger.Error("config_load_failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.WithLogger(logger), bootstrap.WithoutQueue())
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.QueryUC.CheckIndex(ctx); err != nil {
		logger.Error("index_check_failed", "error", err)
		app.Close()
		os.Exit(1)
	}

	srv := mcpadapter.NewServer(app.QueryUC, app.QueryUC, logger)
	switch cfg.MCPTransport {
	case "stdio":
		logger.Info("mcp_serving", "transport", "stdio")
		if err := srv.ServeStdio(); err != nil {
			logger.Error("mcp_server_failed", "error", err)
		}
	case "http":
		httpServer := srv.NewHTTPServer()
		go func() {
			logger.Info("mcp_serving", "transport", "http", "port", cfg.MCPPort)
			if err := httpServer.Start(":" + cfg.MCPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("mcp_server_failed", "error", err)
				stop()
			}
		}()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp_shutdown_failed", "error", err)
		}
	default:
		logger.Error("unknown_mcp_transport", "transport", cfg.MCPTransport)
		app.Close()
		os.Exit(1)
	}
}
