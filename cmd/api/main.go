package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/judgment-assistant/internal/adapters/http"
	"github.com/kirillkom/judgment-assistant/internal/bootstrap"
	"github.com/kirillkom/judgment-assistant/internal/config"
	"github.com/kirillkom/judgment-assistant/internal/observability/logging"
	"github.com/kirillkom/judgment-assistant/internal/observability/metrics"
)

const service = "judgment-api"

func main() {
	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logging.NewJSONLogger(service, "info").Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	app, err := bootstrap.New(ctx, cfg,
		bootstrap.WithLogger(logger),
		bootstrap.WithBreakerObserver(httpMetrics.BreakerObserver(service)),
	)
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

	router := httpadapter.NewRouter(cfg, app.IngestUC, app.QueryUC, app.Docs, app.QueryUC, app.ExportUC,
		httpadapter.WithMetrics(httpMetrics),
		httpadapter.WithLogger(logger),
	).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.SynthTimeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_failed", "error", err)
	}
}
