package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/bootstrap"
	"github.com/kirillkom/judgment-assistant/internal/config"
	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/observability/logging"
	"github.com/kirillkom/judgment-assistant/internal/observability/metrics"
)

const service = "judgment-worker"

func main() {
	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logging.NewJSONLogger(service, "info").Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	app, err := bootstrap.New(ctx, cfg,
		bootstrap.WithLogger(logger),
		bootstrap.WithBreakerObserver(workerMetrics.BreakerObserver(service)),
		bootstrap.WithExtractionObserver(
			func(report domain.ExtractionReport) { workerMetrics.ObserveExtraction(service, report) },
			func(method string) { workerMetrics.ObserveSourceMethod(service, method) },
		),
		bootstrap.WithQueueLagObserver(func(lag time.Duration) { workerMetrics.ObserveQueueLag(service, lag) }),
	)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "queue_group", cfg.NATSQueueGroup)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.WorkerProcessTimeout)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		err := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(service, time.Since(start), err)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker_subscribe_failed", "error", err)
		app.Close()
		os.Exit(1)
	}
}
