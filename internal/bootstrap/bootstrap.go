package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/config"
	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/extraction"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
	"github.com/kirillkom/judgment-assistant/internal/core/ranking"
	"github.com/kirillkom/judgment-assistant/internal/core/synthesis"
	"github.com/kirillkom/judgment-assistant/internal/core/usecase"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/cache/rediscache"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/ocr"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/repository/sqlite"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/storage/s3store"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Docs      ports.DocumentRepository
	Cases     ports.CaseRepository
	Source    ports.TextExtractor
	IngestUC  *usecase.IngestDocumentUseCase
	ProcessUC *usecase.ProcessDocumentUseCase
	QueryUC   *usecase.QueryUseCase
	ExportUC  *usecase.ExportUseCase
	BatchUC   *usecase.BatchIngestUseCase

	closers []func()
}

type options struct {
	logger          *slog.Logger
	withQueue       bool
	breakerObserver resilience.StateObserver
	onExtraction    func(domain.ExtractionReport)
	onSource        func(string)
	onLag           func(time.Duration)
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithoutQueue skips the NATS connection; Upload is unavailable but Register still works.
func WithoutQueue() Option {
	return func(o *options) { o.withQueue = false }
}

func WithBreakerObserver(observer resilience.StateObserver) Option {
	return func(o *options) { o.breakerObserver = observer }
}

func WithExtractionObserver(onExtraction func(domain.ExtractionReport), onSource func(string)) Option {
	return func(o *options) {
		o.onExtraction = onExtraction
		o.onSource = onSource
	}
}

func WithQueueLagObserver(onLag func(time.Duration)) Option {
	return func(o *options) { o.onLag = onLag }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default(), withQueue: true}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	app := &App{Config: cfg}
	ready := false
	defer func() {
		if !ready {
			app.Close()
		}
	}()

	if err := app.openMetadata(ctx, cfg); err != nil {
		return nil, err
	}

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executorOpts := []resilience.Option{resilience.WithLogger(logger)}
	if o.breakerObserver != nil {
		executorOpts = append(executorOpts, resilience.WithStateObserver(o.breakerObserver))
	}
	executor := resilience.NewExecutor(resilienceConfig(cfg), executorOpts...)

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel,
		ollama.WithExecutor(executor),
		ollama.WithTimeout(cfg.OllamaTimeout),
		ollama.WithNERModel(cfg.OllamaNERModel),
	)

	var embedder ports.Embedder = ollama.NewEmbedder(ollamaClient)
	if cfg.RedisAddr != "" {
		rdb, err := rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("init embedding cache: %w", err)
		}
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		embedder = rediscache.NewCachedEmbedder(embedder, rdb, cfg.OllamaEmbedModel, cfg.EmbeddingCacheTTL, logger)
	}

	generator, err := app.newGenerator(ctx, cfg, ollamaClient, executor)
	if err != nil {
		return nil, err
	}

	var fieldExtractor *extraction.Extractor
	app.Source, fieldExtractor = NewExtractionPipeline(cfg, storage, ollamaClient, logger)

	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, executor)

	if o.withQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			QueueGroup:         cfg.NATSQueueGroup,
			ResilienceExecutor: executor,
			Logger:             logger,
			OnLag:              o.onLag,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.closers = append(app.closers, queue.Close)
		app.Queue = queue
	}

	ranker := ranking.New(
		ranking.WithLimits(cfg.RankHeuristicLimit, cfg.RankSimilarityLimit),
		ranking.WithLogger(logger),
	)
	synthesizer := synthesis.New(generator, synthesisConfig(cfg), logger)

	app.IngestUC = usecase.NewIngestDocumentUseCase(app.Docs, storage, app.Queue)
	app.ProcessUC = usecase.NewProcessDocumentUseCase(
		app.Docs,
		app.Cases,
		app.Source,
		fieldExtractor,
		embedder,
		index,
		usecase.ProcessOptions{
			FullTextLimit: cfg.FullTextLimit,
			OnExtraction:  o.onExtraction,
			OnSource:      o.onSource,
			Logger:        logger,
		},
	)
	app.QueryUC = usecase.NewQueryUseCase(embedder, index, app.Cases, ranker, synthesizer, cfg.RankCandidatePool, logger)
	app.ExportUC = usecase.NewExportUseCase(app.Cases, xlsx.NewWriter(logger))
	app.BatchUC = usecase.NewBatchIngestUseCase(app.IngestUC, app.ProcessUC, app.Cases, cfg.IngestConcurrency, logger)

	logger.Info("bootstrap_ready",
		"metadata_backend", cfg.MetadataBackend,
		"storage_backend", cfg.StorageBackend,
		"generator_backend", cfg.GeneratorBackend,
		"ocr_enabled", cfg.OCREnabled,
		"embedding_cache", cfg.RedisAddr != "",
		"queue", o.withQueue,
	)
	ready = true
	return app, nil
}

// NewExtractionPipeline builds the source text chain and the field extractor. The entity
// recognizer and OCR engine are attached only when enabled in cfg.
func NewExtractionPipeline(cfg config.Config, storage ports.ObjectStorage, client *ollama.Client, logger *slog.Logger) (ports.TextExtractor, *extraction.Extractor) {
	var scanner extractor.Recognizer
	if cfg.OCREnabled {
		scanner = ocr.New(ocr.Config{
			Pdftoppm:    cfg.OCRPdftoppm,
			Tesseract:   cfg.OCRTesseract,
			Lang:        cfg.OCRLang,
			TessdataDir: cfg.OCRTessdataDir,
			DPI:         cfg.OCRDPI,
			MaxPages:    cfg.OCRMaxPages,
		}, ocr.WithLogger(logger))
	}
	source := extractor.NewChain(storage, scanner, extractor.ChainOptions{
		MinTextLayerChars: cfg.OCRMinTextChars,
		Logger:            logger,
	})

	var recognizer ports.EntityRecognizer
	if cfg.NEREnabled && client != nil {
		recognizer = ollama.NewEntityRecognizer(client)
	}
	return source, extraction.NewExtractor(recognizer, logger)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openMetadata(ctx context.Context, cfg config.Config) error {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.MetadataBackend {
	case "postgres":
		if db, err = postgres.OpenDB(cfg.PostgresDSN); err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		a.Docs = postgres.NewDocumentRepository(db)
		a.Cases = postgres.NewCaseRepository(db)
	case "sqlite":
		if db, err = sqlite.Open(cfg.SQLitePath); err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := sqlite.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		a.Docs = sqlite.NewDocumentRepository(db)
		a.Cases = sqlite.NewCaseRepository(db)
	default:
		return fmt.Errorf("unknown metadata backend %q", cfg.MetadataBackend)
	}
	return nil
}

func newStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "local":
		return localfs.New(cfg.StoragePath)
	case "s3":
		return s3store.New(ctx, s3store.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newGenerator returns nil for "none"; the synthesizer then answers from templates only.
func (a *App) newGenerator(ctx context.Context, cfg config.Config, client *ollama.Client, executor *resilience.Executor) (ports.TextGenerator, error) {
	switch cfg.GeneratorBackend {
	case "ollama":
		return ollama.NewGenerator(client), nil
	case "gemini":
		g, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, executor)
		if err != nil {
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		a.closers = append(a.closers, func() { _ = g.Close() })
		return g, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.GeneratorBackend)
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:        cfg.ResilienceRetryMaxAttempts,
		RetryInitialBackoff:     cfg.ResilienceRetryInitialBackoff,
		RetryMaxBackoff:         cfg.ResilienceRetryMaxBackoff,
		RetryMultiplier:         cfg.ResilienceRetryMultiplier,
		BreakerEnabled:          cfg.ResilienceBreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.ResilienceBreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.ResilienceBreakerFailureRatio,
		BreakerOpenTimeout:      cfg.ResilienceBreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: uint32(max(cfg.ResilienceBreakerHalfOpenMaxReq, 0)),
	}
}

func synthesisConfig(cfg config.Config) synthesis.Config {
	return synthesis.Config{
		MaxNewTokens:    cfg.SynthMaxNewTokens,
		Temperature:     cfg.SynthTemperature,
		SampleCount:     cfg.SynthSampleCount,
		Timeout:         cfg.SynthTimeout,
		MinAnswerLength: cfg.SynthMinAnswerLength,
		SnippetLength:   cfg.SynthSnippetLength,
	}
}
