package usecase

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
)

const DefaultBatchConcurrency = 4

const (
	batchStatusIndexed = "indexed"
	batchStatusFailed  = "failed"
	batchStatusSkipped = "skipped"
)

type documentRegistrar interface {
	Register(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

type BatchIngestUseCase struct {
	registrar   documentRegistrar
	processor   ports.DocumentProcessor
	cases       ports.CaseRepository
	concurrency int
	logger      *slog.Logger
}

func NewBatchIngestUseCase(
	registrar documentRegistrar,
	processor ports.DocumentProcessor,
	cases ports.CaseRepository,
	concurrency int,
	logger *slog.Logger,
) *BatchIngestUseCase {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchIngestUseCase{
		registrar:   registrar,
		processor:   processor,
		cases:       cases,
		concurrency: concurrency,
		logger:      logger,
	}
}

// IngestDirectory registers and processes every supported file under dir. Files are independent:
// a failing file is recorded in the stats and the batch carries on.
func (uc *BatchIngestUseCase) IngestDirectory(ctx context.Context, dir string) (domain.BatchStats, error) {
	var stats domain.BatchStats

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !IsSupportedSource(path) {
			stats.Skipped++
			stats.Files = append(stats.Files, domain.BatchFileResult{Path: path, Status: batchStatusSkipped})
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return domain.BatchStats{}, domain.WrapError(domain.ErrInvalidInput, "walk directory", err)
	}
	stats.Seen = len(files)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for _, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			result := uc.ingestFile(gctx, path)

			mu.Lock()
			defer mu.Unlock()
			stats.Files = append(stats.Files, result)
			if result.Status == batchStatusIndexed {
				stats.Indexed++
			} else {
				stats.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	sort.SliceStable(stats.Files, func(i, j int) bool {
		return stats.Files[i].Path < stats.Files[j].Path
	})
	uc.logger.Info("batch_ingest_finished",
		"dir", dir,
		"seen", stats.Seen,
		"indexed", stats.Indexed,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

func (uc *BatchIngestUseCase) ingestFile(ctx context.Context, path string) domain.BatchFileResult {
	result := domain.BatchFileResult{Path: path}
	fail := func(err error) domain.BatchFileResult {
		uc.logger.Warn("batch_file_failed", "path", path, "document_id", result.DocumentID, "error", err)
		result.Status = batchStatusFailed
		result.Error = err.Error()
		return result
	}

	doc, err := uc.register(ctx, path)
	if err != nil {
		return fail(err)
	}
	result.DocumentID = doc.ID

	if err := uc.processor.ProcessByID(ctx, doc.ID); err != nil {
		return fail(err)
	}

	rec, err := uc.cases.GetByDocumentID(ctx, doc.ID)
	if err != nil {
		return fail(fmt.Errorf("read indexed record: %w", err))
	}
	result.CaseID = rec.CaseID
	result.Status = batchStatusIndexed
	return result
}

func (uc *BatchIngestUseCase) register(ctx context.Context, path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSourceUnavailable, "open source file", err)
	}
	defer f.Close()

	return uc.registrar.Register(ctx, filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), f)
}
