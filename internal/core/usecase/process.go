package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/extraction"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
)

const DefaultFullTextLimit = 500

type ProcessOptions struct {
	// FullTextLimit caps the stored full_text; zero means DefaultFullTextLimit, negative disables the cap.
	FullTextLimit int
	// OnExtraction receives every extraction report, e.g. for gap metrics.
	OnExtraction func(domain.ExtractionReport)
	// OnSource receives the method that produced each document's text.
	OnSource func(method string)
	Logger   *slog.Logger
}

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	cases     ports.CaseRepository
	source    ports.TextExtractor
	extractor *extraction.Extractor
	embedder  ports.Embedder
	index     ports.VectorIndex
	opts      ProcessOptions
	logger    *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	cases ports.CaseRepository,
	source ports.TextExtractor,
	extractor *extraction.Extractor,
	embedder ports.Embedder,
	index ports.VectorIndex,
	opts ProcessOptions,
) *ProcessDocumentUseCase {
	if opts.FullTextLimit == 0 {
		opts.FullTextLimit = DefaultFullTextLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:      repo,
		cases:     cases,
		source:    source,
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		opts:      opts,
		logger:    logger,
	}
}

// ProcessByID runs extraction and indexing for one document. A document that already has an
// indexed record is left untouched so redelivered events never append a second record.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	existing, err := uc.cases.GetByDocumentID(ctx, documentID)
	switch {
	case err == nil && existing != nil:
		uc.logger.Info("document_already_indexed", "document_id", documentID, "position", existing.Position)
		return uc.markStatus(ctx, documentID, domain.StatusReady, "")
	case err != nil && !domain.IsKind(err, domain.ErrCaseNotFound):
		return fmt.Errorf("lookup case record: %w", err)
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, documentID); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}

	source, err := uc.sourceText(ctx, doc)
	if err != nil {
		return err
	}

	rec := uc.extract(ctx, doc, source)

	vector, err := uc.embed(ctx, rec)
	if err != nil {
		return err
	}

	position, err := uc.append(ctx, rec, vector)
	if err != nil {
		return err
	}

	uc.logger.Info("document_indexed",
		"document_id", doc.ID,
		"case_id", rec.CaseID,
		"position", position,
		"pages", source.Pages,
		"method", source.Method,
	)
	return nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) sourceText(ctx context.Context, doc *domain.Document) (domain.SourceText, error) {
	source, err := uc.source.Extract(ctx, doc)
	if err != nil {
		if domain.IsKind(err, domain.ErrSourceUnavailable) {
			return domain.SourceText{}, err
		}
		return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "extract source text", err)
	}
	if strings.TrimSpace(source.Text) == "" {
		return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "extract source text", errors.New("no text produced"))
	}
	for _, warning := range source.Warnings {
		uc.logger.Warn("source_text_warning", "document_id", doc.ID, "warning", warning)
	}

	if uc.opts.OnSource != nil {
		uc.opts.OnSource(source.Method)
	}
	if err := uc.repo.SaveSourceInfo(ctx, doc.ID, source.Pages, source.Method); err != nil {
		return domain.SourceText{}, fmt.Errorf("save source info: %w", err)
	}
	return source, nil
}

func (uc *ProcessDocumentUseCase) extract(ctx context.Context, doc *domain.Document, source domain.SourceText) domain.CaseRecord {
	rec, report := uc.extractor.Extract(ctx, doc.ID, source.Text)
	if uc.opts.OnExtraction != nil {
		uc.opts.OnExtraction(report)
	}
	if extraction.FinalizeCaseID(&rec) {
		uc.logger.Info("synthetic_case_id", "document_id", doc.ID, "case_id", rec.CaseID)
	}
	if uc.opts.FullTextLimit > 0 && len(rec.FullText) > uc.opts.FullTextLimit {
		rec.FullText = rec.FullText[:uc.opts.FullTextLimit]
	}
	return rec
}

func (uc *ProcessDocumentUseCase) embed(ctx context.Context, rec domain.CaseRecord) ([]float32, error) {
	vectors, err := uc.embedder.Embed(ctx, []string{extraction.EmbeddingText(rec)})
	if err != nil {
		return nil, fmt.Errorf("embed case record: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed case record",
			fmt.Errorf("expected one vector, got %d", len(vectors)),
		)
	}
	return unitVector(vectors[0]), nil
}

// append writes the record and its vector under the same position. The record stays invisible to
// readers until the vector is stored, and the reservation is dropped when any later step fails.
func (uc *ProcessDocumentUseCase) append(ctx context.Context, rec domain.CaseRecord, vector []float32) (int, error) {
	position, err := uc.cases.Reserve(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("reserve case position: %w", err)
	}

	if err := uc.index.Upsert(ctx, position, vector); err != nil {
		// The point may have been stored even though the call failed.
		uc.discard(ctx, position)
		return 0, fmt.Errorf("upsert vector: %w", err)
	}

	if err := uc.cases.MarkIndexed(ctx, position); err != nil {
		uc.discard(ctx, position)
		return 0, fmt.Errorf("mark case indexed: %w", err)
	}
	return position, nil
}

// discard removes any vector stored under position and drops the reservation.
func (uc *ProcessDocumentUseCase) discard(ctx context.Context, position int) {
	ctx = context.WithoutCancel(ctx)
	if err := uc.index.Delete(ctx, position); err != nil {
		uc.logger.Error("vector_delete_failed", "position", position, "error", err)
	}
	if err := uc.cases.Release(ctx, position); err != nil {
		uc.logger.Error("case_release_failed", "position", position, "error", err)
	}
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	uc.logger.Warn("document_process_failed", "document_id", documentID, "error", processErr)
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
