package ports

import (
	"context"
	"io"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for judgment upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor runs the extraction and indexing pipeline for one document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// CaseQueryService answers natural-language questions about indexed judgments.
type CaseQueryService interface {
	Ask(ctx context.Context, query string) (*domain.Answer, error)
}

// CaseReader exposes stored case records.
type CaseReader interface {
	GetByDocumentID(ctx context.Context, documentID string) (*domain.CaseRecord, error)
}

// CaseExportService writes every indexed record as a workbook.
type CaseExportService interface {
	ExportXLSX(ctx context.Context, w io.Writer) (int, error)
}

// BatchIngestor ingests a directory of judgments.
type BatchIngestor interface {
	IngestDirectory(ctx context.Context, dir string) (domain.BatchStats, error)
}
