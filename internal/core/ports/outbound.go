package ports

import (
	"context"
	"io"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

// DocumentRepository persists and reads source document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveSourceInfo(ctx context.Context, id string, pages int, method string) error
}

// CaseRepository is the metadata store. Positions match vector index point ids.
type CaseRepository interface {
	Reserve(ctx context.Context, rec domain.CaseRecord) (int, error)
	MarkIndexed(ctx context.Context, position int) error
	Release(ctx context.Context, position int) error
	GetByPositions(ctx context.Context, positions []int) (map[int]domain.CaseRecord, error)
	GetByDocumentID(ctx context.Context, documentID string) (*domain.CaseRecord, error)
	List(ctx context.Context) ([]domain.CaseRecord, error)
	CountIndexed(ctx context.Context) (int, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor produces page-ordered raw text for a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (domain.SourceText, error)
}

// EntityRecognizer finds ORG, PERSON and DATE entities in judgment text.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]domain.Entity, error)
}

// Embedder builds fixed-dimension vectors for record and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores one vector per case position and answers nearest-neighbour queries.
type VectorIndex interface {
	Upsert(ctx context.Context, position int, vector []float32) error
	Search(ctx context.Context, vector []float32, limit int) ([]domain.IndexHit, error)
	Delete(ctx context.Context, position int) error
	Count(ctx context.Context) (int, error)
}

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error)
}

// CaseExporter writes case records in a tabular file format.
type CaseExporter interface {
	Write(ctx context.Context, w io.Writer, records []domain.CaseRecord) error
}
