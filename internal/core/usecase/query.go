package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
	"github.com/kirillkom/judgment-assistant/internal/core/ranking"
	"github.com/kirillkom/judgment-assistant/internal/core/synthesis"
)

const DefaultCandidatePool = 20

type QueryUseCase struct {
	embedder    ports.Embedder
	index       ports.VectorIndex
	cases       ports.CaseRepository
	ranker      *ranking.Ranker
	synthesizer *synthesis.Synthesizer
	poolSize    int
	logger      *slog.Logger
}

func NewQueryUseCase(
	embedder ports.Embedder,
	index ports.VectorIndex,
	cases ports.CaseRepository,
	ranker *ranking.Ranker,
	synthesizer *synthesis.Synthesizer,
	poolSize int,
	logger *slog.Logger,
) *QueryUseCase {
	if poolSize <= 0 {
		poolSize = DefaultCandidatePool
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUseCase{
		embedder:    embedder,
		index:       index,
		cases:       cases,
		ranker:      ranker,
		synthesizer: synthesizer,
		poolSize:    poolSize,
		logger:      logger,
	}
}

// Ask embeds the query, ranks the nearest records and synthesizes an answer.
func (uc *QueryUseCase) Ask(ctx context.Context, query string) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("query is required"))
	}

	candidates, err := uc.candidates(ctx, query)
	if err != nil {
		return nil, err
	}

	ranked := uc.ranker.Rank(query, candidates)
	answer := uc.synthesizer.Synthesize(ctx, query, ranked)

	uc.logger.Info("query_answered",
		"path", string(answer.Path),
		"intent", answer.Intent,
		"outcome", string(answer.Outcome),
		"candidates", len(candidates),
		"shortlist", len(answer.Shortlist),
	)
	return &answer, nil
}

// candidates returns search hits joined with their records, in index order.
func (uc *QueryUseCase) candidates(ctx context.Context, query string) ([]domain.QueryResult, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.index.Search(ctx, unitVector(queryVector), uc.poolSize)
	if err != nil {
		return nil, fmt.Errorf("search vector index: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	positions := make([]int, 0, len(hits))
	for _, hit := range hits {
		positions = append(positions, hit.Position)
	}
	records, err := uc.cases.GetByPositions(ctx, positions)
	if err != nil {
		return nil, fmt.Errorf("load case records: %w", err)
	}

	candidates := make([]domain.QueryResult, 0, len(hits))
	for _, hit := range hits {
		rec, ok := records[hit.Position]
		if !ok {
			uc.logger.Warn("position_without_record", "position", hit.Position)
			continue
		}
		candidates = append(candidates, domain.QueryResult{Record: rec, Distance: hit.Distance})
	}
	return candidates, nil
}

// CheckIndex verifies that the vector index and metadata store answer and hold the same number of
// entries. A mismatch breaks positional correspondence, so serving must not start.
func (uc *QueryUseCase) CheckIndex(ctx context.Context) error {
	records, err := uc.cases.CountIndexed(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, "count case records", err)
	}
	vectors, err := uc.index.Count(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, "count index points", err)
	}
	if records != vectors {
		return domain.WrapError(
			domain.ErrIndexUnavailable,
			"check index",
			fmt.Errorf("metadata has %d records but vector index has %d points", records, vectors),
		)
	}
	return nil
}

// GetByDocumentID returns the indexed record of one document.
func (uc *QueryUseCase) GetByDocumentID(ctx context.Context, documentID string) (*domain.CaseRecord, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get case", errors.New("document id is required"))
	}
	return uc.cases.GetByDocumentID(ctx, documentID)
}
