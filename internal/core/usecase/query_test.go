package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/ranking"
	"github.com/kirillkom/judgment-assistant/internal/core/synthesis"
)

func newQueryUseCase(cases *caseRepoFake, index *indexFake, embedder *embedderFake) *QueryUseCase {
	return NewQueryUseCase(
		embedder,
		index,
		cases,
		ranking.New(),
		synthesis.New(nil, synthesis.DefaultConfig(), nil),
		0,
		nil,
	)
}

func seedCases(cases *caseRepoFake, index *indexFake) {
	records := []domain.CaseRecord{
		{Position: 0, DocumentID: "d0", CaseID: "Crl.MC.No. 1 of 2015", Date: "1ST DAY OF MAY, 2015", Outcome: "dismissed", Judge: "X"},
		{Position: 1, DocumentID: "d1", CaseID: "Crl.MC.No. 6 of 2014", Date: "2ND DAY OF JANUARY, 2014", Outcome: "allowed", Judge: "A. BADHARUDEEN", Court: "HIGH COURT OF KERALA"},
		{Position: 2, DocumentID: "d2", CaseID: "Crl.MC.No. 8 of 2016", Date: "3RD DAY OF JUNE, 2016", Outcome: "quashed", Judge: "Y"},
	}
	for _, rec := range records {
		cases.add(rec)
		index.points[rec.Position] = []float32{1, 0}
	}
}

func TestAskExactIDQueryReturnsSingleRecord(t *testing.T) {
	cases := newCaseRepoFake()
	index := newIndexFake()
	seedCases(cases, index)
	index.hits = []domain.IndexHit{{Position: 0, Distance: 0.1}, {Position: 2, Distance: 0.3}, {Position: 1, Distance: 1.7}}
	uc := newQueryUseCase(cases, index, &embedderFake{})

	answer, err := uc.Ask(context.Background(), "outcome of case id Crl.MC.No.6 OF 2014")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Path != domain.RankPathExactID {
		t.Fatalf("expected exact id path, got %s", answer.Path)
	}
	if len(answer.Shortlist) != 1 || answer.Shortlist[0].Record.CaseID != "Crl.MC.No. 6 of 2014" {
		t.Fatalf("unexpected shortlist: %+v", answer.Shortlist)
	}
	if answer.Shortlist[0].Distance != 1.7 {
		t.Fatalf("distance not carried to detail view: %v", answer.Shortlist[0].Distance)
	}
	if index.limit != DefaultCandidatePool {
		t.Fatalf("expected pool size %d, got %d", DefaultCandidatePool, index.limit)
	}
	if math.Abs(float64(index.searched[0])-0.6) > 1e-6 {
		t.Fatalf("query vector not normalized: %v", index.searched)
	}
}

func TestAskDropsPositionsWithoutRecords(t *testing.T) {
	cases := newCaseRepoFake()
	index := newIndexFake()
	seedCases(cases, index)
	index.hits = []domain.IndexHit{{Position: 7, Distance: 0.0}, {Position: 2, Distance: 0.5}}

	answer, err := newQueryUseCase(cases, index, &embedderFake{}).Ask(context.Background(), "anything about bail")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(answer.Shortlist) != 1 || answer.Shortlist[0].Record.Position != 2 {
		t.Fatalf("unexpected shortlist: %+v", answer.Shortlist)
	}
}

func TestAskNoCandidatesApologizes(t *testing.T) {
	answer, err := newQueryUseCase(newCaseRepoFake(), newIndexFake(), &embedderFake{}).Ask(context.Background(), "who won?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Outcome != domain.OutcomeApology || answer.Path != domain.RankPathNone {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}

func TestAskValidatesQuery(t *testing.T) {
	_, err := newQueryUseCase(newCaseRepoFake(), newIndexFake(), &embedderFake{}).Ask(context.Background(), "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAskPropagatesSearchError(t *testing.T) {
	index := newIndexFake()
	index.searchErr = errors.New("qdrant down")
	_, err := newQueryUseCase(newCaseRepoFake(), index, &embedderFake{}).Ask(context.Background(), "q")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestCheckIndex(t *testing.T) {
	cases := newCaseRepoFake()
	index := newIndexFake()
	seedCases(cases, index)
	uc := newQueryUseCase(cases, index, &embedderFake{})

	if err := uc.CheckIndex(context.Background()); err != nil {
		t.Fatalf("CheckIndex() error = %v", err)
	}

	index.points[9] = []float32{0, 1}
	if err := uc.CheckIndex(context.Background()); !domain.IsKind(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected index unavailable on count mismatch, got %v", err)
	}

	index.countErr = errors.New("connection refused")
	if err := uc.CheckIndex(context.Background()); !domain.IsKind(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected index unavailable when index is unreachable, got %v", err)
	}
}
