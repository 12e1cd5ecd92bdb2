package ranking

import (
	"math"
	"testing"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

func candidate(caseID string, distance float64) domain.QueryResult {
	return domain.QueryResult{Record: domain.CaseRecord{CaseID: caseID}, Distance: distance}
}

func TestRankExactIDOverridesSimilarity(t *testing.T) {
	candidates := []domain.QueryResult{
		candidate("Crl.MC.No. 1 of 2015", 0.1),
		candidate("Crl.MC.No. 2 of 2016", 0.3),
		candidate("Crl.MC.No. 6 of 2014", 1.9),
	}

	got := New().Rank("outcome of case id Crl.MC.No.6 OF 2014", candidates)

	if got.Path != domain.RankPathExactID {
		t.Fatalf("expected exact id path, got %s", got.Path)
	}
	if len(got.Results) != 1 || got.Results[0].Record.CaseID != "Crl.MC.No. 6 of 2014" {
		t.Fatalf("unexpected results: %#v", got.Results)
	}
	if got.Results[0].Similarity != Similarity(1.9) {
		t.Fatalf("similarity not derived: %v", got.Results[0].Similarity)
	}
}

func TestRankExactIDReturnsFirstOfDuplicates(t *testing.T) {
	first := candidate("CRL.MC NO. 6 OF 2014", 0.9)
	first.Record.DocumentID = "first"
	second := candidate("crl.mc no.6 of 2014", 0.1)
	second.Record.DocumentID = "second"

	got := New().Rank("CRL.MC NO. 6 of 2014", []domain.QueryResult{first, second})
	if len(got.Results) != 1 || got.Results[0].Record.DocumentID != "first" {
		t.Fatalf("expected first arriving match, got %#v", got.Results)
	}
}

func TestRankExactIDMissFallsThrough(t *testing.T) {
	candidates := []domain.QueryResult{
		candidate("Crl.MC.No. 1 of 2015", 0.8),
		candidate("Crl.MC.No. 2 of 2016", 0.2),
	}

	got := New().Rank("what happened in Crl.MC.No. 99 of 2020", candidates)
	if got.Path != domain.RankPathSimilarity {
		t.Fatalf("expected similarity path, got %s", got.Path)
	}
	if got.Results[0].Record.CaseID != "Crl.MC.No. 2 of 2016" {
		t.Fatalf("unexpected order: %#v", got.Results)
	}
}

func TestRankSectionIntentFiltersCandidates(t *testing.T) {
	matching := func(id string, d float64) domain.QueryResult {
		c := candidate(id, d)
		c.Record.Sections = []string{"498A", "406"}
		return c
	}
	candidates := []domain.QueryResult{
		candidate("close-but-wrong", 0.01),
		matching("m1", 0.5),
		candidate("other", 0.2),
		matching("m2", 0.9),
		matching("m3", 1.0),
		matching("m4", 1.1),
		matching("m5", 1.2),
		matching("m6", 1.3),
	}

	got := New().Rank("cases under Section 498A", candidates)

	if got.Path != domain.RankPathHeuristic || got.Intent != "section" {
		t.Fatalf("expected section heuristic, got %s/%s", got.Path, got.Intent)
	}
	if len(got.Results) != DefaultHeuristicLimit {
		t.Fatalf("expected %d results, got %d", DefaultHeuristicLimit, len(got.Results))
	}
	for i, want := range []string{"m1", "m2", "m3", "m4", "m5"} {
		if got.Results[i].Record.CaseID != want {
			t.Fatalf("result %d = %s, want %s", i, got.Results[i].Record.CaseID, want)
		}
	}
}

func TestRankQuashedInYearIntent(t *testing.T) {
	quashed := candidate("q", 1.5)
	quashed.Record.Date = "12TH DAY OF MARCH, 2015"
	quashed.Record.Outcome = "the proceedings are quashed"
	wrongYear := candidate("y", 0.1)
	wrongYear.Record.Date = "1ST DAY OF MAY, 2016"
	wrongYear.Record.Outcome = "quashed"

	got := New().Rank("which cases were quashed in 2015", []domain.QueryResult{wrongYear, quashed})
	if got.Path != domain.RankPathHeuristic || len(got.Results) != 1 || got.Results[0].Record.CaseID != "q" {
		t.Fatalf("unexpected ranking: %#v", got)
	}
}

func TestRankIntentWithoutMatchesFallsToSimilarity(t *testing.T) {
	kerala := candidate("k", 0.4)
	kerala.Record.Court = "HIGH COURT OF KERALA"
	kerala.Record.Date = "2ND DAY OF JANUARY, 2014"

	got := New().Rank("2024 judgments of the high court of kerala", []domain.QueryResult{kerala})
	if got.Path != domain.RankPathSimilarity {
		t.Fatalf("expected similarity fallback, got %s", got.Path)
	}
}

func TestRankCourtInYearIntent(t *testing.T) {
	match := candidate("match", 1.4)
	match.Record.Court = "HIGH COURT OF KERALA AT ERNAKULAM"
	match.Record.Date = "5TH DAY OF FEBRUARY, 2024"
	wrongYear := candidate("wrong-year", 0.05)
	wrongYear.Record.Court = "HIGH COURT OF KERALA AT ERNAKULAM"
	wrongYear.Record.Date = "2ND DAY OF JANUARY, 2014"
	wrongCourt := candidate("wrong-court", 0.1)
	wrongCourt.Record.Court = "HIGH COURT OF MADRAS"
	wrongCourt.Record.Date = "9TH DAY OF JULY, 2024"

	got := New().Rank("2024 judgments of the high court of kerala", []domain.QueryResult{wrongYear, wrongCourt, match})

	if got.Path != domain.RankPathHeuristic || got.Intent != "court_in_year" {
		t.Fatalf("expected court_in_year heuristic, got %s/%s", got.Path, got.Intent)
	}
	if len(got.Results) != 1 || got.Results[0].Record.CaseID != "match" {
		t.Fatalf("unexpected results: %#v", got.Results)
	}
}

func TestRankIntentsAreMutuallyExclusive(t *testing.T) {
	sectionOnly := candidate("s", 0.3)
	sectionOnly.Record.Sections = []string{"498A"}

	// Query matches the quashed intent first; its empty filter must not hand over to the section intent.
	got := New().Rank("section 498a cases quashed in 2015", []domain.QueryResult{sectionOnly})
	if got.Path != domain.RankPathSimilarity {
		t.Fatalf("expected similarity path, got %s (%s)", got.Path, got.Intent)
	}
}

func TestRankSimilarityFallbackOrdering(t *testing.T) {
	candidates := []domain.QueryResult{
		candidate("d08", 0.8),
		candidate("d19", 1.9),
		candidate("d02", 0.2),
		candidate("d14", 1.4),
	}

	got := New().Rank("tell me about cheque bounce cases", candidates)

	if got.Path != domain.RankPathSimilarity {
		t.Fatalf("expected similarity path, got %s", got.Path)
	}
	want := []string{"d02", "d08", "d14"}
	if len(got.Results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got.Results))
	}
	for i := range want {
		if got.Results[i].Record.CaseID != want[i] {
			t.Fatalf("result %d = %s, want %s", i, got.Results[i].Record.CaseID, want[i])
		}
	}
	if math.Abs(got.Results[0].Similarity-0.9) > 1e-9 {
		t.Fatalf("similarity = %v, want 0.9", got.Results[0].Similarity)
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	got := New().Rank("anything", nil)
	if got.Path != domain.RankPathNone || len(got.Results) != 0 {
		t.Fatalf("unexpected ranking: %#v", got)
	}
}
