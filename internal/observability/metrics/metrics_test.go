package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/v1/documents/abc-123": "/v1/documents/{document_id}",
		"/v1/cases/query":       "/v1/cases/query",
		"/v1/cases/export.xlsx": "/v1/cases/export.xlsx",
		"/v1/cases/doc-42":      "/v1/cases/{document_id}",
		"/healthz":              "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecordQueryLabelsPathAndOutcome(t *testing.T) {
	m := NewHTTPServerMetrics("judgment-api")
	m.RecordQuery("judgment-api", domain.Answer{
		Path:      domain.RankPathHeuristic,
		Outcome:   domain.OutcomeAccepted,
		Shortlist: []domain.QueryResult{{}, {}},
	}, 120*time.Millisecond)
	m.RecordQuery("judgment-api", domain.Answer{}, time.Millisecond)

	if got := testutil.ToFloat64(m.queryTotal.WithLabelValues("judgment-api", "heuristic", "accepted")); got != 1 {
		t.Fatalf("expected one heuristic/accepted query, got %v", got)
	}
	if got := testutil.ToFloat64(m.queryTotal.WithLabelValues("judgment-api", "none", "unknown")); got != 1 {
		t.Fatalf("expected empty answer to fall back to none/unknown, got %v", got)
	}
}

func TestMiddlewareCountsNormalizedPath(t *testing.T) {
	m := NewHTTPServerMetrics("judgment-api")
	handler := m.Middleware("judgment-api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/cases/doc-1", nil))

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("judgment-api", http.MethodGet, "/v1/cases/{document_id}", "404"))
	if got != 1 {
		t.Fatalf("expected one 404 request, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "judgment_http_requests_total") {
		t.Fatalf("expected judgment namespace in exposition")
	}
}

func TestWorkerMetricsObserveExtractionAndBreaker(t *testing.T) {
	m := NewWorkerMetrics("judgment-worker")
	m.ObserveExtraction("judgment-worker", domain.ExtractionReport{Gaps: []string{"judge", "date"}})
	m.ObserveExtraction("judgment-worker", domain.ExtractionReport{Gaps: []string{"judge"}})
	m.ObserveSourceMethod("judgment-worker", "")
	m.BreakerObserver("judgment-worker")("ollama.embed", "closed", "open")

	if got := testutil.ToFloat64(m.extractionGaps.WithLabelValues("judgment-worker", "judge")); got != 2 {
		t.Fatalf("expected two judge gaps, got %v", got)
	}
	if got := testutil.ToFloat64(m.sourceMethods.WithLabelValues("judgment-worker", "unknown")); got != 1 {
		t.Fatalf("expected unknown method counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.breakerTransits.WithLabelValues("judgment-worker", "ollama.embed", "closed", "open")); got != 1 {
		t.Fatalf("expected one breaker transition, got %v", got)
	}
}

func TestFinishDocumentStatus(t *testing.T) {
	m := NewWorkerMetrics("judgment-worker")
	m.StartDocument()
	m.FinishDocument("judgment-worker", time.Second, nil)
	m.ObserveQueueLag("judgment-worker", -time.Second)

	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("judgment-worker", "success")); got != 1 {
		t.Fatalf("expected one success, got %v", got)
	}
	if got := testutil.ToFloat64(m.processInFlight); got != 0 {
		t.Fatalf("expected in-flight back to zero, got %v", got)
	}
}
