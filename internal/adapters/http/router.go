package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/config"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
	"github.com/kirillkom/judgment-assistant/internal/observability/metrics"
)

const (
	serviceName = "judgment-api"
	xlsxMime    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Router struct {
	cfg     config.Config
	ingest  ports.DocumentIngestor
	query   ports.CaseQueryService
	docs    ports.DocumentReader
	cases   ports.CaseReader
	export  ports.CaseExportService
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
}

type Option func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	query ports.CaseQueryService,
	docs ports.DocumentReader,
	cases ports.CaseReader,
	export ports.CaseExportService,
	opts ...Option,
) *Router {
	rt := &Router{
		cfg:    cfg,
		ingest: ingest,
		query:  query,
		docs:   docs,
		cases:  cases,
		export: export,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Handler serves the API. Rate limiting and the in-flight gate apply to /v1 only.
func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	api.HandleFunc("POST /v1/cases/query", rt.queryCases)
	api.HandleFunc("GET /v1/cases/export.xlsx", rt.exportCases)
	api.HandleFunc("GET /v1/cases/{document_id}", rt.getCaseByDocumentID)

	var guarded http.Handler = api
	guarded = backpressureMiddleware(guarded, rt.cfg.APIBackpressureMaxInFlight, rt.cfg.APIBackpressureWait, rt.onOverload)
	guarded = rateLimitMiddleware(guarded, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onRateLimited)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("/v1/", guarded)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.ingest == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "ingestion is not configured"})
		return
	}
	if rt.cfg.APIMaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.APIMaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) queryCases(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	answer, err := rt.query.Ask(r.Context(), req.Query)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordQuery(serviceName, *answer, time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) getCaseByDocumentID(w http.ResponseWriter, r *http.Request) {
	rec, err := rt.cases.GetByDocumentID(r.Context(), r.PathValue("document_id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// exportCases buffers the workbook so a failure never leaves a half-written attachment.
func (rt *Router) exportCases(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := rt.export.ExportXLSX(r.Context(), &buf)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxMime)
	w.Header().Set("Content-Disposition", `attachment; filename="cases.xlsx"`)
	w.Header().Set("X-Case-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (rt *Router) onRateLimited() {
	if rt.metrics != nil {
		rt.metrics.RecordRateLimited(serviceName)
	}
}

func (rt *Router) onOverload() {
	if rt.metrics != nil {
		rt.metrics.RecordOverloaded(serviceName)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
