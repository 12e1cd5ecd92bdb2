package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

var (
	transient = resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	permanent = resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	ignored   = resilience.ErrorClassification{}
)

func classifyOllamaError(err error) resilience.ErrorClassification {
	var statusErr *HTTPStatusError
	var netErr net.Error

	switch {
	case err == nil:
		return ignored
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ignored
	case resilience.IsCircuitOpen(err):
		return transient
	case errors.As(err, &statusErr):
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return transient
		}
		// 4xx means a bad request or a missing model; it says nothing about Ollama health.
		return ignored
	case errors.As(err, &netErr):
		return transient
	default:
		return permanent
	}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyOllamaError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
