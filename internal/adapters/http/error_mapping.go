package httpadapter

import (
	"net/http"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrCaseNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrSourceUnavailable):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrIndexUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrGenerationFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
