package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrCaseNotFound     = errors.New("case not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")

	// ErrSourceUnavailable means no text could be produced for a source document.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrIndexUnavailable means the vector index or metadata store cannot serve queries.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrGenerationFailure is recorded when the text generator fails or times out.
	ErrGenerationFailure = errors.New("generation failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
