// Package plaintext decodes judgments that were stored as UTF-8 text.
package plaintext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

const Method = "plain-text"

// Extract treats form feeds as page breaks.
func Extract(raw []byte) (domain.SourceText, error) {
	if !utf8.Valid(raw) {
		return domain.SourceText{}, fmt.Errorf("text source is not valid UTF-8")
	}
	text := strings.TrimSpace(string(raw))
	pages := 0
	if text != "" {
		pages = 1 + strings.Count(text, "\f")
	}
	return domain.SourceText{Text: text, Pages: pages, Method: Method}, nil
}
