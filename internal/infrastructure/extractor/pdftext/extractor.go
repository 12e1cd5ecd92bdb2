// Package pdftext reads the embedded text layer of digital PDFs.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

const Method = "pdf-text"

// Extract returns the text layer page by page. Pages without content stay as empty
// entries so page numbering is preserved in warnings.
func Extract(data []byte) (out domain.SourceText, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			out = domain.SourceText{}
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.SourceText{}, fmt.Errorf("pdf reader: %w", err)
	}

	total := r.NumPage()
	pages := make([]string, 0, total)
	var warnings []string
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return domain.SourceText{
		Text:     joinPages(pages),
		Pages:    total,
		Method:   Method,
		Warnings: warnings,
	}, nil
}

func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, "\n\f\n")
}
