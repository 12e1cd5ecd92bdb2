package synthesis

import (
	"fmt"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

const persona = "System: You are a legal assistant providing detailed, human-like answers about court cases. " +
	"Focus on the user's query intent (e.g., 'outcome' for case results, 'judge' for judge details). " +
	"Use all available context (case ID, court, date, judge, sections, outcome and full text) to craft a natural, accurate response. " +
	"If an exact case ID is asked, prioritize that case's details. Avoid technical jargon and invented info."

func buildPrompt(query string, shortlist []domain.QueryResult, snippetLen int) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\nUser Query: ")
	b.WriteString(query)
	b.WriteString("\nContext:\n")
	for i, r := range shortlist {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(contextLine(r.Record, snippetLen))
	}
	b.WriteString("\nResponse:")
	return b.String()
}

func contextLine(rec domain.CaseRecord, snippetLen int) string {
	return fmt.Sprintf(
		"Case ID: %s | Court: %s | Date: %s | Judge: %s | Sections: %s | Outcome: %s | Full Text Snippet: %s...",
		rec.CaseID,
		rec.Court,
		rec.Date,
		rec.Judge,
		strings.Join(rec.Sections, ", "),
		rec.Outcome,
		snippet(rec.FullText, snippetLen),
	)
}

func snippet(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	return text[:n]
}

// postProcess drops an echoed prompt and keeps the first paragraph only.
func postProcess(prompt, raw string) string {
	out := strings.TrimPrefix(raw, prompt)
	out = strings.TrimSpace(out)
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		out = out[:idx]
	}
	return strings.TrimSpace(out)
}
