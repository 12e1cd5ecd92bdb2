package extraction

import (
	"context"
	"log/slog"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
)

const (
	FieldCaseID      = "case_id"
	FieldCourt       = "court"
	FieldDate        = "date"
	FieldJudge       = "judge"
	FieldPetitioners = "petitioners"
	FieldRespondents = "respondents"
	FieldSections    = "sections"
	FieldOutcome     = "outcome"
)

const gapPrefixLen = 50

// Extractor resolves CaseRecord fields from judgment text. It never fails:
// unresolved fields stay empty and are reported as gaps.
type Extractor struct {
	recognizer ports.EntityRecognizer
	logger     *slog.Logger
}

// NewExtractor builds an extractor. recognizer may be nil to disable the entity fallback.
func NewExtractor(recognizer ports.EntityRecognizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{recognizer: recognizer, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, documentID, raw string) (domain.CaseRecord, domain.ExtractionReport) {
	in := Input{
		Text:  Normalize(raw),
		Lines: NormalizeLines(raw),
	}

	rec := resolve(in)
	if e.recognizer != nil && in.Text != "" && needsEntities(rec) {
		entities, err := e.recognizer.Recognize(ctx, in.Text)
		if err != nil {
			e.logger.Warn("entity_recognition_failed", "document_id", documentID, "error", err)
		} else if len(entities) > 0 {
			in.Entities = entities
			rec = resolve(in)
		}
	}

	rec.DocumentID = documentID
	rec.FullText = in.Text

	report := domain.ExtractionReport{Gaps: gaps(rec)}
	if rec.Judge == "" {
		rec.Judge = domain.JudgeNotSpecified
	}
	for _, field := range report.Gaps {
		e.logger.Warn("extraction_gap",
			"document_id", documentID,
			"field", field,
			"text_prefix", prefix(in.Text, gapPrefixLen),
		)
	}
	return rec, report
}

func resolve(in Input) domain.CaseRecord {
	return domain.CaseRecord{
		CaseID:      firstNonEmpty(in, caseIDChain),
		Court:       firstNonEmpty(in, courtChain),
		Date:        firstNonEmpty(in, dateChain),
		Judge:       firstNonEmpty(in, judgeChain),
		Petitioners: firstNonEmptyList(in, petitionerChain),
		Respondents: firstNonEmptyList(in, respondentChain),
		Sections:    firstNonEmptyList(in, sectionChain),
		Outcome:     firstNonEmpty(in, outcomeChain),
	}
}

// needsEntities reports whether a field with an entity strategy is still empty.
func needsEntities(rec domain.CaseRecord) bool {
	return rec.Court == "" || rec.Date == "" || rec.Judge == "" ||
		len(rec.Petitioners) == 0 || len(rec.Respondents) == 0
}

func gaps(rec domain.CaseRecord) []string {
	var out []string
	check := func(field string, empty bool) {
		if empty {
			out = append(out, field)
		}
	}
	check(FieldCaseID, rec.CaseID == "")
	check(FieldCourt, rec.Court == "")
	check(FieldDate, rec.Date == "")
	check(FieldJudge, rec.Judge == "")
	check(FieldPetitioners, len(rec.Petitioners) == 0)
	check(FieldRespondents, len(rec.Respondents) == 0)
	check(FieldSections, len(rec.Sections) == 0)
	check(FieldOutcome, rec.Outcome == "")
	return out
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
