package extraction

import (
	"regexp"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

const syntheticCaseIDPrefixLen = 10

var (
	placeholderCaseID = regexp.MustCompile(`(?i)^(?:unknown|none|n/?a|null)?$`)
	danglingCaseID    = regexp.MustCompile(`^[A-Za-z.]+\s*\d{4}/$`)
)

// FinalizeCaseID replaces an empty or placeholder case id with Unknown_<first 10 chars of document id>.
// It reports whether the id was replaced.
func FinalizeCaseID(rec *domain.CaseRecord) bool {
	id := strings.TrimSpace(rec.CaseID)
	if !placeholderCaseID.MatchString(id) && !danglingCaseID.MatchString(id) {
		rec.CaseID = id
		return false
	}
	rec.CaseID = SyntheticCaseID(rec.DocumentID)
	return true
}

func SyntheticCaseID(documentID string) string {
	src := documentID
	if len(src) > syntheticCaseIDPrefixLen {
		src = src[:syntheticCaseIDPrefixLen]
	}
	return "Unknown_" + src
}

// IsSyntheticCaseID reports whether id was produced by the fallback.
func IsSyntheticCaseID(id string) bool {
	return strings.HasPrefix(id, "Unknown_")
}

// EmbeddingText is the text embedded for a record. Date, sections and outcome are repeated
// so queries about them weigh more than the court and case id.
func EmbeddingText(rec domain.CaseRecord) string {
	sections := strings.Join(rec.Sections, " ")
	parts := []string{
		rec.Date, rec.Date,
		rec.Court,
		sections, sections,
		rec.Outcome, rec.Outcome,
		rec.CaseID,
	}
	return Normalize(strings.Join(parts, " "))
}
