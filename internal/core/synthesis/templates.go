package synthesis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

var queryYear = regexp.MustCompile(`\b(20\d{2})\b`)

const generationErrorPrefix = "I had trouble generating a response. "

func apology(query string) string {
	return fmt.Sprintf("Sorry, I couldn't find any details for '%s' in the database. Please check the case ID or try a different question.", query)
}

// templateAnswer picks a deterministic answer by query keyword: outcome, judge, a year, or generic.
func templateAnswer(query string, shortlist []domain.QueryResult) string {
	top := shortlist[0].Record
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "outcome"):
		return fmt.Sprintf("The outcome of %s was that it was %s on %s at %s, presided over by %s.",
			top.CaseID, orUnknown(top.Outcome), orUnknown(top.Date), orUnknown(top.Court), orUnknown(top.Judge))
	case strings.Contains(q, "judge"):
		return fmt.Sprintf("The judge for %s was %s in a case decided on %s at %s.",
			top.CaseID, orUnknown(top.Judge), orUnknown(top.Date), orUnknown(top.Court))
	}

	if m := queryYear.FindStringSubmatch(query); m != nil {
		return yearAnswer(m[1], shortlist)
	}
	return genericAnswer(top)
}

func yearAnswer(year string, shortlist []domain.QueryResult) string {
	var found []string
	for _, r := range shortlist {
		if strings.Contains(r.Record.Date, year) {
			found = append(found, fmt.Sprintf("%s was %s by %s", r.Record.CaseID, orUnknown(r.Record.Outcome), orUnknown(r.Record.Judge)))
		}
	}
	if len(found) == 0 {
		return fmt.Sprintf("I couldn't find cases from %s matching your query.", year)
	}
	return fmt.Sprintf("In %s, I found: %s.", year, strings.Join(found, ", "))
}

func genericAnswer(rec domain.CaseRecord) string {
	return fmt.Sprintf("For %s, the outcome was %s on %s at %s with %s presiding.",
		rec.CaseID, orUnknown(rec.Outcome), orUnknown(rec.Date), orUnknown(rec.Court), orUnknown(rec.Judge))
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}
