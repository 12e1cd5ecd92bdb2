package extraction

import (
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

func courtFromEntities(in Input) string {
	for _, ent := range in.Entities {
		if ent.Label == domain.EntityOrg && strings.Contains(strings.ToLower(ent.Text), "court") {
			return upperCollapsed(ent.Text)
		}
	}
	return ""
}

func dateFromEntities(in Input) string {
	for _, ent := range in.Entities {
		if ent.Label == domain.EntityDate && strings.TrimSpace(ent.Text) != "" {
			return cleanDate(ent.Text)
		}
	}
	return ""
}

// personFollowedBy accepts the first PERSON whose next token in the text contains keyword.
func personFollowedBy(keyword string, clean func(string) string) Strategy {
	return func(in Input) string {
		for _, ent := range in.Entities {
			if ent.Label != domain.EntityPerson {
				continue
			}
			if strings.Contains(nextToken(in.Text, ent.Text), keyword) {
				return clean(ent.Text)
			}
		}
		return ""
	}
}

func personsFollowedBy(keyword string) ListStrategy {
	return func(in Input) []string {
		var names []string
		for _, ent := range in.Entities {
			if ent.Label != domain.EntityPerson {
				continue
			}
			if !strings.Contains(nextToken(in.Text, ent.Text), keyword) {
				continue
			}
			if name := partyLineName(ent.Text); name != "" {
				names = append(names, name)
			}
		}
		return dedupe(names)
	}
}

// nextToken returns the lowercased token right after the first occurrence of phrase,
// skipping separating punctuation.
func nextToken(text, phrase string) string {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return ""
	}
	lower := strings.ToLower(text)
	needle := strings.ToLower(phrase)
	idx := strings.Index(lower, needle)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(lower[idx+len(needle):], " ,;:-")
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
