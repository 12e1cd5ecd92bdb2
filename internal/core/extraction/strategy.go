package extraction

import (
	"regexp"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

// Input is what every strategy sees for one document.
type Input struct {
	// Text is the canonical text.
	Text string
	// Lines keeps line breaks for block-shaped fields such as party lists.
	Lines    string
	Entities []domain.Entity
}

// Strategy resolves a single-valued field or returns "".
type Strategy func(Input) string

// ListStrategy resolves a multi-valued field or returns nil.
type ListStrategy func(Input) []string

func firstNonEmpty(in Input, chain []Strategy) string {
	for _, strategy := range chain {
		if v := strategy(in); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyList(in Input, chain []ListStrategy) []string {
	for _, strategy := range chain {
		if v := strategy(in); len(v) > 0 {
			return v
		}
	}
	return nil
}

// match returns capture group `group` (0 for the whole match) of the first match in canonical text.
func match(re *regexp.Regexp, group int, clean func(string) string) Strategy {
	return func(in Input) string {
		m := re.FindStringSubmatch(in.Text)
		if len(m) <= group {
			return ""
		}
		v := m[group]
		if clean != nil {
			v = clean(v)
		}
		return strings.TrimSpace(v)
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func upperCollapsed(s string) string {
	return strings.ToUpper(collapseSpaces(s))
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
