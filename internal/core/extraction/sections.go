package extraction

import (
	"regexp"
	"sort"
	"strings"
)

var (
	sectionsComposite = regexp.MustCompile(`(?i)\bsections?\s+(\d+[A-Z]?(?:\s*\(\s*\d+\s*\))?(?:\s*(?:,|\band\b|&)\s*\d+[A-Z]?(?:\s*\(\s*\d+\s*\))?)*(?:\s*(?:r/w|read\s+with)\s+(?:sections?\s+)?\d+[A-Z]?(?:\s*\(\s*\d+\s*\))?)?)`)
	sectionsShort     = regexp.MustCompile(`(?i)\bu/s\.?\s*(\d+[A-Z]?(?:\s*\(\s*\d+\s*\))?)`)

	sectionSeparator = regexp.MustCompile(`(?i)\s*(?:,|\band\b|&)\s*`)
	readWithClause   = regexp.MustCompile(`(?i)\s*(?:r\s*/\s*w|read\s*with).*$`)
	numericLeading   = regexp.MustCompile(`^\d+`)
	bareYear         = regexp.MustCompile(`^\d{4}$`)
	citationShape    = regexp.MustCompile(`^\d{4}/[A-Z]+/\d+$`)
)

var sectionChain = []ListStrategy{
	sectionMentions(sectionsComposite),
	sectionMentions(sectionsShort),
}

// sectionMentions splits every composite mention into atomic tokens.
// Parts carrying a read-with clause stay whole until NormalizeSections trims them.
func sectionMentions(re *regexp.Regexp) ListStrategy {
	return func(in Input) []string {
		var tokens []string
		for _, m := range re.FindAllStringSubmatch(in.Text, -1) {
			for _, part := range splitSectionList(m[1]) {
				if readWithClause.MatchString(part) {
					tokens = append(tokens, part)
					continue
				}
				for _, tok := range strings.Fields(part) {
					if numericLeading.MatchString(tok) {
						tokens = append(tokens, tok)
					}
				}
			}
		}
		return NormalizeSections(tokens)
	}
}

// splitSectionList splits on separators outside the read-with tail.
func splitSectionList(s string) []string {
	head, tail := s, ""
	if loc := readWithClause.FindStringIndex(s); loc != nil {
		head, tail = s[:loc[0]], s[loc[0]:]
	}
	parts := sectionSeparator.Split(strings.TrimSpace(head), -1)
	if tail != "" && len(parts) > 0 {
		parts[len(parts)-1] += tail
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeSections strips read-with clauses, drops years and citation-shaped tokens,
// uppercases, removes duplicates and sorts. Applying it twice changes nothing.
func NormalizeSections(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = readWithClause.ReplaceAllString(tok, "")
		tok = strings.ToUpper(strings.Join(strings.Fields(tok), ""))
		if tok == "" || bareYear.MatchString(tok) || citationShape.MatchString(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
