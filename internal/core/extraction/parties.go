package extraction

import (
	"regexp"
	"strings"
)

var (
	petitionerBlock = regexp.MustCompile(`(?s)PETITIONER(?:\(S\)|S)?[/:]?\s*-?\s*(.+?)(?:\n\n|\n(?:RESPONDENT|ORDER|BY ADV)|$)`)
	respondentBlock = regexp.MustCompile(`(?s)(?i:RESPONDENT(?:\(S\)|S)?)[/:]?\s*-?\s*(.+?)(?:\n\n|\n(?:ORDER|THIS|BY\s+PUBLIC\s+PROSECUTOR|BY)|$)`)

	partyBoilerplate = regexp.MustCompile(`(?i)(?:BY\s+ADV|\bSRI\.|\bSMT\.|\bPIN\b|PUBLIC\s+PROSECUTOR|\bCOURT\b|\bACCUSED\b|\bCOMPLAINANT\b|\bSTATE\b|\bPETITIONERS?\b|\bRESPONDENTS?\b)`)
	partyName        = regexp.MustCompile(`[A-Z][A-Za-z .-]+`)
)

var petitionerChain = []ListStrategy{
	partyBlock(petitionerBlock),
	personsFollowedBy("petitioner"),
}

var respondentChain = []ListStrategy{
	partyBlock(respondentBlock),
	personsFollowedBy("respondent"),
}

// partyBlock reads the lines under a role header up to the next section boundary.
func partyBlock(re *regexp.Regexp) ListStrategy {
	return func(in Input) []string {
		m := re.FindStringSubmatch(in.Lines)
		if len(m) < 2 {
			return nil
		}
		var names []string
		for _, line := range strings.Split(m[1], "\n") {
			if name := partyLineName(line); name != "" {
				names = append(names, name)
			}
		}
		return dedupe(names)
	}
}

func partyLineName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || partyBoilerplate.MatchString(line) {
		return ""
	}
	name := cleanName(partyName.FindString(line))
	if len(name) < 3 {
		return ""
	}
	return name
}
