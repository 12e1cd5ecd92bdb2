package extraction

import (
	"regexp"
	"strings"
)

var (
	caseIDPrimary   = regexp.MustCompile(`Crl\.MC\.No\.\s*\d+\s*of\s*\d+(?:\s*\([^)]{0,12}\))?`)
	caseIDSecondary = regexp.MustCompile(`(?i)(?:Crl\.\s*M\.?C\.?\s*No\.|W\.P\.\s*\(\s*C(?:rl)?\.?\s*\)\s*No\.|W\.P\.(?:\s*No\.)?|\bSC\b|\bCC\b)\s*\d+(?:\s*/\s*\d{2,4}|\s+of\s+\d{4})?`)

	courtHighCourt = regexp.MustCompile(`(?i)\bIN\s+THE\s+(HIGH\s+COURT\s+OF\s+[A-Z]+(?:\s+(?:PRADESH|AND\s+[A-Z]+))?(?:\s+AT\s+[A-Z]+)?)`)
	courtBareHigh  = regexp.MustCompile(`(?i)\b(HIGH\s+COURT\s+OF\s+[A-Z]+(?:\s+(?:PRADESH|AND\s+[A-Z]+))?(?:\s+AT\s+[A-Z]+)?)`)
	courtSupreme   = regexp.MustCompile(`(?i)\b(SUPREME\s+COURT\s+OF\s+INDIA)\b`)
	courtLower     = regexp.MustCompile(`(?i)\b((?:PRINCIPAL\s+|ADDITIONAL\s+)?(?:DISTRICT|SESSIONS|FAMILY|MAGISTRATE'?S?)\s+COURT(?:\s*,\s*[A-Z]+)?)`)

	dateDatedThis = regexp.MustCompile(`(?i)Dated\s+this\s+the\s+(\d{1,2}(?:ST|ND|RD|TH)?\s+DAY\s+OF\s+[A-Z]+\s*,?\s*\d{4})`)
	dateDayOf     = regexp.MustCompile(`(?i)\b(\d{1,2}(?:ST|ND|RD|TH)?\s+DAY\s+OF\s+[A-Z]+\s*,?\s*\d{4})`)
	dateMonthName = regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(?:January|February|March|April|May|June|July|August|September|October|November|December)\s*,?\s*\d{4})\b`)
	dateNumeric   = regexp.MustCompile(`\b(\d{1,2}[./-]\d{1,2}[./-](?:19|20)\d{2})\b`)

	judgeSigned    = regexp.MustCompile(`(?:Sd/-)?\s*([A-Z][A-Z.-]*(?:\s[A-Z][A-Z.-]*){0,3})\s*,\s*JUDGE`)
	judgeTitled    = regexp.MustCompile(`(?:JUSTICE|Judge)\s+([A-Z][A-Z.-]*(?:\s[A-Z][A-Z.-]*){0,3})`)
	judgeSignature = regexp.MustCompile(`Sd/-\s*([A-Z][A-Z.-]*(?:\s[A-Z][A-Z.-]*){0,3})`)
	judgeHonorific = regexp.MustCompile(`(?i)(?:Justice|Honourable\s+Mr\.?|Mrs\.?)\s+[A-Za-z][A-Za-z.]*(?:\s[A-Za-z][A-Za-z.]*){0,2}`)

	outcomePrimary   = regexp.MustCompile(`(?i)(?:In\s+the\s+result,?|(?-i:\bORDER\b)|For\s+the\s+reasons|Accordingly,|Hence,)\s*(.{0,190}?\b(?:quashed|allowed|dismissed|disposed(?:\s+of)?|discharged|acquitted|convicted|granted|rejected|upheld|terminated|no\s+interference))\b`)
	outcomeTriggered = regexp.MustCompile(`(?i)(?:\bORDER\b|In\s+the\s+result)[\s\S]{0,1000}?([^.]{0,200}\b(?:quashed|allowed|dismissed|disposed\s+of|discharged|granted|rejected|upheld))\b`)
	outcomeSentence  = regexp.MustCompile(`(?i)([^.]{0,200}\b(?:is|are|stands|be)\s+(?:hereby\s+)?(?:quashed|allowed|dismissed|disposed\s+of|discharged|acquitted|granted|rejected|upheld))\b`)

	emptyParens   = regexp.MustCompile(`\s*\(\s*\)$`)
	spaceBeforeCm = regexp.MustCompile(`\s+,`)
)

const maxOutcomeLen = 200

var caseIDChain = []Strategy{
	match(caseIDPrimary, 0, cleanCaseID),
	match(caseIDSecondary, 0, cleanCaseID),
}

var courtChain = []Strategy{
	match(courtHighCourt, 1, upperCollapsed),
	match(courtBareHigh, 1, upperCollapsed),
	match(courtSupreme, 1, upperCollapsed),
	match(courtLower, 1, upperCollapsed),
	courtFromEntities,
}

var dateChain = []Strategy{
	match(dateDatedThis, 1, cleanDate),
	match(dateDayOf, 1, cleanDate),
	match(dateMonthName, 1, cleanDate),
	match(dateNumeric, 1, cleanDate),
	dateFromEntities,
}

var judgeChain = []Strategy{
	match(judgeSigned, 1, cleanName),
	match(judgeTitled, 1, cleanName),
	match(judgeSignature, 1, cleanName),
	match(judgeHonorific, 0, cleanName),
	personFollowedBy("judge", cleanName),
}

var outcomeChain = []Strategy{
	match(outcomePrimary, 1, cleanOutcome),
	match(outcomeTriggered, 1, cleanOutcome),
	match(outcomeSentence, 1, cleanOutcome),
}

func cleanCaseID(s string) string {
	return emptyParens.ReplaceAllString(collapseSpaces(s), "")
}

func cleanDate(s string) string {
	return spaceBeforeCm.ReplaceAllString(upperCollapsed(s), ",")
}

func cleanName(s string) string {
	return strings.Trim(collapseSpaces(s), " .,-")
}

func cleanOutcome(s string) string {
	s = strings.Trim(collapseSpaces(s), " ,;:")
	if len(s) > maxOutcomeLen {
		s = strings.TrimSpace(s[:maxOutcomeLen])
	}
	return s
}
