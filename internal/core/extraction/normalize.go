// Package extraction turns raw OCR text of a judgment into a CaseRecord.
package extraction

import "strings"

// Normalize produces canonical text: printable ASCII only, whitespace runs collapsed to one space, ends trimmed.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	pendingSpace := false
	for _, r := range raw {
		switch {
		case isSpace(r):
			pendingSpace = b.Len() > 0
		case r >= 0x20 && r <= 0x7e:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeLines applies the same character filter per line and keeps line structure,
// squeezing consecutive blank lines into one.
func NormalizeLines(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	raw = strings.ReplaceAll(raw, "\f", "\n\n")

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = Normalize(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}
