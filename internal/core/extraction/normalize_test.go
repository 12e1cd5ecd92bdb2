package extraction

import (
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \n\t\r\f ", want: ""},
		{name: "collapses runs", in: "  IN THE\n\nHIGH   COURT\t", want: "IN THE HIGH COURT"},
		{name: "drops non ascii", in: "Kerala High “Court”\x00", want: "KeralaHigh Court"},
		{name: "removed chars between spaces", in: "a \x07 b", want: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Fatalf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeLinesKeepsBlockBoundaries(t *testing.T) {
	in := "\n\nPETITIONER:\r\n  RAJAN   K \n\n\n\nRESPONDENT:\fSTATE\n\n"
	want := "PETITIONER:\nRAJAN K\n\nRESPONDENT:\n\nSTATE"
	if got := NormalizeLines(in); got != want {
		t.Fatalf("NormalizeLines() = %q, want %q", got, want)
	}
}

func TestNormalizeSections(t *testing.T) {
	raw := []string{"498a", "406 r/w 34", "420 read with 120B", "2015", "2019/KER/1234", "482", " 482 ", "302 (1)"}
	got := NormalizeSections(raw)
	want := []string{"302(1)", "406", "420", "482", "498A"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSections() = %#v, want %#v", got, want)
	}
	if again := NormalizeSections(got); !reflect.DeepEqual(again, got) {
		t.Fatalf("NormalizeSections is not idempotent: %#v -> %#v", got, again)
	}
}

func TestNormalizeSectionsStripsSpacedReadWith(t *testing.T) {
	for _, raw := range []string{"406 r / w 34", "498A r/ w 34", "12 R /W 3", "420 read  with 120B"} {
		once := NormalizeSections([]string{raw})
		if len(once) != 1 || strings.Contains(once[0], "R/W") || strings.Contains(once[0], "WITH") {
			t.Fatalf("NormalizeSections(%q) = %#v", raw, once)
		}
		if twice := NormalizeSections(once); !reflect.DeepEqual(twice, once) {
			t.Fatalf("NormalizeSections is not idempotent for %q: %#v -> %#v", raw, once, twice)
		}
	}
}

func TestExtractedSectionsNeverContainYearsOrCitations(t *testing.T) {
	year := regexp.MustCompile(`^\d{4}$`)
	citation := regexp.MustCompile(`^\d{4}/[A-Z]+/\d+$`)
	texts := []string{
		"offences under Section 2014 and Section 498A IPC",
		"under Sections 1999, 302 and 34 read with Section 2001",
		"booked u/s 2020 and u/s 324",
	}
	for _, text := range texts {
		got := firstNonEmptyList(Input{Text: Normalize(text)}, sectionChain)
		for _, tok := range got {
			if year.MatchString(tok) || citation.MatchString(tok) {
				t.Fatalf("sections for %q contain %q", text, tok)
			}
		}
	}
}

func TestSectionMentionsSplitsCompositeLists(t *testing.T) {
	got := firstNonEmptyList(Input{Text: "charged under Sections 406, 420 and 468 read with Section 34 of IPC"}, sectionChain)
	want := []string{"406", "420", "468"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sections = %#v, want %#v", got, want)
	}

	short := firstNonEmptyList(Input{Text: "crime registered u/s 324 IPC"}, sectionChain)
	if !reflect.DeepEqual(short, []string{"324"}) {
		t.Fatalf("u/s sections = %#v", short)
	}
}
