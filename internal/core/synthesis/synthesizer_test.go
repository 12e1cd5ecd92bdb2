package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

type generatorFake struct {
	response string
	err      error
	calls    int
	prompt   string
	params   domain.GenerationParams
	deadline bool
}

func (f *generatorFake) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	f.calls++
	f.prompt = prompt
	f.params = params
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func shortlist() domain.Ranking {
	return domain.Ranking{
		Path: domain.RankPathExactID,
		Results: []domain.QueryResult{{
			Record: domain.CaseRecord{
				CaseID:   "Crl.MC.No. 6 of 2014",
				Court:    "HIGH COURT OF KERALA",
				Date:     "2ND DAY OF JANUARY, 2014",
				Judge:    "A. BADHARUDEEN",
				Sections: []string{"406", "482"},
				Outcome:  "In the result, the petition is allowed.",
				FullText: strings.Repeat("x", 300),
			},
			Distance:   0.2,
			Similarity: 0.9,
		}},
	}
}

func TestSynthesizeEmptyShortlistApologizes(t *testing.T) {
	gen := &generatorFake{}
	answer := New(gen, DefaultConfig(), nil).Synthesize(context.Background(), "who won?", domain.Ranking{Path: domain.RankPathNone})

	if answer.Outcome != domain.OutcomeApology {
		t.Fatalf("expected apology outcome, got %s", answer.Outcome)
	}
	if !strings.Contains(answer.Text, "'who won?'") {
		t.Fatalf("apology should name the query: %q", answer.Text)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not run for empty shortlist")
	}
	if answer.Shortlist == nil {
		t.Fatalf("shortlist should be an empty slice")
	}
}

func TestSynthesizeAcceptsGroundedAnswer(t *testing.T) {
	gen := &generatorFake{}
	s := New(gen, DefaultConfig(), nil)
	gen.response = "The petition in Crl.MC.No. 6 of 2014 was allowed by the High Court.\nExtra paragraph."

	answer := s.Synthesize(context.Background(), "what happened?", shortlist())

	if answer.Outcome != domain.OutcomeAccepted {
		t.Fatalf("expected accepted, got %s (%q)", answer.Outcome, answer.Text)
	}
	if answer.Text != "The petition in Crl.MC.No. 6 of 2014 was allowed by the High Court." {
		t.Fatalf("unexpected text: %q", answer.Text)
	}
	if gen.params.MaxNewTokens != 150 || gen.params.Temperature != 0.7 || gen.params.SampleCount != 1 {
		t.Fatalf("unexpected params: %#v", gen.params)
	}
	if !gen.deadline {
		t.Fatalf("generation should run under a timeout")
	}
	if !strings.Contains(gen.prompt, "User Query: what happened?") ||
		!strings.Contains(gen.prompt, "Sections: 406, 482") ||
		!strings.Contains(gen.prompt, "Full Text Snippet: "+strings.Repeat("x", 200)+"...") ||
		!strings.HasSuffix(gen.prompt, "Response:") {
		t.Fatalf("unexpected prompt: %s", gen.prompt)
	}
}

func TestSynthesizeStripsEchoedPrompt(t *testing.T) {
	gen := &generatorFake{}
	ranking := shortlist()
	prompt := buildPrompt("q", ranking.Results, 200)
	gen.response = prompt + " Crl.MC.No. 6 of 2014 was allowed on 2 January 2014."

	answer := New(gen, DefaultConfig(), nil).Synthesize(context.Background(), "q", ranking)
	if answer.Text != "Crl.MC.No. 6 of 2014 was allowed on 2 January 2014." {
		t.Fatalf("unexpected text: %q", answer.Text)
	}
}

func TestSynthesizeQualityGate(t *testing.T) {
	tests := []struct {
		name     string
		response string
		query    string
		want     string
	}{
		{
			name:     "too short",
			response: "Allowed.",
			query:    "what is the outcome of case id Crl.MC.No.6 OF 2014",
			want:     "The outcome of Crl.MC.No. 6 of 2014 was that it was In the result, the petition is allowed. on 2ND DAY OF JANUARY, 2014 at HIGH COURT OF KERALA, presided over by A. BADHARUDEEN.",
		},
		{
			name:     "no case id",
			response: "The court allowed the petition after hearing both sides.",
			query:    "who was the judge",
			want:     "The judge for Crl.MC.No. 6 of 2014 was A. BADHARUDEEN in a case decided on 2ND DAY OF JANUARY, 2014 at HIGH COURT OF KERALA.",
		},
		{
			name:     "year found",
			response: "",
			query:    "cases in 2014",
			want:     "In 2014, I found: Crl.MC.No. 6 of 2014 was In the result, the petition is allowed. by A. BADHARUDEEN.",
		},
		{
			name:     "year missing",
			response: "",
			query:    "cases in 2020",
			want:     "I couldn't find cases from 2020 matching your query.",
		},
		{
			name:     "generic",
			response: "nothing useful here at all",
			query:    "tell me something",
			want:     "For Crl.MC.No. 6 of 2014, the outcome was In the result, the petition is allowed. on 2ND DAY OF JANUARY, 2014 at HIGH COURT OF KERALA with A. BADHARUDEEN presiding.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &generatorFake{response: tt.response}
			answer := New(gen, DefaultConfig(), nil).Synthesize(context.Background(), tt.query, shortlist())
			if answer.Outcome != domain.OutcomeTemplated {
				t.Fatalf("expected templated, got %s", answer.Outcome)
			}
			if answer.Text != tt.want {
				t.Fatalf("text = %q, want %q", answer.Text, tt.want)
			}
		})
	}
}

func TestSynthesizeGeneratorErrorFallsBack(t *testing.T) {
	gen := &generatorFake{err: errors.New("connection refused to 10.0.0.5")}
	answer := New(gen, DefaultConfig(), nil).Synthesize(context.Background(), "outcome?", shortlist())

	if answer.Outcome != domain.OutcomeGenerationFailed {
		t.Fatalf("expected generation_failed, got %s", answer.Outcome)
	}
	if !strings.HasPrefix(answer.Text, generationErrorPrefix) || !strings.Contains(answer.Text, "Crl.MC.No. 6 of 2014") {
		t.Fatalf("unexpected text: %q", answer.Text)
	}
	if strings.Contains(answer.Text, "connection refused") {
		t.Fatalf("error detail leaked to answer: %q", answer.Text)
	}
}

func TestSynthesizeTimeoutCountsAsGenerationFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = time.Millisecond
	gen := &blockingGenerator{}
	answer := New(gen, cfg, nil).Synthesize(context.Background(), "q", shortlist())
	if answer.Outcome != domain.OutcomeGenerationFailed {
		t.Fatalf("expected generation_failed, got %s", answer.Outcome)
	}
}

type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string, _ domain.GenerationParams) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestSynthesizeWithoutGeneratorUsesTemplates(t *testing.T) {
	answer := New(nil, DefaultConfig(), nil).Synthesize(context.Background(), "judge?", shortlist())
	if answer.Outcome != domain.OutcomeTemplated || !strings.HasPrefix(answer.Text, "The judge for") {
		t.Fatalf("unexpected answer: %#v", answer)
	}
	if answer.Path != domain.RankPathExactID || len(answer.Shortlist) != 1 {
		t.Fatalf("ranking details not carried: %#v", answer)
	}
}
