// Package synthesis turns a ranked shortlist into a single-paragraph answer.
//
// Generated text is only returned when it passes a quality gate; every other path ends in a
// deterministic template built from the shortlisted records.
package synthesis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
)

type Config struct {
	MaxNewTokens    int
	Temperature     float64
	SampleCount     int
	Timeout         time.Duration
	MinAnswerLength int
	SnippetLength   int
}

func DefaultConfig() Config {
	return Config{
		MaxNewTokens:    150,
		Temperature:     0.7,
		SampleCount:     1,
		Timeout:         60 * time.Second,
		MinAnswerLength: 20,
		SnippetLength:   200,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.MaxNewTokens <= 0 {
		c.MaxNewTokens = def.MaxNewTokens
	}
	if c.Temperature < 0 {
		c.Temperature = def.Temperature
	}
	if c.SampleCount <= 0 {
		c.SampleCount = def.SampleCount
	}
	if c.MinAnswerLength <= 0 {
		c.MinAnswerLength = def.MinAnswerLength
	}
	if c.SnippetLength <= 0 {
		c.SnippetLength = def.SnippetLength
	}
	return c
}

type Synthesizer struct {
	generator ports.TextGenerator
	cfg       Config
	logger    *slog.Logger
}

// New builds a synthesizer. A nil generator makes every non-empty shortlist use the templates.
func New(generator ports.TextGenerator, cfg Config, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		generator: generator,
		cfg:       cfg.normalize(),
		logger:    logger,
	}
}

// Synthesize never fails: generator errors and rejected generations fall back to templates.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, ranking domain.Ranking) domain.Answer {
	answer := domain.Answer{
		Query:     query,
		Path:      ranking.Path,
		Intent:    ranking.Intent,
		Shortlist: ranking.Results,
	}
	if answer.Shortlist == nil {
		answer.Shortlist = []domain.QueryResult{}
	}

	if len(ranking.Results) == 0 {
		answer.Text = apology(query)
		answer.Outcome = domain.OutcomeApology
		return answer
	}

	if s.generator == nil {
		answer.Text = templateAnswer(query, ranking.Results)
		answer.Outcome = domain.OutcomeTemplated
		return answer
	}

	prompt := buildPrompt(query, ranking.Results, s.cfg.SnippetLength)
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generation_failed", "error", err, "shortlist", len(ranking.Results))
		answer.Text = generationErrorPrefix + genericAnswer(ranking.Results[0].Record)
		answer.Outcome = domain.OutcomeGenerationFailed
		return answer
	}

	text := postProcess(prompt, raw)
	if !s.acceptable(text, ranking.Results) {
		s.logger.Info("generation_rejected", "length", len(text), "path", string(ranking.Path))
		answer.Text = templateAnswer(query, ranking.Results)
		answer.Outcome = domain.OutcomeTemplated
		return answer
	}

	answer.Text = text
	answer.Outcome = domain.OutcomeAccepted
	return answer
}

func (s *Synthesizer) generate(ctx context.Context, prompt string) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	raw, err := s.generator.Generate(ctx, prompt, domain.GenerationParams{
		MaxNewTokens: s.cfg.MaxNewTokens,
		Temperature:  s.cfg.Temperature,
		SampleCount:  s.cfg.SampleCount,
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrGenerationFailure, "generate answer", err)
	}
	return raw, nil
}

// acceptable is the quality gate: long enough and naming at least one shortlisted case id verbatim.
func (s *Synthesizer) acceptable(text string, shortlist []domain.QueryResult) bool {
	if len(text) < s.cfg.MinAnswerLength {
		return false
	}
	for _, r := range shortlist {
		if r.Record.CaseID != "" && strings.Contains(text, r.Record.CaseID) {
			return true
		}
	}
	return false
}
