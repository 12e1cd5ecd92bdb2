// Package gemini implements the text generation collaborator on Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/resilience"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Generator struct {
	client   *genai.Client
	model    string
	executor *resilience.Executor
	// modelFor is replaced in tests.
	modelFor func(params domain.GenerationParams) contentGenerator
}

func New(ctx context.Context, apiKey, model string, executor *resilience.Executor) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g := &Generator{client: client, model: model, executor: executor}
	g.modelFor = g.configuredModel
	return g, nil
}

func (g *Generator) configuredModel(params domain.GenerationParams) contentGenerator {
	m := g.client.GenerativeModel(g.model)
	if params.MaxNewTokens > 0 {
		m.SetMaxOutputTokens(int32(params.MaxNewTokens))
	}
	if params.Temperature >= 0 {
		m.SetTemperature(float32(params.Temperature))
	}
	if params.SampleCount > 0 {
		m.SetCandidateCount(int32(params.SampleCount))
	}
	return m
}

// Generate returns the text of the first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	model := g.modelFor(params)
	resp, err := resilience.Do(ctx, g.executor, "gemini.generate", func(callCtx context.Context) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(callCtx, genai.Text(prompt))
	}, classifyGeminiError)
	if err != nil {
		if classifyGeminiError(err).Retryable {
			return "", domain.WrapError(domain.ErrTemporary, "gemini generate", err)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return firstCandidateText(resp)
}

func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini generate: no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", errors.New("gemini generate: empty candidate")
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func classifyGeminiError(err error) resilience.ErrorClassification {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if code, ok := httpStatus(err); ok {
		if code >= 500 || code == http.StatusTooManyRequests {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{}
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.GRPCStatus() != nil {
		switch apiErr.GRPCStatus().Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Internal, codes.Aborted:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

// httpStatus reports the HTTP status carried by a REST transport error.
func httpStatus(err error) (int, bool) {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code, true
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPCode() > 0 {
		return apiErr.HTTPCode(), true
	}
	return 0, false
}
