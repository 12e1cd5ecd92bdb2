package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

type modelFake struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *modelFake) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func newTestGenerator(model *modelFake, seen *domain.GenerationParams) *Generator {
	return &Generator{
		modelFor: func(params domain.GenerationParams) contentGenerator {
			*seen = params
			return model
		},
	}
}

func TestGenerateReturnsFirstCandidateText(t *testing.T) {
	model := &modelFake{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Crl.MC.No. 6 of 2014 "), genai.Text("was allowed. ")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}}
	var params domain.GenerationParams
	out, err := newTestGenerator(model, &params).Generate(context.Background(), "prompt", domain.GenerationParams{MaxNewTokens: 150, Temperature: 0.7, SampleCount: 1})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "Crl.MC.No. 6 of 2014 was allowed." {
		t.Fatalf("unexpected output %q", out)
	}
	if params.MaxNewTokens != 150 || len(model.parts) != 1 || model.parts[0] != genai.Text("prompt") {
		t.Fatalf("unexpected call: params=%+v parts=%v", params, model.parts)
	}
}

func TestGenerateWithoutCandidates(t *testing.T) {
	var params domain.GenerationParams
	_, err := newTestGenerator(&modelFake{resp: &genai.GenerateContentResponse{}}, &params).Generate(context.Background(), "p", params)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGenerateMarksUnavailableAsTemporary(t *testing.T) {
	var params domain.GenerationParams
	_, err := newTestGenerator(&modelFake{err: &googleapi.Error{Code: http.StatusServiceUnavailable, Message: "model overloaded"}}, &params).Generate(context.Background(), "p", params)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, retryable: true},
		{name: "wrapped server error", err: fmt.Errorf("generate: %w", &googleapi.Error{Code: http.StatusBadGateway}), retryable: true},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest, Message: "503 tokens requested"}},
		{name: "untyped text", err: errors.New("upstream said 503 unavailable")},
		{name: "canceled", err: context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyGeminiError(tt.err).Retryable; got != tt.retryable {
				t.Fatalf("classifyGeminiError(%v).Retryable = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
