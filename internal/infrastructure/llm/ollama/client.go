package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	nerModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

// WithExecutor runs every Ollama call through retry and circuit breaking.
func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithNERModel selects the model used for entity recognition; defaults to the generation model.
func WithNERModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.nerModel = model
		}
	}
}

func New(baseURL, genModel, embedModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		nerModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: expected %d vectors, got %d", len(texts), len(response.Embeddings))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Generator is the free-text generation collaborator. Ollama returns one completion per call,
// so SampleCount above one is not forwarded.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	options := map[string]any{}
	if params.MaxNewTokens > 0 {
		options["num_predict"] = params.MaxNewTokens
	}
	// Zero is a valid greedy setting; only a negative value defers to the model default.
	if params.Temperature >= 0 {
		options["temperature"] = params.Temperature
	}
	reqBody := map[string]any{
		"model":  g.client.genModel,
		"prompt": prompt,
		"stream": false,
	}
	if len(options) > 0 {
		reqBody["options"] = options
	}
	return g.client.generate(ctx, reqBody)
}

// EntityRecognizer asks the model for ORG, PERSON and DATE spans in JSON mode.
type EntityRecognizer struct {
	client   *Client
	maxInput int
}

func NewEntityRecognizer(client *Client) *EntityRecognizer {
	return &EntityRecognizer{client: client, maxInput: 4000}
}

func (r *EntityRecognizer) Recognize(ctx context.Context, text string) ([]domain.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	respText, err := r.client.generate(ctx, map[string]any{
		"model":  r.client.nerModel,
		"prompt": buildEntityPrompt(text, r.maxInput),
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": 0,
		},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Entities []domain.Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return nil, fmt.Errorf("parse entities json: %w", err)
	}

	entities := make([]domain.Entity, 0, len(result.Entities))
	for _, e := range result.Entities {
		e.Text = strings.TrimSpace(e.Text)
		e.Label = domain.EntityLabel(strings.ToUpper(strings.TrimSpace(string(e.Label))))
		if e.Text == "" {
			continue
		}
		switch e.Label {
		case domain.EntityOrg, domain.EntityPerson, domain.EntityDate:
			entities = append(entities, e)
		}
	}
	return entities, nil
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
