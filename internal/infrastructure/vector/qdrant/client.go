package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/resilience"
)

// Client stores one point per case record. Point ids are metadata positions and the collection uses
// Euclid distance, so scores square into the L2 distances the ranker expects.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Upsert(ctx context.Context, position int, vector []float32) error {
	if position < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "qdrant upsert", fmt.Errorf("negative position %d", position))
	}
	if len(vector) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "qdrant upsert", fmt.Errorf("empty vector"))
	}
	if err := c.ensureCollection(ctx, len(vector)); err != nil {
		return err
	}

	reqBody := map[string]any{
		"points": []map[string]any{{
			"id":      position,
			"vector":  vector,
			"payload": map[string]any{"position": position},
		}},
	}
	return c.call(ctx, "upsert", http.MethodPut, "/points?wait=true", reqBody, nil)
}

func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.IndexHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": false,
	}

	var searchResp struct {
		Result []struct {
			ID    uint64  `json:"id"`
			Score float64 `json:"score"`
		} `json:"result"`
	}
	err := c.call(ctx, "search", http.MethodPost, "/points/search", reqBody, &searchResp)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.IndexHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.IndexHit{
			Position: int(r.ID),
			Distance: r.Score * r.Score,
		})
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, position int) error {
	reqBody := map[string]any{"points": []int{position}}
	err := c.call(ctx, "delete", http.MethodPost, "/points/delete?wait=true", reqBody, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

// Count returns the exact number of stored points; a missing collection counts as empty.
func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := c.call(ctx, "count", http.MethodPost, "/points/count", map[string]any{"exact": true}, &countResp)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Euclid",
		},
	}

	err := c.call(ctx, "ensure collection", http.MethodPut, "", reqBody, nil)
	// 409 if already exists (depends on version/config).
	if statusErr, ok := asStatusError(err); ok && statusErr.StatusCode == http.StatusConflict {
		err = nil
	}
	if err != nil {
		return err
	}

	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	return nil
}

func (c *Client) call(ctx context.Context, operation, method, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}
	url := fmt.Sprintf("%s/collections/%s%s", c.baseURL, c.collection, path)

	fn := func(callCtx context.Context) error {
		return c.do(callCtx, operation, method, url, body, out)
	}
	if c.executor == nil {
		err = fn(ctx)
	} else {
		err = c.executor.Execute(ctx, "qdrant."+strings.ReplaceAll(operation, " ", "_"), fn, classifyQdrantError)
	}
	if err != nil && classifyQdrantError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "qdrant "+operation, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, operation, method, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(msg)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
