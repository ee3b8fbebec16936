package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"RSSDigest/internal/config"
	"RSSDigest/internal/ports"
)

// ScorerClient implements ports.Scorer backed by OpenAI-compatible chat
// completion APIs.
type ScorerClient struct {
	endpoint   string
	model      string
	apiKey     string
	prompt     string
	httpClient *http.Client
}

var _ ports.Scorer = (*ScorerClient)(nil)

// NewScorerClient builds a client from configuration.
func NewScorerClient(cfg config.ScorerConfig) *ScorerClient {
	return &ScorerClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		prompt:   cfg.Prompt,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Score submits the document text for rating and returns the model's reply
// content, which is expected to be the structured rating JSON.
func (c *ScorerClient) Score(ctx context.Context, document string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("scorer client misconfigured")
	}
	if strings.TrimSpace(document) == "" {
		return "", fmt.Errorf("empty document")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": c.prompt + "\n\nDocument Content:\n" + document},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal scorer payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("score document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("scorer error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode scorer response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("scorer returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}
