// Package ollama is a TextGenerator backed by an Ollama-compatible /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/listing-ingestor/internal/repository"
)

const (
	generatePath   = "/api/generate"
	defaultTimeout = 90 * time.Second
	maxErrorBody   = 512
)

// Client calls a text-generation model in JSON output mode.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewClient returns ErrNotConfigured when the endpoint or model is missing.
// apiKey is optional; when set it is sent as a bearer token.
func NewClient(endpoint, model, apiKey string, timeout time.Duration) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	model = strings.TrimSpace(model)
	if endpoint == "" || model == "" {
		return nil, repository.ErrNotConfigured
	}
	if !strings.HasSuffix(endpoint, generatePath) {
		endpoint += generatePath
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Format  string          `json:"format"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate sends prompt and returns the model's raw response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	bodyBytes, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Format:  "json",
		Stream:  false,
		Options: generateOptions{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("model API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("model API error: %s", out.Error)
	}
	return out.Response, nil
}
