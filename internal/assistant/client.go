package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"goaltrack-service/pkg/config"
)

const (
	modelsPath = "/v1/models"
	chatPath   = "/v1/chat/completions"
)

// ErrOverloaded is returned when the model backend keeps rate-limiting
// after the retry budget is exhausted. Callers surface it as a user-facing
// "overloaded, try later" message.
var ErrOverloaded = errors.New("model backend overloaded")

// defaultBackoff is the retry schedule applied on rate-limit responses
var defaultBackoff = []time.Duration{8 * time.Second, 16 * time.Second, 24 * time.Second}

// Client is a minimal HTTP client for a hosted chat-completion API
type Client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	http         *http.Client
	backoff      []time.Duration
}

// NewClient builds a client from the service LLM configuration
func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		backoff: defaultBackoff,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ResolveModel picks an available model variant. When the listing call
// fails or returns nothing the configured default identifier is used.
func (c *Client) ResolveModel(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return c.defaultModel
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.defaultModel
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.defaultModel
	}

	var out modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || len(out.Data) == 0 {
		return c.defaultModel
	}

	for _, m := range out.Data {
		if m.ID == c.defaultModel {
			return m.ID
		}
	}
	return out.Data[0].ID
}

// Generate sends a prompt and returns the generated text. Rate-limit and
// overload responses are retried per the backoff schedule before giving up
// with ErrOverloaded; any other failure is returned immediately.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	payload := chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	for attempt := 0; ; attempt++ {
		text, retryable, err := c.generateOnce(ctx, body)
		if err == nil {
			return text, nil
		}
		if !retryable {
			return "", err
		}
		if attempt >= len(c.backoff) {
			return "", ErrOverloaded
		}

		timer := time.NewTimer(c.backoff[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) generateOnce(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return "", true, fmt.Errorf("model backend status %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		return "", false, fmt.Errorf("model backend status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, err
	}
	if len(out.Choices) == 0 {
		return "", false, errors.New("empty model response")
	}
	return out.Choices[0].Message.Content, false, nil
}
