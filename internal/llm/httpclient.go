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
)

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// Default endpoints for the primary and fallback backends. Both speak the
// OpenAI chat-completions wire format.
const (
	DefaultPrimaryEndpoint  = "https://api.groq.com/openai/v1"
	DefaultFallbackEndpoint = "https://api.openai.com/v1"
)

// Backend identifies one chat-completions endpoint plus its credentials.
type Backend struct {
	Endpoint string
	APIKey   string
	Model    string
}

// configured reports whether the backend has enough information to be called.
func (b Backend) configured() bool {
	return b.Endpoint != "" && b.APIKey != "" && b.Model != ""
}

// HTTPClient implements Client against an OpenAI-compatible chat-completions
// API. A primary backend is tried first; when it is unconfigured or the call
// fails, the fallback backend (if configured) is tried before giving up.
type HTTPClient struct {
	http        *http.Client
	primary     Backend
	fallback    Backend
	temperature float64
	maxTokens   int
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// WithFallback sets the fallback backend.
func WithFallback(b Backend) ClientOption {
	return func(c *HTTPClient) {
		c.fallback = b
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *HTTPClient) {
		c.temperature = t
	}
}

// WithMaxTokens sets the default completion cap.
func WithMaxTokens(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxTokens = n
	}
}

// NewHTTPClient creates an HTTPClient for the given primary backend.
func NewHTTPClient(primary Backend, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		primary:     primary,
		temperature: 0.7,
		maxTokens:   1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate calls the primary backend, falling back to the secondary backend
// on failure. Returns ErrNoBackend when neither backend is configured.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (*Result, error) {
	var firstErr error

	for _, b := range []Backend{c.primary, c.fallback} {
		if !b.configured() {
			continue
		}
		res, err := c.call(ctx, b, req)
		if err == nil {
			return res, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		// Do not retry the fallback after a cancellation.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrNoBackend
}

// --- wire types (OpenAI chat-completions format) ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// call performs a single chat-completions POST against one backend.
func (c *HTTPClient) call(ctx context.Context, b Backend, req Request) (*Result, error) {
	start := time.Now()

	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model:       b.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	url := strings.TrimRight(b.Endpoint, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("llm: %s returned HTTP %d: %s", url, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("llm: backend error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("llm: backend returned no choices")
	}

	return &Result{
		Content:    strings.TrimSpace(cr.Choices[0].Message.Content),
		Model:      cr.Model,
		TokensUsed: cr.Usage.TotalTokens,
		Elapsed:    time.Since(start),
	}, nil
}
