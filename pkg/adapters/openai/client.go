// Package openai provides a ports.ModelClient backed by any
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/ports"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Option defines a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL points the client at a compatible endpoint other than the
// OpenAI API, e.g. a local inference server.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = normalizeBaseURL(url)
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the given model.
func New(model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv creates a client from OPENAI_API_KEY, OPENAI_BASE_URL and
// OPENAI_MODEL. Unset variables fall back to the client defaults.
func NewFromEnv(opts ...Option) *Client {
	model := os.Getenv("OPENAI_MODEL")
	base := []Option{WithAPIKey(os.Getenv("OPENAI_API_KEY"))}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		base = append(base, WithBaseURL(url))
	}
	return New(model, append(base, opts...)...)
}

// normalizeBaseURL strips trailing slashes and a "/chat/completions"
// suffix so the path is never doubled when the client appends it.
func normalizeBaseURL(raw string) string {
	s := strings.TrimRight(raw, "/")
	return strings.TrimSuffix(s, "/chat/completions")
}

// Name implements ports.ModelClient.
func (c *Client) Name() string { return c.model }

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate implements ports.ModelClient.
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage, config ports.GenerateConfig) (*domain.ModelOutput, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMsg, 0, len(messages)),
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
		TopP:        config.TopP,
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, chatMsg{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, c.terminal(fmt.Errorf("marshal request: %w", err))
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, c.terminal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, c.temporary(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.temporary(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		if retryableStatus(resp.StatusCode) {
			return nil, c.temporary(err)
		}
		return nil, c.terminal(err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, c.terminal(fmt.Errorf("unmarshal response: %w", err))
	}
	if chatResp.Error != nil {
		return nil, c.terminal(fmt.Errorf("API error: %s", chatResp.Error.Message))
	}
	if len(chatResp.Choices) == 0 {
		return nil, c.terminal(fmt.Errorf("no choices in response"))
	}

	choice := chatResp.Choices[0]
	model := chatResp.Model
	if model == "" {
		model = c.model
	}
	return &domain.ModelOutput{
		Model:      model,
		Completion: choice.Message.Content,
		StopReason: stopReason(choice.FinishReason),
		Usage: domain.Usage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:  chatResp.Usage.TotalTokens,
		},
	}, nil
}

// retryableStatus reports whether the endpoint fault is worth retrying.
// Rate limits and server errors are transient; other 4xx are not.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func stopReason(finish string) domain.StopReason {
	switch finish {
	case "stop":
		return domain.StopReasonStop
	case "length":
		return domain.StopReasonMaxTokens
	default:
		return domain.StopReasonUnknown
	}
}

func (c *Client) temporary(err error) error {
	return &domain.GenerationError{Model: c.model, Temporary: true, Err: err}
}

func (c *Client) terminal(err error) error {
	return &domain.GenerationError{Model: c.model, Err: err}
}
