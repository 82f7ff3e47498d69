package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

const (
	DefaultEndpoint = "https://api.helmholtz-blablador.fz-juelich.de/api/v1/chat/completions"
	DefaultModel    = "gpt-3.5-turbo"

	temperature = 0.7
	maxTokens   = 4000
)

var ErrNoChoices = eris.New("ai: response contained no choices")

// APIError is a non-2xx reply from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Completer is anything that can turn a prompt into raw model output.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the body POSTed to the endpoint. The sampling parameters are
// fixed.
type ChatRequest struct {
	Model            string         `json:"model"`
	Messages         []Message      `json:"messages"`
	Temperature      float64        `json:"temperature"`
	MaxTokens        int            `json:"max_tokens"`
	TopP             float64        `json:"top_p"`
	FrequencyPenalty float64        `json:"frequency_penalty"`
	PresencePenalty  float64        `json:"presence_penalty"`
	ResponseFormat   ResponseFormat `json:"response_format"`
}

type ChatResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

type errorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Option func(*Client)

func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.endpoint = url
		}
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	http     *http.Client
	logger   *logger.Logger
}

// NewClient builds a client. The default HTTP client has no timeout; callers
// bound requests with their context.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Model() string { return c.model }

func (c *Client) Endpoint() string { return c.endpoint }

// Complete sends the prompt with the generated system prompt and returns the
// first choice's content exactly as the model wrote it.
func (c *Client) Complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: SystemPrompt(opts)},
			{Role: "user", Content: prompt},
		},
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		ResponseFormat:   ResponseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", eris.Wrap(err, "ai: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "ai: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("Requesting %d cards from %s (model %s)", opts.withDefaults().Count, c.endpoint, c.model)
	start := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "ai: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "ai: read response")
	}

	c.logger.Debug("AI endpoint answered %d in %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp.StatusCode, respBody)
	}

	var result ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "ai: unmarshal response")
	}
	if len(result.Choices) == 0 {
		return "", ErrNoChoices
	}

	return result.Choices[0].Message.Content, nil
}

func newAPIError(status int, body []byte) *APIError {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return &APIError{StatusCode: status, Message: parsed.Error.Message}
	}
	return &APIError{StatusCode: status, Message: fmt.Sprintf("API request failed with status %d", status)}
}
