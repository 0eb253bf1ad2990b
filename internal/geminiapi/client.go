// Package geminiapi wraps the Gemini generate-content API behind the llm completion contract.
package geminiapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/metalagman/paradox/internal/llm"
	"google.golang.org/genai"
)

const (
	providerName           = "Gemini"
	defaultTimeout         = 60 * time.Second
	defaultMaxOutputTokens = 80
)

// Config is Gemini API client configuration.
type Config struct {
	Model           string
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	MaxOutputTokens int
}

// Client performs single generate-content calls.
type Client struct {
	model           string
	timeout         time.Duration
	maxOutputTokens int
	client          *genai.Client
}

// NewClient constructs a new Gemini API client.
func NewClient(ctx context.Context, cfg Config, httpClient *http.Client) (*Client, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: withStatusRecorder(httpClient),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		model:           model,
		timeout:         timeout,
		maxOutputTokens: maxTokens,
		client:          client,
	}, nil
}

// Complete executes a single generate-content request.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = c.maxOutputTokens
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var status int
	ctx = context.WithValue(ctx, statusKey{}, &status)

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.Instructions != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Input), genCfg)
	if err != nil {
		return llm.CompletionResponse{}, fmt.Errorf("gemini generate content: %w", classify(err, status))
	}

	output := strings.TrimSpace(resp.Text())
	if output == "" {
		return llm.CompletionResponse{}, fmt.Errorf("gemini generate content: %w", llm.ErrNoOutputText)
	}
	return llm.CompletionResponse{OutputText: output}, nil
}

// classify maps an SDK error onto the llm error kinds. status is the HTTP
// status received for the request, zero when no response arrived.
func classify(err error, status int) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return upstream(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return upstream(*apiErrPtr)
	}
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return fmt.Errorf("decode response: %v: %w", err, llm.ErrNoOutputText)
	}
	return &llm.TransportError{Provider: providerName, Err: err}
}

func upstream(apiErr genai.APIError) error {
	body := apiErr.Message
	if apiErr.Status != "" {
		body = apiErr.Status + ": " + body
	}
	return &llm.UpstreamError{
		Provider:   providerName,
		StatusCode: apiErr.Code,
		Body:       body,
	}
}
