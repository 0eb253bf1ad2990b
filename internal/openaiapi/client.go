package openaiapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/metalagman/paradox/internal/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// Client wraps the OpenAI responses and assistants APIs.
type Client struct {
	model           string
	maxOutputTokens int
	client          openai.Client
}

// NewClient constructs a new OpenAI API client.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("openai model is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if org := strings.TrimSpace(cfg.Organization); org != "" {
		opts = append(opts, option.WithOrganization(org))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		model:           model,
		maxOutputTokens: maxTokens,
		client:          openai.NewClient(opts...),
	}, nil
}

// Complete executes a single non-streaming Responses API request.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = c.maxOutputTokens
	}

	var raw *http.Response
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           c.model,
		Instructions:    openai.String(req.Instructions),
		MaxOutputTokens: openai.Int(int64(maxTokens)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Input),
		},
	}, option.WithResponseInto(&raw))
	if err != nil {
		return llm.CompletionResponse{}, fmt.Errorf("openai responses.create: %w", classify(err, raw))
	}
	if msg := strings.TrimSpace(resp.Error.Message); msg != "" {
		return llm.CompletionResponse{}, fmt.Errorf("openai response failed: %s: %w", msg, llm.ErrNoOutputText)
	}

	output := strings.TrimSpace(outputText(resp))
	if output == "" {
		return llm.CompletionResponse{}, fmt.Errorf("openai responses.create: %w", llm.ErrNoOutputText)
	}

	return llm.CompletionResponse{OutputText: output}, nil
}

// outputText returns the first output_text block of the first message item.
func outputText(resp *responses.Response) string {
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				return content.Text
			}
		}
		return ""
	}
	return ""
}

// classify maps an SDK error onto the llm error kinds. raw is the HTTP response
// captured for the request, if one was received.
func classify(err error, raw *http.Response) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Body:       readBody(apiErr.Response),
		}
	}
	if raw != nil && raw.StatusCode < http.StatusBadRequest {
		return fmt.Errorf("decode response: %v: %w", err, llm.ErrNoOutputText)
	}
	return &llm.TransportError{Provider: providerName, Err: err}
}

func readBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
