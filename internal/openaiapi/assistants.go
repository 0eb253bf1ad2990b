package openaiapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/metalagman/paradox/internal/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func betaHeader() option.RequestOption {
	return option.WithHeader("OpenAI-Beta", assistantsBetaHeader)
}

// CreateThread starts an empty conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var raw *http.Response
	thread, err := c.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{}, betaHeader(), option.WithResponseInto(&raw))
	if err != nil {
		return "", fmt.Errorf("openai threads.create: %w", classify(err, raw))
	}
	return thread.ID, nil
}

// AddUserMessage appends a user message to the thread.
func (c *Client) AddUserMessage(ctx context.Context, threadID, text string) error {
	var raw *http.Response
	_, err := c.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	}, betaHeader(), option.WithResponseInto(&raw))
	if err != nil {
		return fmt.Errorf("openai messages.create: %w", classify(err, raw))
	}
	return nil
}

// StartRun starts a run of the assistant on the thread.
func (c *Client) StartRun(ctx context.Context, threadID, assistantID string) (Run, error) {
	var raw *http.Response
	run, err := c.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	}, betaHeader(), option.WithResponseInto(&raw))
	if err != nil {
		return Run{}, fmt.Errorf("openai runs.create: %w", classify(err, raw))
	}
	return Run{ID: run.ID, Status: string(run.Status)}, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	var raw *http.Response
	run, err := c.client.Beta.Threads.Runs.Get(ctx, threadID, runID, betaHeader(), option.WithResponseInto(&raw))
	if err != nil {
		return Run{}, fmt.Errorf("openai runs.retrieve: %w", classify(err, raw))
	}
	return Run{ID: run.ID, Status: string(run.Status)}, nil
}

// LatestMessageText returns the trimmed text of the first content block of the
// newest message on the thread.
func (c *Client) LatestMessageText(ctx context.Context, threadID string) (string, error) {
	var raw *http.Response
	page, err := c.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{}, betaHeader(), option.WithResponseInto(&raw))
	if err != nil {
		return "", fmt.Errorf("openai messages.list: %w", classify(err, raw))
	}
	if len(page.Data) == 0 || len(page.Data[0].Content) == 0 {
		return "", fmt.Errorf("openai messages.list: %w", llm.ErrNoOutputText)
	}
	text := strings.TrimSpace(page.Data[0].Content[0].Text.Value)
	if text == "" {
		return "", fmt.Errorf("openai messages.list: %w", llm.ErrNoOutputText)
	}
	return text, nil
}
