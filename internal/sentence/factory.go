package sentence

import (
	"context"
	"fmt"
	"net/http"

	"github.com/metalagman/paradox/internal/config"
	"github.com/metalagman/paradox/internal/geminiapi"
	"github.com/metalagman/paradox/internal/openaiapi"
)

// FromConfig builds the generator selected by cfg.Mode.
func FromConfig(ctx context.Context, cfg config.Config, httpClient *http.Client) (Generator, error) {
	switch cfg.Mode {
	case config.ModeResponses, config.ModeAssistants:
		client, err := openaiapi.NewClient(openaiapi.Config{
			Model:           cfg.OpenAI.Model,
			BaseURL:         cfg.OpenAI.BaseURL,
			APIKey:          cfg.OpenAI.APIKey,
			Organization:    cfg.OpenAI.Organization,
			Timeout:         cfg.OpenAI.Timeout,
			MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
		}, httpClient)
		if err != nil {
			return nil, err
		}
		if cfg.Mode == config.ModeAssistants {
			return &AssistantGenerator{
				Client:       client,
				AssistantID:  cfg.OpenAI.AssistantID,
				Fallback:     cfg.Prompt.Fallback,
				PollInterval: cfg.Poll.Interval,
				MaxWait:      cfg.Poll.MaxWait,
			}, nil
		}
		return &CompletionGenerator{
			Completer:       client,
			Instructions:    cfg.Prompt.System,
			Fallback:        cfg.Prompt.Fallback,
			MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
		}, nil
	case config.ModeGemini:
		client, err := geminiapi.NewClient(ctx, geminiapi.Config{
			Model:           cfg.Gemini.Model,
			BaseURL:         cfg.Gemini.BaseURL,
			APIKey:          cfg.Gemini.APIKey,
			Timeout:         cfg.Gemini.Timeout,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		}, httpClient)
		if err != nil {
			return nil, err
		}
		return &CompletionGenerator{
			Completer:       client,
			Instructions:    cfg.Prompt.System,
			Fallback:        cfg.Prompt.Fallback,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// PromptOrDefault returns prompt, or the configured default when it is blank.
func PromptOrDefault(prompt string, cfg config.Config) string {
	if p := trimmed(prompt); p != "" {
		return p
	}
	if p := trimmed(cfg.Prompt.Default); p != "" {
		return p
	}
	return DefaultPrompt
}
