package sentence

import (
	"context"
	"errors"

	"github.com/metalagman/paradox/internal/llm"
	"github.com/rs/zerolog/log"
)

// Completer performs one stateless generation request.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error)
}

// CompletionGenerator produces a sentence with a single completion call.
type CompletionGenerator struct {
	Completer       Completer
	Instructions    string
	Fallback        string
	MaxOutputTokens int
}

// Generate implements Generator.
func (g *CompletionGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	instructions := g.Instructions
	if instructions == "" {
		instructions = SystemInstruction
	}
	maxTokens := g.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}

	resp, err := g.Completer.Complete(ctx, llm.CompletionRequest{
		Instructions:    instructions,
		Input:           prompt,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrNoOutputText) {
			return "", err
		}
		log.Warn().Err(err).Msg("completion had no extractable text, using fallback sentence")
		resp = llm.CompletionResponse{}
	}

	return Normalize(resp.OutputText, fallbackOr(g.Fallback)), nil
}

func fallbackOr(s string) string {
	if trimmed(s) == "" {
		return FallbackSentence
	}
	return s
}
