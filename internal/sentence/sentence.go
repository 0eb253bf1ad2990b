// Package sentence generates a single normalized art sentence from an upstream model.
package sentence

import (
	"context"
	"errors"
	"strings"
)

// DefaultPrompt is used when the caller does not supply a prompt.
const DefaultPrompt = "Generate one conceptual contradictory art sentence."

// SystemInstruction steers the output style of every single-call generation.
const SystemInstruction = `You write exactly one short conceptual sentence about art.
The sentence has two clauses and the second clause contradicts the first.
Reply with the sentence only: no quotes, no preamble, no list.

Examples:
The canvas is finished, yet no paint has touched it.
This sculpture weighs a ton, but it is made of nothing.
The gallery is silent, and the silence is the loudest piece on display.`

// FallbackSentence is returned when the upstream response carries no usable text.
const FallbackSentence = "A conceptual sentence could not be generated."

// DefaultMaxOutputTokens caps the length of a single-call generation.
const DefaultMaxOutputTokens = 80

// ErrGenerationTimedOut is returned when an assistant run does not finish within the wait cap.
var ErrGenerationTimedOut = errors.New("generation timed out")

// Generator produces one sentence for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var terminalPunctuation = []string{".", "!", "?", "…"}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// Normalize trims text and guarantees it ends in terminal punctuation.
// An empty text yields fallback.
func Normalize(text, fallback string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		s = strings.TrimSpace(fallback)
	}
	if s == "" {
		return ""
	}
	for _, p := range terminalPunctuation {
		if strings.HasSuffix(s, p) {
			return s
		}
	}
	return s + "."
}
