package openaiapi

import "time"

const (
	providerName           = "OpenAI"
	defaultBaseURL         = "https://api.openai.com/v1"
	defaultTimeout         = 60 * time.Second
	defaultMaxOutputTokens = 80
	assistantsBetaHeader   = "assistants=v2"
)

// Config is OpenAI API client configuration.
type Config struct {
	Model           string
	BaseURL         string
	APIKey          string
	Organization    string
	Timeout         time.Duration
	MaxOutputTokens int
}

// Run is the subset of an assistants run the caller polls on.
type Run struct {
	ID     string
	Status string
}
