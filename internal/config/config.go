// Package config provides configuration loading and management for paradox.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Generation modes.
const (
	ModeResponses  = "responses"
	ModeAssistants = "assistants"
	ModeGemini     = "gemini"
)

// Environment variables with vendor-defined names.
const (
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvOpenAIOrg         = "OPENAI_ORG_ID"
	EnvOpenAIAssistantID = "OPENAI_ASSISTANT_ID"
	EnvOpenAIBaseURL     = "OPENAI_BASE_URL"
	EnvOpenAIModel       = "OPENAI_MODEL"
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvGeminiBaseURL     = "GEMINI_BASE_URL"
	EnvGeminiModel       = "GEMINI_MODEL"
)

// Config is the root configuration.
type Config struct {
	Mode   string       `json:"mode"   mapstructure:"mode"   yaml:"mode"`
	OpenAI OpenAIConfig `json:"openai" mapstructure:"openai" yaml:"openai"`
	Gemini GeminiConfig `json:"gemini" mapstructure:"gemini" yaml:"gemini"`
	Prompt PromptConfig `json:"prompt" mapstructure:"prompt" yaml:"prompt"`
	Poll   PollConfig   `json:"poll"   mapstructure:"poll"   yaml:"poll"`
	Server ServerConfig `json:"server" mapstructure:"server" yaml:"server"`
}

// OpenAIConfig configures the OpenAI backends.
type OpenAIConfig struct {
	APIKey          string        `json:"api_key,omitempty"      mapstructure:"api_key"           yaml:"api_key,omitempty"`
	Organization    string        `json:"organization,omitempty" mapstructure:"organization"      yaml:"organization,omitempty"`
	AssistantID     string        `json:"assistant_id,omitempty" mapstructure:"assistant_id"      yaml:"assistant_id,omitempty"`
	BaseURL         string        `json:"base_url"               mapstructure:"base_url"          yaml:"base_url"`
	Model           string        `json:"model"                  mapstructure:"model"             yaml:"model"`
	MaxOutputTokens int           `json:"max_output_tokens"      mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	Timeout         time.Duration `json:"timeout"                mapstructure:"timeout"           yaml:"timeout"`
}

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey          string        `json:"api_key,omitempty"  mapstructure:"api_key"           yaml:"api_key,omitempty"`
	BaseURL         string        `json:"base_url,omitempty" mapstructure:"base_url"          yaml:"base_url,omitempty"`
	Model           string        `json:"model"              mapstructure:"model"             yaml:"model"`
	MaxOutputTokens int           `json:"max_output_tokens"  mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	Timeout         time.Duration `json:"timeout"            mapstructure:"timeout"           yaml:"timeout"`
}

// PromptConfig holds the texts sent to and returned for the model.
type PromptConfig struct {
	Default  string `json:"default"  mapstructure:"default"  yaml:"default"`
	System   string `json:"system"   mapstructure:"system"   yaml:"system"`
	Fallback string `json:"fallback" mapstructure:"fallback" yaml:"fallback"`
}

// PollConfig bounds the assistants run polling loop.
type PollConfig struct {
	Interval time.Duration `json:"interval" mapstructure:"interval" yaml:"interval"`
	MaxWait  time.Duration `json:"max_wait" mapstructure:"max_wait" yaml:"max_wait"`
}

// ServerConfig configures the standalone HTTP server.
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr" yaml:"addr"`
	Path string `json:"path" mapstructure:"path" yaml:"path"`
}

// MissingError lists required environment variables that are not set.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return "Missing " + strings.Join(e.Vars, ", ")
}

// Validate checks that the secrets required by the selected mode are present.
// The returned error is a *MissingError naming every absent variable.
func (c Config) Validate() error {
	var missing []string
	switch c.Mode {
	case ModeResponses:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			missing = append(missing, EnvOpenAIAPIKey)
		}
	case ModeAssistants:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			missing = append(missing, EnvOpenAIAPIKey)
		}
		if strings.TrimSpace(c.OpenAI.AssistantID) == "" {
			missing = append(missing, EnvOpenAIAssistantID)
		}
	case ModeGemini:
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			missing = append(missing, EnvGeminiAPIKey)
		}
	default:
		return fmt.Errorf("unknown mode %q (want %s, %s or %s)", c.Mode, ModeResponses, ModeAssistants, ModeGemini)
	}
	if len(missing) > 0 {
		return &MissingError{Vars: missing}
	}
	return nil
}

// Redacted returns a copy of the configuration with secrets masked.
func (c Config) Redacted() Config {
	c.OpenAI.APIKey = redact(c.OpenAI.APIKey)
	c.Gemini.APIKey = redact(c.Gemini.APIKey)
	return c
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
