// Package server exposes the sentence generator over HTTP and serverless runtimes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/metalagman/paradox/internal/config"
	"github.com/metalagman/paradox/internal/llm"
	"github.com/metalagman/paradox/internal/sentence"
	"github.com/rs/zerolog/log"
)

// Payload is the JSON body of every reply. Exactly one field is set.
type Payload struct {
	Sentence string `json:"sentence,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Reply is a status code with its JSON payload.
type Reply struct {
	Status int
	Body   Payload
}

// GeneratorFactory builds a generator for one invocation.
type GeneratorFactory func(ctx context.Context, cfg config.Config) (sentence.Generator, error)

// Config provides all the dependencies required to build an Endpoint.
type Config struct {
	// LoadConfig is called at the start of every invocation.
	LoadConfig   func() (config.Config, error)
	NewGenerator GeneratorFactory
	Client       *http.Client
	Path         string
}

// Endpoint answers sentence requests.
type Endpoint struct {
	loadConfig   func() (config.Config, error)
	newGenerator GeneratorFactory
	path         string
}

// New constructs an Endpoint from the provided configuration, applying defaults.
func New(cfg Config) *Endpoint {
	e := &Endpoint{
		loadConfig:   cfg.LoadConfig,
		newGenerator: cfg.NewGenerator,
		path:         cfg.Path,
	}
	if e.loadConfig == nil {
		e.loadConfig = func() (config.Config, error) { return config.Load("") }
	}
	if e.newGenerator == nil {
		client := cfg.Client
		if client == nil {
			client = &http.Client{Timeout: 60 * time.Second}
		}
		e.newGenerator = func(ctx context.Context, c config.Config) (sentence.Generator, error) {
			return sentence.FromConfig(ctx, c, client)
		}
	}
	if e.path == "" {
		e.path = "/stream"
	}
	return e
}

// Respond runs one invocation. It always returns a reply carrying either a
// sentence or an error.
func (e *Endpoint) Respond(ctx context.Context, query url.Values) Reply {
	cfg, err := e.loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return errorReply(http.StatusInternalServerError, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid config")
		return errorReply(http.StatusInternalServerError, err.Error())
	}

	gen, err := e.newGenerator(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("build generator")
		return errorReply(http.StatusInternalServerError, err.Error())
	}

	prompt := sentence.PromptOrDefault(query.Get("prompt"), cfg)
	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		return generationErrorReply(err)
	}
	return Reply{Status: http.StatusOK, Body: Payload{Sentence: text}}
}

func generationErrorReply(err error) Reply {
	var upErr *llm.UpstreamError
	var trErr *llm.TransportError
	switch {
	case errors.As(err, &upErr):
		log.Error().Err(err).Int("upstream_status", upErr.StatusCode).Msg("upstream rejected request")
		status := upErr.StatusCode
		if status < 100 || status > 999 {
			status = http.StatusBadGateway
		}
		return errorReply(status, fmt.Sprintf("%s error %d: %s", upErr.Provider, upErr.StatusCode, upErr.Body))
	case errors.Is(err, sentence.ErrGenerationTimedOut):
		log.Error().Err(err).Msg("generation timed out")
		return errorReply(http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &trErr):
		log.Error().Err(err).Msg("upstream unreachable")
		return errorReply(http.StatusBadGateway, fmt.Sprintf("Network error calling %s: %v", trErr.Provider, trErr.Err))
	default:
		log.Error().Err(err).Msg("generation failed")
		return errorReply(http.StatusBadGateway, fmt.Sprintf("Generation failed: %v", err))
	}
}

func errorReply(status int, msg string) Reply {
	return Reply{Status: status, Body: Payload{Error: msg}}
}
