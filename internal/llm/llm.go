// Package llm defines the completion contract shared by the upstream model clients.
package llm

import (
	"errors"
	"fmt"
)

// ErrNoOutputText reports a successful upstream response that carried no usable text.
var ErrNoOutputText = errors.New("response did not contain output text")

// CompletionRequest is a single stateless generation request.
type CompletionRequest struct {
	Instructions    string
	Input           string
	MaxOutputTokens int
}

// CompletionResponse is the text extracted from a generation response.
type CompletionResponse struct {
	OutputText string
}

// UpstreamError is returned when the upstream API answered with a non-success status.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// TransportError is returned when a request to the upstream API produced no response.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("call %s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
