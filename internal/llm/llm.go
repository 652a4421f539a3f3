// Package llm wraps the generative-text providers behind one small
// interface. Cross-cutting behavior (credential resolution, error
// mapping to HTTP) lives with the proxy handlers, not here.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// DefaultGeminiModel matches the model the upstream proxy pins.
const DefaultGeminiModel = "gemini-2.5-flash"

// ArticleTemperature is applied to the streamed article generation call
// only; every other call runs at provider defaults.
const ArticleTemperature = 0.7

// TextClient is a single provider connection.
type TextClient interface {
	Name() string
	Close() error

	// GenerateText performs one single-shot completion and returns the
	// full response text.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// StreamText delivers response fragments to onChunk in arrival order
	// and returns after the stream has ended. A non-nil error from
	// onChunk aborts the stream and is returned as-is.
	StreamText(ctx context.Context, prompt string, onChunk func(chunk string) error) error
}

// New builds a client for the given provider. An empty provider selects
// Gemini, matching the upstream deployment.
func New(ctx context.Context, provider, apiKey, model string) (TextClient, error) {
	switch provider {
	case "", "gemini":
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGeminiClient(ctx, apiKey, model)
	case "openai":
		return NewOpenAIClient(apiKey, model, "")
	default:
		return nil, fmt.Errorf("llm: provider %s not supported", provider)
	}
}
