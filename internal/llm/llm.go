// Package llm provides the completion capability used by every model-backed
// step of the recommendation pipeline: a single prompt goes in, text comes out.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned by a provider whose reply carries no text.
var ErrEmptyResponse = errors.New("empty completion")

// Client sends one prompt and returns the completion text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider performs a single attempt against a concrete backend.
// Retries, timeouts and admission control live in RetryingClient.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a plain function to Client.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
