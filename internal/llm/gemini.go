package llm

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	// BaseURL and HTTPClient override the API endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini is a Provider backed by the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a genai client for the Gemini API backend.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gi, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{client: gi, model: cfg.Model, temperature: cfg.Temperature}, nil
}

// Name implements Provider.
func (p *Gemini) Name() string { return "gemini" }

// Generate sends prompt as a single user turn.
func (p *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return p.GenerateParts(ctx, genai.NewPartFromText(prompt))
}

// GenerateParts sends a multi-part user turn, e.g. an inline image plus text.
func (p *Gemini) GenerateParts(ctx context.Context, parts ...*genai.Part) (string, error) {
	temperature := p.temperature
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
