package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/popov-vn/ai-agent/internal/config"
)

// NewFromConfig builds the configured provider and wraps it in a RetryingClient.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*RetryingClient, error) {
	var provider Provider

	switch cfg.LLM.Provider {
	case "gemini":
		g, err := NewGemini(ctx, GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.ModelName,
			Temperature: cfg.Gemini.Temperature,
		})
		if err != nil {
			return nil, err
		}
		provider = g
	case "openrouter", "":
		provider = NewOpenRouter(OpenRouterConfig{
			APIToken: cfg.LLM.APIToken,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			Referer:  cfg.LLM.Referer,
			Title:    cfg.LLM.Title,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}

	client := NewClient(provider, OptionsFromConfig(cfg.LLM), logger)
	client.log.Info("Completion client initialized",
		"max_attempts", client.opts.MaxAttempts,
		"max_concurrent", client.opts.MaxConcurrent,
		"request_timeout", client.opts.RequestTimeout)

	return client, nil
}
