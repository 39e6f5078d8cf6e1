package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterConfig configures an OpenAI-compatible chat completions endpoint.
type OpenRouterConfig struct {
	APIToken   string
	BaseURL    string
	Model      string
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// OpenRouter is a Provider backed by an OpenAI-compatible API.
type OpenRouter struct {
	client *openai.Client
	model  string
}

// NewOpenRouter creates the provider. Referer and Title are sent as the
// HTTP-Referer and X-Title headers OpenRouter uses for attribution.
func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	clientCfg := openai.DefaultConfig(cfg.APIToken)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	clientCfg.HTTPClient = &http.Client{
		Transport: headerTransport{base: transport, referer: cfg.Referer, title: cfg.Title},
		Timeout:   base.Timeout,
	}

	return &OpenRouter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Name implements Provider.
func (p *OpenRouter) Name() string { return "openrouter" }

// Generate sends prompt as a single user message.
func (p *OpenRouter) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if t.referer != "" {
		r.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		r.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(r)
}
