// Package profiler turns a person's photo into short descriptive theses that
// enrich the free-text description before catalog generation.
package profiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/popov-vn/ai-agent/internal/config"
	errs "github.com/popov-vn/ai-agent/internal/errors"
	"github.com/popov-vn/ai-agent/internal/gigachat"
	"github.com/popov-vn/ai-agent/internal/imaging"
	"github.com/popov-vn/ai-agent/internal/llm"
	"github.com/popov-vn/ai-agent/internal/sanitize"
)

// Prompt asks for a psychological profile of the photographed person.
const Prompt = "Ты - эксперт-психолог, специализирующийся на профайлинге. Это фотография человека с аватарки в соцсети. " +
	"Составь психотип человека с описанием его увлечений и предполагаемого возраста. Ответь только тезисами"

// Temperature used for photo descriptions.
const Temperature = 0.1

// Vision describes a JPEG image following prompt.
type Vision interface {
	Describe(ctx context.Context, prompt string, jpeg []byte) (string, error)
}

// Profiler downsizes photos and asks a Vision backend to describe them.
type Profiler struct {
	vision     Vision
	maxW, maxH int
	log        *slog.Logger
}

// New creates a Profiler. Non-positive limits fall back to the defaults.
func New(vision Vision, maxW, maxH int, logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if maxW <= 0 {
		maxW = config.DefaultProfilerWidth
	}
	if maxH <= 0 {
		maxH = config.DefaultProfilerHeight
	}
	return &Profiler{vision: vision, maxW: maxW, maxH: maxH, log: logger.With("component", "profiler")}
}

// Describe returns the profile text for image. mime is informational: the
// image is decoded by content and re-encoded as JPEG.
func (p *Profiler) Describe(ctx context.Context, image []byte, mime string) (string, error) {
	if len(image) == 0 {
		return "", errs.NewValidationError("image is empty", nil)
	}

	start := time.Now()
	jpeg, err := imaging.Shrink(image, p.maxW, p.maxH)
	if err != nil {
		return "", err
	}

	text, err := p.vision.Describe(ctx, Prompt, jpeg)
	if err != nil {
		return "", fmt.Errorf("describe photo: %w", err)
	}
	text = sanitize.PlainText(text)
	if text == "" {
		return "", errs.NewAPIError("photo description is empty", nil)
	}

	p.log.InfoContext(ctx, "Photo described",
		"mime", mime,
		"original_bytes", len(image),
		"upload_bytes", len(jpeg),
		"chars", len([]rune(text)),
		"duration", time.Since(start))
	return text, nil
}

// GigaChatVision uploads the image and references it as a chat attachment.
type GigaChatVision struct {
	Client *gigachat.Client
}

// Describe implements Vision.
func (v GigaChatVision) Describe(ctx context.Context, prompt string, jpeg []byte) (string, error) {
	fileID, err := v.Client.Upload(ctx, "photo.jpg", "image/jpeg", jpeg)
	if err != nil {
		return "", err
	}
	return v.Client.Chat(ctx, gigachat.ChatRequest{
		Messages:    []gigachat.Message{{Role: "user", Content: prompt, Attachments: []string{fileID}}},
		Temperature: Temperature,
	})
}

// GeminiVision sends the image inline next to the prompt.
type GeminiVision struct {
	Gemini *llm.Gemini
}

// Describe implements Vision.
func (v GeminiVision) Describe(ctx context.Context, prompt string, jpeg []byte) (string, error) {
	return v.Gemini.GenerateParts(ctx,
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(jpeg, "image/jpeg"),
	)
}

// NewFromConfig builds the configured backend. It returns nil when
// profiler.backend is "none".
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Profiler, error) {
	var vision Vision

	switch cfg.Profiler.Backend {
	case "", "none":
		return nil, nil
	case "gigachat":
		client, err := gigachat.NewClient(cfg.GigaChat, nil, logger)
		if err != nil {
			return nil, err
		}
		vision = GigaChatVision{Client: client}
	case "gemini":
		g, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.ModelName,
			Temperature: Temperature,
		})
		if err != nil {
			return nil, err
		}
		vision = GeminiVision{Gemini: g}
	default:
		return nil, errs.NewConfigError(fmt.Sprintf("unknown profiler backend %q", cfg.Profiler.Backend), nil)
	}

	return New(vision, cfg.Profiler.MaxWidth, cfg.Profiler.MaxHeight, logger), nil
}
