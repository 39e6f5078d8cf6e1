package gift

import (
	"context"
	"io"
	"log/slog"

	"github.com/popov-vn/ai-agent/internal/extract"
	"github.com/popov-vn/ai-agent/internal/llm"
)

// Generator asks the model for a candidate catalog.
type Generator struct {
	client llm.Client
	log    *slog.Logger
}

// NewGenerator creates a Generator using client for completions.
func NewGenerator(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{client: client, log: logger.With("component", "gift_generator")}
}

// Generate returns the validated catalog for personInfo. It never fails: when
// the completion, extraction or every record fails, it returns the fallback
// catalog and reports fallback=true.
func (g *Generator) Generate(ctx context.Context, personInfo string) (catalog []Record, fallback bool) {
	catalog, err := g.generate(ctx, personInfo)
	if err != nil {
		g.log.WarnContext(ctx, "Catalog generation failed, using fallback catalog", "error", err)
		return FallbackCatalog(), true
	}
	if len(catalog) == 0 {
		g.log.WarnContext(ctx, "No valid gifts in model output, using fallback catalog")
		return FallbackCatalog(), true
	}

	g.log.InfoContext(ctx, "Catalog generated", "count", len(catalog))
	return catalog, false
}

func (g *Generator) generate(ctx context.Context, personInfo string) ([]Record, error) {
	raw, err := g.client.Complete(ctx, GenerationPrompt(personInfo))
	if err != nil {
		return nil, err
	}

	items, err := extract.Array(raw)
	if err != nil {
		return nil, err
	}

	catalog := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := ValidateRecord(item)
		if err != nil {
			g.log.WarnContext(ctx, "Skipping invalid gift record", "index", i, "error", err)
			continue
		}
		catalog = append(catalog, rec)
	}

	return catalog, nil
}
