package persona

import (
	"context"
	"io"
	"log/slog"

	"github.com/popov-vn/ai-agent/internal/extract"
	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/llm"
)

// Evaluator asks one persona to choose a gift from the catalog.
type Evaluator struct {
	identity Identity
	client   llm.Client
	log      *slog.Logger
}

// NewEvaluator creates an Evaluator for identity.
func NewEvaluator(identity Identity, client llm.Client, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Evaluator{
		identity: identity,
		client:   client,
		log:      logger.With("component", "persona_evaluator", "persona", string(identity.ID)),
	}
}

// Identity returns the persona this evaluator speaks for.
func (e *Evaluator) Identity() Identity {
	return e.identity
}

// Evaluate returns the persona's verdict on catalog. It never fails: any
// error yields the persona's fallback verdict naming catalog[0].
func (e *Evaluator) Evaluate(ctx context.Context, personInfo string, catalog []gift.Record) Verdict {
	v, err := e.evaluate(ctx, personInfo, catalog)
	if err != nil {
		e.log.WarnContext(ctx, "Persona evaluation failed, using fallback verdict", "error", err)
		var first string
		if len(catalog) > 0 {
			first = catalog[0].Name
		}
		return FallbackVerdict(e.identity, first)
	}

	e.log.InfoContext(ctx, "Persona chose gift",
		"gift", v.Gift, "metric", v.Metric.Field, "value", v.Metric.Value, "metric_present", v.Metric.Present)
	return v
}

func (e *Evaluator) evaluate(ctx context.Context, personInfo string, catalog []gift.Record) (Verdict, error) {
	raw, err := e.client.Complete(ctx, Prompt(e.identity, personInfo, gift.FormatCatalog(catalog)))
	if err != nil {
		return Verdict{}, err
	}

	obj, err := extract.Object(extract.TrimToObject(raw))
	if err != nil {
		return Verdict{}, err
	}

	return ValidateVerdict(obj, e.identity)
}
