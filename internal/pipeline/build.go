package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/popov-vn/ai-agent/internal/aggregate"
	"github.com/popov-vn/ai-agent/internal/config"
	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/llm"
	"github.com/popov-vn/ai-agent/internal/orchestrator"
	"github.com/popov-vn/ai-agent/internal/persona"
)

// NewFromConfig assembles a Service from configuration around a shared
// completion client. enricher may be nil.
func NewFromConfig(cfg config.PipelineConfig, client llm.Client, enricher Enricher, logger *slog.Logger) (*Service, error) {
	identities, err := persona.Resolve(cfg.Personas)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline.personas: %w", err)
	}

	evaluators := make([]orchestrator.Evaluator, len(identities))
	for i, identity := range identities {
		evaluators[i] = persona.NewEvaluator(identity, client, logger)
	}

	opts := Options{
		Enricher:         enricher,
		DefaultRecipient: cfg.DefaultRecipient,
		RunTimeout:       cfg.RunTimeout,
	}
	if cfg.UseSelector {
		opts.Selector = persona.NewSelector(client, logger)
	}

	return NewService(
		gift.NewGenerator(client, logger),
		orchestrator.New(evaluators, logger),
		aggregate.New(logger),
		opts,
		logger,
	), nil
}
