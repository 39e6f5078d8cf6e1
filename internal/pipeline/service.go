// Package pipeline runs one recommendation end to end: optional photo
// enrichment, catalog generation, persona fan-out and aggregation. A run
// always produces a usable result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/popov-vn/ai-agent/internal/aggregate"
	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/orchestrator"
	"github.com/popov-vn/ai-agent/internal/persona"
)

// CatalogGenerator produces the candidate catalog; fallback reports substitution.
type CatalogGenerator interface {
	Generate(ctx context.Context, personInfo string) (catalog []gift.Record, fallback bool)
}

// PersonaSelector picks the personas for a recipient.
type PersonaSelector interface {
	Select(ctx context.Context, personInfo, recipient string) []persona.ID
}

// Enricher turns a photo into extra descriptive text.
type Enricher interface {
	Describe(ctx context.Context, image []byte, mime string) (string, error)
}

// Options holds the optional collaborators of a Service.
type Options struct {
	// Selector narrows the personas per run; nil runs every persona.
	Selector PersonaSelector
	// Enricher describes attached photos; nil ignores photos.
	Enricher         Enricher
	DefaultRecipient string
	// RunTimeout bounds a whole run; zero means no bound beyond ctx.
	RunTimeout time.Duration
}

// Service is the top-level entry point of the recommendation pipeline.
type Service struct {
	generator    CatalogGenerator
	orchestrator *orchestrator.Orchestrator
	aggregator   *aggregate.Engine
	opts         Options
	log          *slog.Logger
}

// NewService wires the pipeline stages.
func NewService(
	generator CatalogGenerator,
	orch *orchestrator.Orchestrator,
	aggregator *aggregate.Engine,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.DefaultRecipient == "" {
		opts.DefaultRecipient = persona.RecipientFriend
	}
	return &Service{
		generator:    generator,
		orchestrator: orch,
		aggregator:   aggregator,
		opts:         opts,
		log:          logger.With("component", "pipeline"),
	}
}

// Run executes one recommendation. It never fails: stage failures degrade to
// fallback content and a panic yields the emergency selection.
func (s *Service) Run(ctx context.Context, req Request) (res Result) {
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	st := &runState{started: time.Now()}
	st.RunID = uuid.NewString()
	st.PersonInfo = req.PersonInfo
	log := s.log.With("run_id", st.RunID)

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "Pipeline panicked, returning emergency selection", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			st.Errors = append(st.Errors, fmt.Sprintf("panic: %v", r))
			st.Top = EmergencySelection()
			st.advance(StageEmergency)
		}
		st.Duration = time.Since(st.started)
		log.InfoContext(ctx, "Pipeline finished", "stage", st.Stage, "duration", st.Duration, "degraded", st.Result.Degraded())
		res = st.Result
	}()

	s.transition(ctx, log, st, StageInitialized)

	s.enrich(ctx, log, st, req)

	catalog, fallback := s.generator.Generate(ctx, st.PersonInfo)
	st.Catalog = catalog
	st.CatalogFallback = fallback
	if fallback {
		st.Errors = append(st.Errors, "catalog generation failed")
		s.transition(ctx, log, st, StageCatalogFallback)
	} else {
		s.transition(ctx, log, st, StageCatalogGenerated)
	}

	if len(catalog) == 0 {
		log.ErrorContext(ctx, "Catalog is empty, returning emergency selection")
		st.Top = EmergencySelection()
		s.transition(ctx, log, st, StageEmergency)
		return st.Result
	}

	orch := s.personasFor(ctx, log, st, req)
	st.Personas = orch.Personas()
	st.Verdicts = orch.EvaluateAll(ctx, st.PersonInfo, catalog)
	s.transition(ctx, log, st, StageAgentsEvaluated)

	top, err := s.selectTop(ctx, st)
	if err != nil || len(top) == 0 {
		log.WarnContext(ctx, "Aggregation failed, promoting first catalog entry", "error", err)
		if err != nil {
			st.Errors = append(st.Errors, err.Error())
		}
		st.Top = FallbackSelection(catalog)
		s.transition(ctx, log, st, StageSelectionFallback)
		return st.Result
	}

	st.Top = top
	s.transition(ctx, log, st, StageFinalSelection)
	return st.Result
}

func (s *Service) transition(ctx context.Context, log *slog.Logger, st *runState, stage Stage) {
	st.advance(stage)
	log.InfoContext(ctx, "Pipeline stage", "stage", stage, "elapsed", time.Since(st.started))
}

func (s *Service) enrich(ctx context.Context, log *slog.Logger, st *runState, req Request) {
	if len(req.Photo) == 0 {
		return
	}
	if s.opts.Enricher == nil {
		log.DebugContext(ctx, "Photo attached but no enricher configured")
		return
	}

	text, err := s.opts.Enricher.Describe(ctx, req.Photo, req.PhotoMIME)
	if err != nil {
		log.WarnContext(ctx, "Photo enrichment unavailable", "error", err)
		st.Errors = append(st.Errors, fmt.Sprintf("enrichment: %v", err))
		return
	}
	if text == "" {
		return
	}

	st.Enrichment = text
	st.PersonInfo = st.PersonInfo + "\n" + text
	log.InfoContext(ctx, "Person info enriched from photo", "length", len(text))
}

func (s *Service) personasFor(ctx context.Context, log *slog.Logger, st *runState, req Request) *orchestrator.Orchestrator {
	if s.opts.Selector == nil {
		return s.orchestrator
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = persona.DetectRecipient(st.PersonInfo, s.opts.DefaultRecipient)
	}
	st.Recipient = recipient

	sub := s.orchestrator.Subset(s.opts.Selector.Select(ctx, st.PersonInfo, recipient))
	if len(sub.Personas()) == 0 {
		log.WarnContext(ctx, "Selected personas are not configured, running all", "recipient", recipient)
		return s.orchestrator
	}

	return sub
}

func (s *Service) selectTop(ctx context.Context, st *runState) (top []aggregate.RankedGift, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("aggregation panicked: %v", r)
		}
	}()
	return s.aggregator.SelectTop(ctx, st.Verdicts, st.Catalog), nil
}
