// Package orchestrator fans a catalog out to every persona evaluator and
// collects their verdicts.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/persona"
)

// Evaluator is the per-persona step run concurrently by the orchestrator.
type Evaluator interface {
	Identity() persona.Identity
	Evaluate(ctx context.Context, personInfo string, catalog []gift.Record) persona.Verdict
}

// Verdicts holds one verdict per evaluator, in evaluator order.
type Verdicts []persona.Verdict

// Map indexes the verdicts by persona id.
func (v Verdicts) Map() map[persona.ID]persona.Verdict {
	m := make(map[persona.ID]persona.Verdict, len(v))
	for _, verdict := range v {
		m[verdict.Persona] = verdict
	}
	return m
}

// Fallbacks counts substituted verdicts.
func (v Verdicts) Fallbacks() int {
	n := 0
	for _, verdict := range v {
		if verdict.Fallback {
			n++
		}
	}
	return n
}

// Orchestrator runs a fixed set of evaluators.
type Orchestrator struct {
	evaluators []Evaluator
	log        *slog.Logger
}

// New creates an Orchestrator over evaluators.
func New(evaluators []Evaluator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{evaluators: evaluators, log: logger.With("component", "orchestrator")}
}

// Personas lists the evaluator ids in run order.
func (o *Orchestrator) Personas() []persona.ID {
	ids := make([]persona.ID, len(o.evaluators))
	for i, e := range o.evaluators {
		ids[i] = e.Identity().ID
	}
	return ids
}

// Subset returns an orchestrator restricted to ids, keeping the current order.
// Ids without an evaluator are ignored.
func (o *Orchestrator) Subset(ids []persona.ID) *Orchestrator {
	want := make(map[persona.ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var picked []Evaluator
	for _, e := range o.evaluators {
		if want[e.Identity().ID] {
			picked = append(picked, e)
		}
	}

	return &Orchestrator{evaluators: picked, log: o.log}
}

// EvaluateAll runs every evaluator concurrently against the same input and
// waits for all of them. A panicking evaluator is replaced by its fallback
// verdict; siblings are never cancelled.
func (o *Orchestrator) EvaluateAll(ctx context.Context, personInfo string, catalog []gift.Record) Verdicts {
	start := time.Now()
	out := make(Verdicts, len(o.evaluators))

	var g errgroup.Group
	for i, e := range o.evaluators {
		g.Go(func() error {
			out[i] = o.evaluateOne(ctx, e, personInfo, catalog)
			return nil
		})
	}
	_ = g.Wait()

	o.log.InfoContext(ctx, "All personas evaluated",
		"count", len(out), "fallbacks", out.Fallbacks(), "duration", time.Since(start))
	return out
}

func (o *Orchestrator) evaluateOne(ctx context.Context, e Evaluator, personInfo string, catalog []gift.Record) (v persona.Verdict) {
	identity := e.Identity()

	defer func() {
		if r := recover(); r != nil {
			o.log.ErrorContext(ctx, "Persona evaluator panicked", "persona", string(identity.ID), "panic", fmt.Sprint(r))
			var first string
			if len(catalog) > 0 {
				first = catalog[0].Name
			}
			v = persona.FallbackVerdict(identity, first)
		}
	}()

	return e.Evaluate(ctx, personInfo, catalog)
}
