// Package aggregate merges persona verdicts into the final ranked gifts.
package aggregate

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/persona"
)

const (
	// TopN is the size of the final selection.
	TopN = 2
	// DefaultScore stands in for a missing, non-numeric or out-of-range metric.
	DefaultScore = 75.0
	// BackfillScore is assigned to catalog entries added without votes.
	BackfillScore = 75.0
	// BackfillTag marks a slot filled from the catalog rather than by votes.
	BackfillTag persona.ID = "auto-backfill"
)

// Vote is one persona's normalized score for a gift.
type Vote struct {
	Persona persona.ID
	Score   float64
}

// RankedGift is one entry of the final selection.
type RankedGift struct {
	Rank      int
	Gift      gift.Record
	MeanScore float64
	Votes     int
	Personas  []persona.ID
	Scores    []Vote
}

// Score resolves a verdict's normalized 0-100 score through the persona table.
func Score(v persona.Verdict) float64 {
	if !v.Metric.Present {
		return DefaultScore
	}
	identity, ok := persona.Lookup(v.Persona)
	if !ok {
		return persona.ClampScore(v.Metric.Value)
	}
	return identity.Normalize(v.Metric.Value)
}

// Engine ranks verdicts against the catalog.
type Engine struct {
	log *slog.Logger
}

// New creates an Engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{log: logger.With("component", "aggregator")}
}

type group struct {
	name     string
	record   gift.Record
	resolved bool
	votes    []Vote
	sum      float64
}

func (g *group) mean() float64 {
	if len(g.votes) == 0 {
		return 0
	}
	return g.sum / float64(len(g.votes))
}

// SelectTop returns up to TopN gifts. Groups are ordered by vote count, then
// mean score, then catalog relevance; remaining ties keep first-vote order.
// Votes for names missing from the catalog are counted but never emitted.
// Empty slots are backfilled from the catalog in order.
func (e *Engine) SelectTop(ctx context.Context, verdicts []persona.Verdict, catalog []gift.Record) []RankedGift {
	var groups []*group
	index := make(map[string]*group)

	for _, v := range verdicts {
		rec, ok := gift.Find(catalog, v.Gift)
		key := v.Gift
		if ok {
			key = rec.Name
		}

		g, seen := index[key]
		if !seen {
			g = &group{name: key, record: rec, resolved: ok}
			index[key] = g
			groups = append(groups, g)
		}

		score := Score(v)
		g.votes = append(g.votes, Vote{Persona: v.Persona, Score: score})
		g.sum += score
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if len(a.votes) != len(b.votes) {
			return len(a.votes) > len(b.votes)
		}
		if a.mean() != b.mean() {
			return a.mean() > b.mean()
		}
		return a.record.Relevance > b.record.Relevance
	})

	result := make([]RankedGift, 0, TopN)
	taken := make(map[string]bool, TopN)

	for _, g := range groups {
		if len(result) == TopN {
			break
		}
		if !g.resolved {
			e.log.WarnContext(ctx, "Skipping votes for gift missing from catalog", "gift", g.name, "votes", len(g.votes))
			continue
		}

		personas := make([]persona.ID, len(g.votes))
		for i, vote := range g.votes {
			personas[i] = vote.Persona
		}

		result = append(result, RankedGift{
			Rank:      len(result) + 1,
			Gift:      g.record,
			MeanScore: round2(g.mean()),
			Votes:     len(g.votes),
			Personas:  personas,
			Scores:    g.votes,
		})
		taken[g.record.Name] = true
	}

	for _, rec := range catalog {
		if len(result) == TopN {
			break
		}
		if taken[rec.Name] {
			continue
		}
		e.log.InfoContext(ctx, "Backfilling selection from catalog", "gift", rec.Name, "rank", len(result)+1)
		result = append(result, RankedGift{
			Rank:      len(result) + 1,
			Gift:      rec,
			MeanScore: BackfillScore,
			Personas:  []persona.ID{BackfillTag},
		})
		taken[rec.Name] = true
	}

	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
