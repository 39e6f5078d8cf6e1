package pipeline

import (
	"time"

	"github.com/popov-vn/ai-agent/internal/aggregate"
	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/persona"
)

// Stage is a step of a single run.
type Stage string

const (
	StageInitialized       Stage = "INITIALIZED"
	StageCatalogGenerated  Stage = "CATALOG_GENERATED"
	StageCatalogFallback   Stage = "CATALOG_GENERATED_FALLBACK"
	StageAgentsEvaluated   Stage = "AGENTS_EVALUATED"
	StageFinalSelection    Stage = "FINAL_SELECTION_COMPLETED"
	StageSelectionFallback Stage = "FINAL_SELECTION_FALLBACK"
	StageEmergency         Stage = "EMERGENCY"
)

// Persona tags used for selections that did not come from votes.
const (
	FallbackSystemTag persona.ID = "fallback_system"
	EmergencyTag      persona.ID = "emergency_fallback"
)

// Request is the input of one run.
type Request struct {
	PersonInfo string
	Photo      []byte
	PhotoMIME  string
	// Recipient overrides keyword detection when the selector is enabled.
	Recipient string
}

// Result is what a run hands back to its caller. It is always usable.
type Result struct {
	RunID           string
	Stage           Stage
	Stages          []Stage
	PersonInfo      string
	Enrichment      string
	Recipient       string
	Catalog         []gift.Record
	CatalogFallback bool
	Personas        []persona.ID
	Verdicts        []persona.Verdict
	Top             []aggregate.RankedGift
	Errors          []string
	Duration        time.Duration
}

// Degraded reports whether the run had to substitute built-in content.
func (r Result) Degraded() bool {
	return r.CatalogFallback || r.Stage == StageSelectionFallback || r.Stage == StageEmergency
}

// runState threads the data of one invocation through the stages.
type runState struct {
	Result
	started time.Time
}

func (s *runState) advance(stage Stage) {
	s.Stage = stage
	s.Stages = append(s.Stages, stage)
}

// EmergencySelection is returned when no catalog is available or the run panics.
func EmergencySelection() []aggregate.RankedGift {
	return []aggregate.RankedGift{{
		Rank: 1,
		Gift: gift.Record{
			Name:        "Универсальный подарок (экстренный режим)",
			Description: "Подарок выбран экстренной системой",
			Cost:        "5000 - 15000",
			Relevance:   7,
		},
		MeanScore: aggregate.BackfillScore,
		Personas:  []persona.ID{EmergencyTag},
	}}
}

// FallbackSelection promotes the first catalog entry when aggregation fails.
func FallbackSelection(catalog []gift.Record) []aggregate.RankedGift {
	if len(catalog) == 0 {
		return EmergencySelection()
	}
	return []aggregate.RankedGift{{
		Rank:      1,
		Gift:      catalog[0],
		MeanScore: aggregate.BackfillScore,
		Personas:  []persona.ID{FallbackSystemTag},
	}}
}
