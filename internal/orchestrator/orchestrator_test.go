package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/llm"
	"github.com/popov-vn/ai-agent/internal/persona"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type funcEvaluator struct {
	identity persona.Identity
	fn       func(ctx context.Context) persona.Verdict
}

func (f funcEvaluator) Identity() persona.Identity { return f.identity }

func (f funcEvaluator) Evaluate(ctx context.Context, _ string, _ []gift.Record) persona.Verdict {
	return f.fn(ctx)
}

func mustLookup(t *testing.T, id persona.ID) persona.Identity {
	t.Helper()
	i, ok := persona.Lookup(id)
	require.True(t, ok)
	return i
}

func TestEvaluateAllRunsConcurrently(t *testing.T) {
	t.Parallel()

	ids := []persona.ID{persona.PraktikBot, persona.FinExpert, persona.WowFactor, persona.TechGuru}

	var started sync.WaitGroup
	started.Add(len(ids))
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	evaluators := make([]Evaluator, len(ids))
	for i, id := range ids {
		identity := mustLookup(t, id)
		evaluators[i] = funcEvaluator{identity: identity, fn: func(context.Context) persona.Verdict {
			started.Done()
			select {
			case <-allStarted:
			case <-time.After(5 * time.Second):
				t.Error("evaluators did not run concurrently")
			}
			return persona.Verdict{Persona: identity.ID, Gift: "Книга"}
		}}
	}

	got := New(evaluators, nil).EvaluateAll(context.Background(), "info", gift.FallbackCatalog())
	require.Len(t, got, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, got[i].Persona)
	}
	assert.Len(t, got.Map(), len(ids))
}

func TestEvaluateAllIsolatesFailures(t *testing.T) {
	t.Parallel()

	catalog := gift.FallbackCatalog()
	failing := llm.ClientFunc(func(context.Context, string) (string, error) {
		return "", errors.New("provider down")
	})
	working := llm.ClientFunc(func(context.Context, string) (string, error) {
		return `{"выбранный_подарок": "Абонемент на массаж", "обоснование": "отдых", "степень_восторга_процент": 91}`, nil
	})

	evaluators := []Evaluator{
		persona.NewEvaluator(mustLookup(t, persona.PraktikBot), failing, nil),
		persona.NewEvaluator(mustLookup(t, persona.WowFactor), working, nil),
		funcEvaluator{identity: mustLookup(t, persona.FinExpert), fn: func(context.Context) persona.Verdict {
			panic("programming error")
		}},
	}

	got := New(evaluators, nil).EvaluateAll(context.Background(), "info", catalog)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got.Fallbacks())

	byID := got.Map()
	assert.True(t, byID[persona.PraktikBot].Fallback)
	assert.Equal(t, catalog[0].Name, byID[persona.PraktikBot].Gift)

	assert.False(t, byID[persona.WowFactor].Fallback)
	assert.Equal(t, "Абонемент на массаж", byID[persona.WowFactor].Gift)
	assert.InDelta(t, 91, byID[persona.WowFactor].Metric.Value, 1e-9)

	assert.True(t, byID[persona.FinExpert].Fallback)
	assert.Equal(t, 2.5, byID[persona.FinExpert].Metric.Value)
}

func TestEvaluateAllEmpty(t *testing.T) {
	t.Parallel()

	got := New(nil, nil).EvaluateAll(context.Background(), "info", nil)
	assert.Empty(t, got)
}

func TestSubset(t *testing.T) {
	t.Parallel()

	var evaluators []Evaluator
	for _, identity := range persona.All() {
		evaluators = append(evaluators, funcEvaluator{identity: identity})
	}
	o := New(evaluators, nil)
	assert.Len(t, o.Personas(), 19)

	sub := o.Subset([]persona.ID{persona.TechGuru, persona.PraktikBot, "unknown"})
	assert.Equal(t, []persona.ID{persona.PraktikBot, persona.TechGuru}, sub.Personas())
}
