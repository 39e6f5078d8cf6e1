package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/persona"
)

func vote(id persona.ID, giftName string, value float64) persona.Verdict {
	identity, _ := persona.Lookup(id)
	return persona.Verdict{
		Persona:   id,
		Gift:      giftName,
		Rationale: "test",
		Metric:    persona.Metric{Field: identity.MetricField, Value: value, Present: true},
	}
}

const (
	bikeComputer = "Умный велокомпьютер"
	headphones   = "Беспроводные наушники с шумоподавлением"
	fitness      = "Фитнес-браслет или умные часы"
	coffee       = "Портативная кофеварка для путешествий"
	massage      = "Абонемент на массаж"
)

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verdict persona.Verdict
		want    float64
	}{
		{"percent metric", vote(persona.PraktikBot, "x", 85), 85},
		{"roi scaled", vote(persona.FinExpert, "x", 3.2), 64},
		{"roi capped", vote(persona.FinExpert, "x", 9), 100},
		{"missing metric", persona.Verdict{Persona: persona.WowFactor, Metric: persona.Metric{Field: "степень_восторга_процент"}}, DefaultScore},
		{"missing roi metric", persona.Verdict{Persona: persona.FinExpert}, DefaultScore},
		{"roi fallback", persona.FallbackVerdict(mustIdentity(persona.FinExpert), "x"), 50},
		{"unknown persona keeps raw", persona.Verdict{Persona: "other", Metric: persona.Metric{Value: 42, Present: true}}, 42},
		{"percent above range clamped", vote(persona.WowFactor, "x", 450), 100},
		{"negative roi clamped", vote(persona.FinExpert, "x", -4), 0},
		{"unknown persona clamped", persona.Verdict{Persona: "other", Metric: persona.Metric{Value: -7, Present: true}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Score(tt.verdict), 1e-9)
		})
	}
}

func mustIdentity(id persona.ID) persona.Identity {
	i, _ := persona.Lookup(id)
	return i
}

func TestSelectTopVoteCountDominatesMean(t *testing.T) {
	t.Parallel()

	verdicts := []persona.Verdict{
		vote(persona.PraktikBot, fitness, 85),
		vote(persona.HobbyHunter, bikeComputer, 90),
		vote(persona.WowFactor, fitness, 90),
		vote(persona.UniversalGuru, fitness, 80),
		vote(persona.TechGuru, bikeComputer, 95),
		vote(persona.SurpriseMaster, fitness, 88),
	}

	got := New(nil).SelectTop(context.Background(), verdicts, gift.FallbackCatalog())
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, fitness, got[0].Gift.Name)
	assert.Equal(t, 4, got[0].Votes)
	assert.Equal(t, 85.75, got[0].MeanScore)
	assert.Equal(t, []persona.ID{persona.PraktikBot, persona.WowFactor, persona.UniversalGuru, persona.SurpriseMaster}, got[0].Personas)
	assert.Equal(t, []Vote{
		{persona.PraktikBot, 85}, {persona.WowFactor, 90}, {persona.UniversalGuru, 80}, {persona.SurpriseMaster, 88},
	}, got[0].Scores)

	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, bikeComputer, got[1].Gift.Name)
	assert.Equal(t, 2, got[1].Votes)
	assert.Equal(t, 92.5, got[1].MeanScore)
	assert.Equal(t, "6000 - 15000", got[1].Gift.Cost)
}

func TestSelectTopSingleVoters(t *testing.T) {
	t.Parallel()

	catalog := gift.FallbackCatalog()

	t.Run("highest single scores win", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, coffee, 80),
			vote(persona.WowFactor, massage, 95),
			vote(persona.TechGuru, headphones, 90),
		}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, massage, got[0].Gift.Name)
		assert.Equal(t, headphones, got[1].Gift.Name)
	})

	t.Run("equal scores prefer catalog relevance", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, coffee, 80),
			vote(persona.WowFactor, massage, 80),
			vote(persona.TechGuru, headphones, 80),
		}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, headphones, got[0].Gift.Name)
		assert.Equal(t, coffee, got[1].Gift.Name)
	})

	t.Run("full ties keep first vote order", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, massage, 70),
			vote(persona.WowFactor, coffee, 70),
		}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, massage, got[0].Gift.Name)
		assert.Equal(t, coffee, got[1].Gift.Name)
	})
}

func TestSelectTopBackfill(t *testing.T) {
	t.Parallel()

	three := gift.FallbackCatalog()[:3]

	t.Run("unanimous vote backfills second slot", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, headphones, 80),
			vote(persona.WowFactor, headphones, 90),
			vote(persona.TechGuru, headphones, 70),
		}, three)
		require.Len(t, got, 2)
		assert.Equal(t, headphones, got[0].Gift.Name)
		assert.Equal(t, 3, got[0].Votes)
		assert.Equal(t, 80.0, got[0].MeanScore)

		assert.Equal(t, 2, got[1].Rank)
		assert.Equal(t, bikeComputer, got[1].Gift.Name)
		assert.Equal(t, 0, got[1].Votes)
		assert.Equal(t, BackfillScore, got[1].MeanScore)
		assert.Equal(t, []persona.ID{BackfillTag}, got[1].Personas)
		assert.Empty(t, got[1].Scores)
	})

	t.Run("no verdicts", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), nil, three)
		require.Len(t, got, 2)
		assert.Equal(t, bikeComputer, got[0].Gift.Name)
		assert.Equal(t, headphones, got[1].Gift.Name)
	})

	t.Run("single entry catalog", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, bikeComputer, 80),
		}, three[:1])
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].Votes)
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, bikeComputer, 80),
		}, nil)
		assert.Empty(t, got)
	})
}

func TestSelectTopUnknownNames(t *testing.T) {
	t.Parallel()

	catalog := gift.FallbackCatalog()

	t.Run("unresolved group is skipped", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, "Велосипед", 90),
			vote(persona.WowFactor, "Велосипед", 90),
			vote(persona.TechGuru, "Велосипед", 90),
			vote(persona.HobbyHunter, massage, 60),
		}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, massage, got[0].Gift.Name)
		assert.Equal(t, 1, got[0].Votes)
		assert.Equal(t, bikeComputer, got[1].Gift.Name)
		assert.Equal(t, []persona.ID{BackfillTag}, got[1].Personas)
	})

	t.Run("case variants merge into one group", func(t *testing.T) {
		t.Parallel()
		got := New(nil).SelectTop(context.Background(), []persona.Verdict{
			vote(persona.PraktikBot, " абонемент на МАССАЖ", 70),
			vote(persona.WowFactor, headphones, 99),
			vote(persona.TechGuru, massage, 90),
		}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, massage, got[0].Gift.Name)
		assert.Equal(t, 2, got[0].Votes)
		assert.Equal(t, 80.0, got[0].MeanScore)
		assert.Equal(t, headphones, got[1].Gift.Name)
	})
}

func TestSelectTopRoundsMean(t *testing.T) {
	t.Parallel()

	got := New(nil).SelectTop(context.Background(), []persona.Verdict{
		vote(persona.PraktikBot, massage, 70),
		vote(persona.WowFactor, massage, 80),
		vote(persona.TechGuru, massage, 81),
	}, gift.FallbackCatalog())
	require.NotEmpty(t, got)
	assert.Equal(t, 77.0, got[0].MeanScore)

	got = New(nil).SelectTop(context.Background(), []persona.Verdict{
		vote(persona.PraktikBot, massage, 70),
		vote(persona.WowFactor, massage, 80),
		vote(persona.TechGuru, massage, 81.5),
	}, gift.FallbackCatalog())
	assert.Equal(t, 77.17, got[0].MeanScore)
}

func TestSelectTopOutOfRangeMetrics(t *testing.T) {
	t.Parallel()

	validated := func(id persona.ID, raw float64) persona.Verdict {
		identity := mustIdentity(id)
		v, err := persona.ValidateVerdict(map[string]any{
			persona.KeyChosenGift: massage,
			persona.KeyRationale:  "test",
			identity.MetricField:  raw,
		}, identity)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name     string
		verdicts []persona.Verdict
		want     float64
	}{
		{
			name:     "validated above range uses default",
			verdicts: []persona.Verdict{validated(persona.WowFactor, 450), validated(persona.PraktikBot, 85)},
			want:     80,
		},
		{
			name:     "validated negative roi uses default",
			verdicts: []persona.Verdict{validated(persona.FinExpert, -4), validated(persona.PraktikBot, 85)},
			want:     80,
		},
		{
			name:     "raw above range clamped",
			verdicts: []persona.Verdict{vote(persona.WowFactor, massage, 450), vote(persona.PraktikBot, massage, 100)},
			want:     100,
		},
		{
			name:     "raw negative clamped",
			verdicts: []persona.Verdict{vote(persona.FinExpert, massage, -4), vote(persona.PraktikBot, massage, 0)},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := New(nil).SelectTop(context.Background(), tt.verdicts, gift.FallbackCatalog())
			require.NotEmpty(t, got)
			assert.Equal(t, massage, got[0].Gift.Name)
			assert.InDelta(t, tt.want, got[0].MeanScore, 1e-9)
		})
	}
}
