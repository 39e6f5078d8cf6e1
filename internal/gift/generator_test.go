package gift

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popov-vn/ai-agent/internal/llm"
)

const javaDeveloper = "Мужчина 37 лет, Java-программист, любит велопрогулки, спортзал и путешествия"

func TestGeneratorGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		reply        string
		err          error
		wantFallback bool
		wantNames    []string
	}{
		{
			name: "valid fenced array",
			reply: "Вот список:\n```json\n[" +
				`{"подарок": "Велосипедный замок", "описание": "Надёжный", "стоимость": "1500 - 4000", "релевантность": 8, "query": "велозамок"},` +
				`{"подарок": "Термокружка", "описание": "Для поездок", "стоимость": "800 - 2000", "релевантность": "7.0"}` +
				"]\n```",
			wantNames: []string{"Велосипедный замок", "Термокружка"},
		},
		{
			name: "invalid entries are skipped",
			reply: `[{"подарок": "Рюкзак", "описание": "Городской", "стоимость": "3000 - 9000", "релевантность": 8},` +
				`{"подарок": "Без релевантности", "описание": "", "стоимость": "1"},` +
				`{"подарок": "Слишком высокая", "описание": "", "стоимость": "1", "релевантность": 42},` +
				`"строка"]`,
			wantNames: []string{"Рюкзак"},
		},
		{
			name:         "completion failure",
			err:          errors.New("all retries exhausted"),
			wantFallback: true,
		},
		{
			name:         "prose only",
			reply:        "Извините, я не могу помочь с этим.",
			wantFallback: true,
		},
		{
			name:         "all records invalid",
			reply:        `[{"name": "wrong keys"}]`,
			wantFallback: true,
		},
		{
			name:         "empty array",
			reply:        `[]`,
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var prompt string
			client := llm.ClientFunc(func(_ context.Context, p string) (string, error) {
				prompt = p
				return tt.reply, tt.err
			})

			catalog, fallback := NewGenerator(client, nil).Generate(context.Background(), javaDeveloper)
			require.NotEmpty(t, catalog)
			assert.Equal(t, tt.wantFallback, fallback)
			assert.True(t, strings.Contains(prompt, javaDeveloper))

			if tt.wantFallback {
				assert.Equal(t, FallbackCatalog(), catalog)
				return
			}

			names := make([]string, len(catalog))
			for i, r := range catalog {
				names[i] = r.Name
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestGenerationPrompt(t *testing.T) {
	t.Parallel()

	p := GenerationPrompt("Женщина 28 лет, дизайнер")
	assert.Contains(t, p, "ИНФОРМАЦИЯ О ЧЕЛОВЕКЕ:\nЖенщина 28 лет, дизайнер\n")
	assert.Contains(t, p, `"релевантность": число_от_1_до_10`)
	assert.NotContains(t, p, "{person_info}")
}
