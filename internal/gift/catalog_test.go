package gift

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackCatalog(t *testing.T) {
	t.Parallel()

	catalog := FallbackCatalog()
	require.Len(t, catalog, CatalogSize)

	seen := map[string]bool{}
	for _, r := range catalog {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Query)
		assert.GreaterOrEqual(t, r.Relevance, 1)
		assert.LessOrEqual(t, r.Relevance, 10)
		assert.False(t, seen[r.Name], "duplicate %q", r.Name)
		seen[r.Name] = true
	}

	catalog[0].Name = "changed"
	assert.Equal(t, "Умный велокомпьютер", FallbackCatalog()[0].Name)
}

func TestFormatCatalog(t *testing.T) {
	t.Parallel()

	got := FormatCatalog(FallbackCatalog()[:2])
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1. Умный велокомпьютер - Устройство для отслеживания маршрутов, скорости и других показателей во время велопрогулок - Стоимость: 6000 - 15000₽ - Релевантность: 9/10", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2. Беспроводные наушники с шумоподавлением - "))

	assert.Empty(t, FormatCatalog(nil))
}

func TestFind(t *testing.T) {
	t.Parallel()

	catalog := []Record{
		{Name: "Книга", Relevance: 5},
		{Name: "книга", Relevance: 6},
		{Name: "Абонемент на массаж", Relevance: 7},
	}

	tests := []struct {
		name      string
		query     string
		wantFound bool
		wantRel   int
	}{
		{"exact wins over fold", "книга", true, 6},
		{"exact first entry", "Книга", true, 5},
		{"case insensitive", "абонемент НА массаж", true, 7},
		{"trimmed", "  Абонемент на массаж ", true, 7},
		{"unknown", "Велосипед", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, ok := Find(catalog, tt.query)
			assert.Equal(t, tt.wantFound, ok)
			assert.Equal(t, tt.wantRel, rec.Relevance)
		})
	}
}
