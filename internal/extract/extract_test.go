package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

func TestObject(t *testing.T) {
	t.Parallel()

	want := map[string]any{
		"выбранный_подарок": "Умный велокомпьютер",
		"обоснование":       "нравится кататься",
		"roi_индекс":        2.5,
	}
	payload := `{"выбранный_подарок": "Умный велокомпьютер", "обоснование": "нравится кататься", "roi_индекс": 2.5}`

	wrappers := map[string]string{
		"bare":               payload,
		"json fence":         "```json\n" + payload + "\n```",
		"plain fence":        "```\n" + payload + "\n```",
		"single line fence":  "```json " + payload + "```",
		"leading prose":      "Вот мой ответ:\n" + payload,
		"trailing prose":     payload + "\nНадеюсь, это поможет!",
		"prose and fence":    "Конечно!\n```json\n" + payload + "\n```\nУдачи.",
		"format block first": "Формат ответа:\n```\nвыбранный подарок\n```\nОтвет:\n```JSON\n" + payload + "\n```",
		"multiline":          "{\n  \"выбранный_подарок\": \"Умный велокомпьютер\",\n  \"обоснование\": \"нравится кататься\",\n  \"roi_индекс\": 2.5\n}",
	}

	for name, text := range wrappers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Object(text)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestObjectNested(t *testing.T) {
	t.Parallel()

	got, err := Object(`ответ: {"a": {"b": [1, 2]}, "c": "d"} и ещё {"x": 1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": []any{1.0, 2.0}}, "c": "d"}, got)
}

func TestArray(t *testing.T) {
	t.Parallel()

	text := "```json\n[\n {\"подарок\": \"Книга\", \"релевантность\": 8},\n {\"подарок\": \"Кофеварка\", \"релевантность\": \"7\"},\n \"мусор\"\n]\n```"

	got, err := Array(text)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Книга", got[0]["подарок"])
	assert.Equal(t, "7", got[1]["релевантность"])
	assert.Nil(t, got[2])
}

func TestArrayPrefersJSONFence(t *testing.T) {
	t.Parallel()

	text := "Формат ответа:\n```\nсписок подарков\n```\nОтвет:\n```json\n[{\"a\": 1}]\n```"

	got, err := Array(text)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"a": 1.0}}, got)
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name string
		text string
		fn   func(string) error
	}

	object := func(s string) error { _, err := Object(s); return err }
	array := func(s string) error { _, err := Array(s); return err }

	groups := map[string][]testCase{
		"Object": {
			{"empty", "", object},
			{"no braces", "просто текст", object},
			{"never closes", `{"a": {"b": 1}`, object},
			{"invalid json", `{'a': 1}`, object},
			{"trailing comma", `{"a": 1,}`, object},
		},
		"Array": {
			{"no brackets", `{"a": 1}`, array},
			{"never closes", `[{"a": 1}`, array},
			{"invalid json", `[1, 2,, 3]`, array},
		},
	}

	for group, cases := range groups {
		for _, tc := range cases {
			t.Run(group+"/"+tc.name, func(t *testing.T) {
				t.Parallel()
				err := tc.fn(tc.text)
				require.Error(t, err)
				assert.True(t, errs.IsParse(err))
			})
		}
	}
}

func TestTrimToObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already object", ` {"a": 1} tail}`, `{"a": 1} tail}`},
		{"prose around", `Ответ: {"a": {"b": 1}} спасибо`, `{"a": {"b": 1}}`},
		{"last brace wins", `x {"a": 1} y {"b": 2} z`, `{"a": 1} y {"b": 2}`},
		{"no braces", "  нет json  ", "нет json"},
		{"reversed", "} {", "} {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TrimToObject(tt.in))
		})
	}
}

func TestUnfence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[1]", Unfence("```json\n[1]\n```"))
	assert.Equal(t, "[1]", Unfence("```JSON [1]```"))
	assert.Equal(t, `{"a":1}`, Unfence("```\n{\"a\":1}"))
	assert.Equal(t, "text", Unfence("  text  "))
	assert.Equal(t, "[2]", Unfence("```\nпример\n```\n```json\n[2]\n```"))
}
