package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "plain", in: "Тёплый плед", want: "Тёплый плед"},
		{name: "emphasis", in: "**Отличный** выбор для _бегуна_", want: "Отличный выбор для бегуна"},
		{name: "list", in: "- около 30 лет\n- любит походы", want: "- около 30 лет\n- любит походы"},
		{name: "heading and paragraph", in: "## Итог\n\nПодойдёт книга", want: "Итог\n\nПодойдёт книга"},
		{name: "raw html dropped", in: "<b>жирный</b> текст", want: "жирный текст"},
		{name: "stray angle bracket", in: "a<b", want: "a<b"},
		{name: "ampersand", in: "чай & кофе", want: "чай & кофе"},
		{name: "link text kept", in: "[Ozon](https://ozon.ru) и WB", want: "Ozon и WB"},
		{name: "invisible chars", in: "под\u200bарок\ufeff", want: "подарок"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
