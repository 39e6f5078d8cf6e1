package persona

import (
	"fmt"
	"strings"
)

const baseStructure = `ИНФОРМАЦИЯ О ЧЕЛОВЕКЕ:
%s

СПИСОК ПОДАРКОВ:
%s

🔥 КРИТИЧЕСКИ ВАЖНО: Твой ответ должен быть СТРОГО в формате JSON объекта.
❗ НЕ добавляй никакого текста до или после JSON
❗ Отвечай ТОЛЬКО чистым JSON объектом
`

// Prompt renders the evaluation prompt for identity.
func Prompt(identity Identity, personInfo, catalog string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, baseStructure, personInfo, catalog)
	sb.WriteString(identity.Intro + "\n")
	sb.WriteString(identity.Task + "\n\n")
	sb.WriteString("Ответь JSON объектом:\n{\n")
	fmt.Fprintf(&sb, "  %q: \"точное название подарка из списка\",\n", KeyChosenGift)
	fmt.Fprintf(&sb, "  %q: %q,\n", KeyRationale, identity.RationaleHint)
	fmt.Fprintf(&sb, "  %q: %s\n}", identity.MetricField, identity.MetricHint)
	return sb.String()
}
