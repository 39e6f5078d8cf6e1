// Package format renders pipeline results for people: a plain-text report
// for the console and a compact HTML reply for Telegram.
package format

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/popov-vn/ai-agent/internal/aggregate"
	"github.com/popov-vn/ai-agent/internal/market"
	"github.com/popov-vn/ai-agent/internal/persona"
	"github.com/popov-vn/ai-agent/internal/pipeline"
	"github.com/popov-vn/ai-agent/internal/sanitize"
)

// MaxHTMLRecommendations caps the entries in a Telegram reply.
const MaxHTMLRecommendations = 2

const (
	wideRule   = 60
	personRule = 30
	listRule   = 40
)

// Medal returns the medal emoji for a rank.
func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	default:
		return "🥉"
	}
}

// Score prints a score without trailing zeros.
func Score(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Voters returns the display names of the personas behind a ranked gift.
func Voters(g aggregate.RankedGift) []string {
	names := make([]string, len(g.Personas))
	for i, id := range g.Personas {
		names[i] = persona.DisplayName(id)
	}
	return names
}

// Text renders the full report: personas, generated catalog and final picks.
func Text(res pipeline.Result) string {
	var sb strings.Builder
	rule := strings.Repeat("=", wideRule)

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("🎁 СИСТЕМА ВЫБОРА ПОДАРКОВ - РЕЗУЛЬТАТЫ\n")
	sb.WriteString(rule + "\n\n")

	if len(res.Personas) > 0 {
		names := make([]string, len(res.Personas))
		for i, id := range res.Personas {
			names[i] = persona.DisplayName(id)
		}
		sb.WriteString("🤖 УЧАСТВОВАВШИЕ ИИ-АГЕНТЫ:\n")
		sb.WriteString(strings.Repeat("-", personRule) + "\n")
		fmt.Fprintf(&sb, "Всего агентов: %d\n", len(res.Personas))
		fmt.Fprintf(&sb, "Агенты: %s\n\n", strings.Join(names, ", "))
	}

	sb.WriteString("📝 СГЕНЕРИРОВАННЫЙ СПИСОК ПОДАРКОВ:\n")
	sb.WriteString(strings.Repeat("-", listRule) + "\n")
	for i, rec := range res.Catalog {
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, rec.Name)
		fmt.Fprintf(&sb, "    💰 %s₽ | ⭐ %d/10\n", rec.Cost, rec.Relevance)
	}

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("🏆 ФИНАЛЬНЫЕ РЕКОМЕНДАЦИИ ИИ-АГЕНТОВ\n")
	sb.WriteString(rule + "\n\n")

	for _, g := range res.Top {
		fmt.Fprintf(&sb, "%s МЕСТО #%d: %s\n", Medal(g.Rank), g.Rank, g.Gift.Name)
		sb.WriteString(strings.Repeat("-", utf8.RuneCountInString(g.Gift.Name)+15) + "\n")
		fmt.Fprintf(&sb, "📝 Описание: %s\n", g.Gift.Description)
		fmt.Fprintf(&sb, "💰 Стоимость: %s₽\n", g.Gift.Cost)
		fmt.Fprintf(&sb, "⭐ Релевантность: %d/10\n", g.Gift.Relevance)
		fmt.Fprintf(&sb, "🎯 Средний балл ИИ: %s/100\n", Score(g.MeanScore))
		fmt.Fprintf(&sb, "🗳️  Голосов агентов: %d\n", g.Votes)
		fmt.Fprintf(&sb, "🤖 Выбрали агенты: %s\n", strings.Join(Voters(g), ", "))

		if len(g.Scores) > 0 {
			sb.WriteString("📊 Детальные оценки агентов:\n")
			for _, v := range g.Scores {
				fmt.Fprintf(&sb, "     • %s: %s\n", persona.DisplayName(v.Persona), Score(v.Score))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(rule + "\n")
	sb.WriteString("✨ Анализ завершен! Приятного выбора подарка! ✨\n")
	sb.WriteString(rule + "\n")

	return sb.String()
}

// HTML renders the Telegram reply (parse mode HTML) with marketplace links.
func HTML(res pipeline.Result) string {
	var sb strings.Builder

	if len(res.Top) == 0 {
		return "😔 Не удалось подобрать подарок. Попробуй описать человека подробнее."
	}

	sb.WriteString("🎁 <b>Мои рекомендации</b>\n\n")

	for i, g := range res.Top {
		if i == MaxHTMLRecommendations {
			break
		}
		fmt.Fprintf(&sb, "%s <b>%s</b>\n", Medal(g.Rank), html.EscapeString(g.Gift.Name))
		if desc := sanitize.PlainText(g.Gift.Description); desc != "" {
			sb.WriteString(html.EscapeString(desc) + "\n")
		}
		fmt.Fprintf(&sb, "💰 %s ₽ · ⭐ %d/10\n", html.EscapeString(g.Gift.Cost), g.Gift.Relevance)
		if g.Votes > 0 {
			fmt.Fprintf(&sb, "🎯 %s/100 · голосов: %d (%s)\n", Score(g.MeanScore), g.Votes, html.EscapeString(strings.Join(Voters(g), ", ")))
		}

		links := market.Links(g.Gift)
		anchors := make([]string, len(links))
		for j, l := range links {
			anchors[j] = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(l.URL), l.Marketplace)
		}
		fmt.Fprintf(&sb, "🛒 %s\n\n", strings.Join(anchors, " | "))
	}

	if res.Degraded() {
		sb.WriteString("<i>⚠️ Часть сервисов недоступна, подборка сделана в упрощённом режиме.</i>\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
