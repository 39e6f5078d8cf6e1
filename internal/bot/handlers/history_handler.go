package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/popov-vn/ai-agent/internal/database"
)

// HistoryLimit is how many past recommendations /history shows.
const HistoryLimit = 5

// NewHistoryHandler returns a handler for /history.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if h.deps.Store == nil {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.HistoryEmpty)
		return
	}

	recs, err := h.deps.Store.RecentRecommendations(ctx, update.Message.From.ID, HistoryLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load history", "error", err, "user_id", update.Message.From.ID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	reply(ctx, b, log, chatID, historyText(h.deps.Config.Messages.HistoryHeader, h.deps.Config.Messages.HistoryEmpty, recs))
}

// historyText renders one line per recommendation, newest first.
func historyText(header, empty string, recs []database.Recommendation) string {
	if len(recs) == 0 {
		return empty
	}

	var sb strings.Builder
	sb.WriteString(header)
	for _, rec := range recs {
		gifts, err := rec.Gifts()
		if err != nil {
			continue
		}
		names := make([]string, 0, len(gifts))
		for _, g := range gifts {
			names = append(names, g.Name)
		}
		if len(names) == 0 {
			names = append(names, "—")
		}
		sb.WriteString("\n📅 ")
		sb.WriteString(rec.CreatedAt.Local().Format("02.01.2006 15:04"))
		sb.WriteString(" - ")
		sb.WriteString(strings.Join(names, "; "))
	}

	return sb.String()
}
