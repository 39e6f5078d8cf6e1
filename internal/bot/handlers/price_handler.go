package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/popov-vn/ai-agent/internal/market"
)

// NewPriceHandler returns a handler for "/price <product>" that reports the
// Ozon price spread of the product.
func NewPriceHandler(deps HandlerDeps) bot.HandlerFunc {
	return priceHandler{deps}.Handle
}

type priceHandler struct {
	deps HandlerDeps
}

func (h priceHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "price")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	product := commandArgs(update.Message.Text)
	if product == "" {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.PriceUsage)
		return
	}
	if h.deps.Prices == nil {
		log.WarnContext(ctx, "Price lookup requested but no price finder is configured")
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	ctx, cancel := context.WithTimeout(ctx, h.deps.Config.Market.PriceTimeout)
	defer cancel()

	r, err := h.deps.Prices.PriceRange(ctx, product)
	switch {
	case errors.Is(err, market.ErrNoPrices):
		log.InfoContext(ctx, "No prices found", "product", product)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.PriceNotFound)
	case err != nil:
		log.ErrorContext(ctx, "Price lookup failed", "error", err, "product", product)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
	default:
		log.InfoContext(ctx, "Price range found", "product", product, "min", r.Min, "max", r.Max, "samples", r.Samples)
		reply(ctx, b, log, chatID, r.String())
	}
}
