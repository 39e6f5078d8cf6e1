package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/popov-vn/ai-agent/internal/format"
	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/pipeline"
)

// NewRecommendHandler returns the default handler: every non-command text,
// caption or photo is treated as a description of the gift recipient.
func NewRecommendHandler(deps HandlerDeps) bot.HandlerFunc {
	return recommendHandler{deps}.Handle
}

type recommendHandler struct {
	deps HandlerDeps
}

func (h recommendHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "recommend")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update without message or sender", "update_id", update.ID)
		return
	}
	chatID := msg.Chat.ID
	text := messageText(msg)

	if strings.HasPrefix(text, "/") {
		log.InfoContext(ctx, "Unknown command", "chat_id", chatID, "command", strings.Fields(text)[0])
		reply(ctx, b, log, chatID, h.deps.Config.Messages.Help)
		return
	}

	info, err := gift.ValidatePersonInfo(text)
	if err != nil {
		log.InfoContext(ctx, "Rejected person info", "chat_id", chatID, "reason", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.InvalidInput)
		return
	}

	req := pipeline.Request{PersonInfo: info}
	if photo, ok := largestPhoto(msg.Photo); ok {
		data, mime, err := downloadFile(ctx, b, photo.FileID)
		if err != nil {
			log.WarnContext(ctx, "Photo download failed, continuing with text only", "error", err, "chat_id", chatID)
		} else {
			req.Photo, req.PhotoMIME = data, mime
		}
	}

	progress, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            h.deps.Config.Messages.Analyzing,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to send progress message", "error", err, "chat_id", chatID)
	}
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	res := h.deps.Pipeline.Run(ctx, req)
	log.InfoContext(ctx, "Recommendation ready",
		"chat_id", chatID,
		"run_id", res.RunID,
		"stage", res.Stage,
		"degraded", res.Degraded(),
		"duration", res.Duration)

	if progress != nil {
		if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: progress.ID}); err != nil {
			log.DebugContext(ctx, "Failed to delete progress message", "error", err)
		}
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               format.HTML(res),
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
		ReplyParameters:    &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send recommendation", "error", err, "chat_id", chatID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	h.saveHistory(ctx, chatID, msg.From.ID, res)
}

func (h recommendHandler) saveHistory(ctx context.Context, chatID, userID int64, res pipeline.Result) {
	log := h.deps.Logger.With("handler", "recommend")
	if h.deps.Store == nil {
		return
	}

	rec, err := historyRecord(chatID, userID, res)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build history record", "error", err)
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dbSaveTimeout)
	defer cancel()
	if err := h.deps.Store.SaveRecommendation(saveCtx, rec); err != nil {
		log.ErrorContext(ctx, "Failed to save recommendation history", "error", err, "run_id", res.RunID)
	}
}
