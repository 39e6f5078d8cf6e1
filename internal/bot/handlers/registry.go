package handlers

import (
	"sort"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler binds a command to its handler, middleware and the
// description shown in the Telegram command menu.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Description string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns the bot commands keyed by "/name".
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	command := func(pattern, description string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Description: description,
			Handler:     h,
			Middleware:  mw,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	return map[string]RegisteredHandler{
		"/start":   command("start", "Начать подбор подарка", NewStartHandler(deps)),
		"/help":    command("help", "Как пользоваться ботом", NewHelpHandler(deps)),
		"/price":   command("price", "Диапазон цен на Ozon: /price <товар>", NewPriceHandler(deps), RateLimit(deps)),
		"/history": command("history", "Мои последние рекомендации", NewHistoryHandler(deps)),
	}
}

// NewDefaultHandler handles every update no command matched: descriptions of
// the gift recipient, with or without a photo.
func NewDefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return RateLimit(deps)(NewRecommendHandler(deps))
}

// BotCommands lists the registered commands for the Telegram menu, sorted by name.
func BotCommands(registered map[string]RegisteredHandler) []models.BotCommand {
	cmds := make([]models.BotCommand, 0, len(registered))
	for name, h := range registered {
		if h.Description == "" {
			continue
		}
		cmds = append(cmds, models.BotCommand{Command: strings.TrimPrefix(name, "/"), Description: h.Description})
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Command < cmds[j].Command })
	return cmds
}
