// Package main contains the entrypoint for the gift recommendation Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/popov-vn/ai-agent/internal/bot"
	"github.com/popov-vn/ai-agent/internal/bot/handlers"
	"github.com/popov-vn/ai-agent/internal/bot/tasks"
	"github.com/popov-vn/ai-agent/internal/config"
	"github.com/popov-vn/ai-agent/internal/database"
	"github.com/popov-vn/ai-agent/internal/llm"
	"github.com/popov-vn/ai-agent/internal/logger"
	"github.com/popov-vn/ai-agent/internal/market"
	"github.com/popov-vn/ai-agent/internal/pipeline"
	"github.com/popov-vn/ai-agent/internal/profiler"
	"github.com/popov-vn/ai-agent/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, history store, completion clients, the pipeline
// and the Telegram front end, then blocks until shutdown. It returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	if cfg.Telegram.Token == "" {
		log.Error("telegram.token is required to run the bot")
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path, log)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db, log)
	store := database.NewStore(db, log)

	client, err := llm.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize completion client", "provider", cfg.LLM.Provider, "error", err)
		return 1
	}

	var enricher pipeline.Enricher
	prof, err := profiler.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize photo profiler", "backend", cfg.Profiler.Backend, "error", err)
		return 1
	}
	if prof != nil {
		enricher = prof
	}

	svc, err := pipeline.NewFromConfig(cfg.Pipeline, client, enricher, log)
	if err != nil {
		log.Error("Failed to build recommendation pipeline", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Pipeline: svc,
		Prices:   market.NewOzonScraper(cfg.Market, log),
		Limiter:  handlers.NewUserLimiter(cfg.Telegram.RateLimitPerMinute),
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	commands := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, commands); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg, log, commands); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
