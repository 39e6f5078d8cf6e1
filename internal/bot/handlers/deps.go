package handlers

import (
	"context"
	"log/slog"

	"github.com/popov-vn/ai-agent/internal/config"
	"github.com/popov-vn/ai-agent/internal/database"
	"github.com/popov-vn/ai-agent/internal/market"
	"github.com/popov-vn/ai-agent/internal/pipeline"
)

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
}

// PriceFinder looks up the live price spread of a product.
type PriceFinder interface {
	PriceRange(ctx context.Context, product string) (market.PriceRange, error)
}

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Pipeline Recommender
	Prices   PriceFinder
	// Limiter throttles expensive requests per user; nil disables throttling.
	Limiter *UserLimiter
}
