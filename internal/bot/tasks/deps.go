// Package tasks implements the scheduled housekeeping jobs of the bot: SQLite
// maintenance and history retention.
package tasks

import (
	"log/slog"

	"github.com/popov-vn/ai-agent/internal/config"
	"github.com/popov-vn/ai-agent/internal/database"
)

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
