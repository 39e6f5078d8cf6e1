package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/popov-vn/ai-agent/internal/config"
)

// newHistoryRetentionTask deletes recommendations older than the configured retention.
func newHistoryRetentionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", HistoryRetention)

	return func(ctx context.Context) error {
		retention := deps.Config.Database.HistoryRetention
		if retention <= 0 {
			retention = config.DefaultHistoryTTL
		}
		cutoff := time.Now().Add(-retention)

		deleted, err := deps.Store.DeleteRecommendationsBefore(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "History cleanup failed", "error", err, "cutoff", cutoff)
			return fmt.Errorf("history retention failed: %w", err)
		}

		log.InfoContext(ctx, "History cleanup completed", "deleted", deleted, "retention", retention)
		return nil
	}
}
