package tasks

import "context"

// ScheduledTaskFunc is the signature of every scheduled task. The context is
// cancelled when the scheduler shuts down.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names as used under scheduler.tasks in the configuration.
const (
	SQLMaintenance   = "sql_maintenance"
	HistoryRetention = "history_retention"
)

// RegisterAllTasks returns every task keyed by its configuration name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenance:   newSQLMaintenanceTask(deps),
		HistoryRetention: newHistoryRetentionTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
