package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature shared by all scheduled tasks. The
// context provided by the scheduler must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Definition binds a task function to its cron schedule.
type Definition struct {
	Schedule string
	Run      ScheduledTaskFunc
}

// RegisterAllTasks initializes and returns a map of all scheduled tasks
// keyed by task name.
func RegisterAllTasks(deps TaskDeps) map[string]Definition {
	tasks := make(map[string]Definition)

	tasks["db_maintenance"] = Definition{
		Schedule: deps.Config.Scheduler.MaintenanceSchedule,
		Run:      newMaintenanceTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
