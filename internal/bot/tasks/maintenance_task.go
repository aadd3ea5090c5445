package tasks

import (
	"context"
	"fmt"
	"time"
)

// newMaintenanceTask creates the scheduled task that prunes messages past
// the retention window and then compacts the database.
func newMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "db_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled database maintenance...")
		startTime := time.Now()

		cutoff := time.Now().UTC().Add(-deps.Config.Database.Retention)
		pruned, err := deps.Store.PruneMessages(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Message pruning failed", "error", err)
			return fmt.Errorf("message pruning failed: %w", err)
		}

		if err := deps.Store.RunMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Database maintenance failed", "error", err)
			return fmt.Errorf("database maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled database maintenance completed",
			"pruned", pruned, "duration", time.Since(startTime))
		return nil
	}
}
