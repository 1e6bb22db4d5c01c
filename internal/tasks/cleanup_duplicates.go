package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CleanupDuplicatesTask prunes duplicate (user, book, list) entry rows across
// all users. The store tolerates duplicates and reads deduplicate regardless;
// this is hygiene, keeping the oldest row of each group.
type CleanupDuplicatesTask struct{}

// Config returns the queue configuration for duplicate cleanup tasks.
func (t CleanupDuplicatesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_duplicates",
		MaxAttempts: 2,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// userLister enumerates the users whose entries get pruned.
type userLister interface {
	UserIDs(ctx context.Context) ([]string, error)
}

// duplicatePruner removes surplus entry rows for one user.
type duplicatePruner interface {
	PruneDuplicates(ctx context.Context, userID string) (int64, error)
}

// CleanupDuplicatesProcessor creates the processor for CleanupDuplicatesTask.
func CleanupDuplicatesProcessor(users userLister, pruner duplicatePruner) backlite.QueueProcessor[CleanupDuplicatesTask] {
	return func(ctx context.Context, _ CleanupDuplicatesTask) error {
		ids, err := users.UserIDs(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		var pruned int64
		for _, userID := range ids {
			n, err := pruner.PruneDuplicates(ctx, userID)
			if err != nil {
				return fmt.Errorf("prune duplicates for %s: %w", userID, err)
			}
			pruned += n
		}

		if pruned > 0 {
			log.Printf("[TASK] Pruned %d duplicate reading-list rows across %d users", pruned, len(ids))
		}
		return nil
	}
}

// NewCleanupDuplicatesQueue creates a backlite queue for duplicate cleanup.
func NewCleanupDuplicatesQueue(users userLister, pruner duplicatePruner) backlite.Queue {
	return backlite.NewQueue(CleanupDuplicatesProcessor(users, pruner))
}
