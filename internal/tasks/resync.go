package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/database"
	"github.com/wasomaji/kitabu/internal/entities"
	"github.com/wasomaji/kitabu/internal/fallback"
	"github.com/wasomaji/kitabu/internal/resolve"
)

// ResyncUserTask drains one user's fallback snapshot into the primary store.
// Enqueued on a cron schedule while snapshots exist; each committed entry is
// dropped from the snapshot, each still-unresolvable one stays for the next
// run.
type ResyncUserTask struct {
	UserID string `json:"user_id"`
}

// Config returns the queue configuration for snapshot resync tasks.
func (t ResyncUserTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "resync_user",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// entryWriter is the slice of the annotations repository resync writes
// through.
type entryWriter interface {
	Create(ctx context.Context, userID, bookID string, listID *string, status entities.ReadingStatus) (*entities.ReadingListEntry, error)
}

// refResolver maps catalog references onto canonical book ids.
type refResolver interface {
	Resolve(ctx context.Context, ref catalog.BookRef) (string, error)
}

// ResyncUserProcessor creates the processor for ResyncUserTask.
func ResyncUserProcessor(snapshot *fallback.Store, store entryWriter, resolver refResolver) backlite.QueueProcessor[ResyncUserTask] {
	return func(ctx context.Context, task ResyncUserTask) error {
		cached, err := snapshot.Load(task.UserID)
		if err != nil {
			return fmt.Errorf("load snapshot for %s: %w", task.UserID, err)
		}
		if len(cached) == 0 {
			return nil
		}

		var drained []string
		kept := 0
		for _, ce := range cached {
			bookID := ce.Ref.ID
			if !ce.Ref.IsCanonical() {
				ref := catalog.BookRef{LegacyID: ce.Ref.ID, Title: ce.Title, Author: ce.Author}
				resolved, err := resolver.Resolve(ctx, ref)
				var resFail *resolve.ResolutionFailure
				if errors.As(err, &resFail) {
					// The canonical store still has no such book; keep the
					// entry for the next cycle.
					kept++
					continue
				}
				if err != nil {
					return fmt.Errorf("resolve %q for %s: %w", ce.Ref.ID, task.UserID, err)
				}
				bookID = resolved
			}

			_, err := store.Create(ctx, task.UserID, bookID, ce.ListID, entities.FromStoreStatus(ce.Status))
			if err != nil {
				if database.Classify(err).Recoverable() {
					// Primary still down; backlite retries the whole task.
					return fmt.Errorf("drain entry %s for %s: %w", ce.EntryID, task.UserID, err)
				}
				// A write the store will never accept; dropping it beats
				// retrying forever.
				log.Printf("[TASK] Dropping undrainable snapshot entry %s for %s: %v", ce.EntryID, task.UserID, err)
			}
			drained = append(drained, ce.EntryID)
		}

		if len(drained) > 0 {
			err := snapshot.Update(task.UserID, func(entries []fallback.CachedEntry) []fallback.CachedEntry {
				keep := entries[:0]
				for _, e := range entries {
					if !contains(drained, e.EntryID) {
						keep = append(keep, e)
					}
				}
				return keep
			})
			if err != nil {
				return fmt.Errorf("trim snapshot for %s: %w", task.UserID, err)
			}
		}

		log.Printf("[TASK] Resynced %d snapshot entries for %s (%d kept)", len(drained), task.UserID, kept)
		return nil
	}
}

// NewResyncUserQueue creates a backlite queue for snapshot resync tasks.
func NewResyncUserQueue(snapshot *fallback.Store, store entryWriter, resolver refResolver) backlite.Queue {
	return backlite.NewQueue(ResyncUserProcessor(snapshot, store, resolver))
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
