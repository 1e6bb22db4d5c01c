// Package scheduler enqueues the periodic background work: snapshot resync
// for every user with a fallback snapshot on disk, and duplicate-row cleanup.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wasomaji/kitabu/internal/database"
	"github.com/wasomaji/kitabu/internal/fallback"
	"github.com/wasomaji/kitabu/internal/tasks"
)

// ResyncScheduler periodically enqueues resync tasks while fallback
// snapshots exist. The tasks themselves run on the durable queue; the
// scheduler only decides when and for whom.
type ResyncScheduler struct {
	db       *database.Database
	snapshot *fallback.Store
	client   *tasks.Client
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewResyncScheduler creates a scheduler with a standard 5-field cron
// schedule.
func NewResyncScheduler(db *database.Database, snapshot *fallback.Store, client *tasks.Client, schedule string) *ResyncScheduler {
	return &ResyncScheduler{
		db:       db,
		snapshot: snapshot,
		client:   client,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *ResyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runCycle()
	})
	if err != nil {
		return fmt.Errorf("invalid resync schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Resync scheduler: started with schedule %q", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running cycle.
func (s *ResyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Resync scheduler: stopped")
}

// RunNow triggers an immediate cycle.
func (s *ResyncScheduler) RunNow() {
	go s.runCycle()
}

// IsRunning returns whether the scheduler is active.
func (s *ResyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cycle will fire.
func (s *ResyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runCycle enqueues one resync task per user with a snapshot on disk, plus a
// duplicate cleanup pass. Enqueueing is skipped entirely while the primary
// store is unreachable; a drain that cannot commit only burns retries.
func (s *ResyncScheduler) runCycle() {
	users, err := s.snapshot.Users()
	if err != nil {
		log.Printf("Resync scheduler: failed to list snapshots: %v", err)
		return
	}

	if len(users) > 0 {
		if err := s.db.Ping(); err != nil {
			log.Printf("Resync scheduler: primary store unreachable, deferring %d snapshots: %v", len(users), err)
			return
		}

		for _, userID := range users {
			if _, err := s.client.Add(tasks.ResyncUserTask{UserID: userID}).Save(); err != nil {
				log.Printf("Resync scheduler: failed to enqueue resync for %s: %v", userID, err)
			}
		}
		log.Printf("Resync scheduler: enqueued resync for %d users", len(users))
	}

	if _, err := s.client.Add(tasks.CleanupDuplicatesTask{}).Save(); err != nil {
		log.Printf("Resync scheduler: failed to enqueue duplicate cleanup: %v", err)
	}
}
