package reconcile

import (
	"time"

	"github.com/wasomaji/kitabu/internal/entities"
	"github.com/wasomaji/kitabu/internal/resolve"
)

// EntryState tracks where a reading-list entry sits in its write lifecycle.
// The UI renders optimistic entries immediately; the state says how much the
// primary store has acknowledged.
type EntryState string

const (
	// StateSaving is an optimistic entry whose initial write is in flight.
	StateSaving EntryState = "saving"
	// StateCommitted means the primary store holds the entry as shown.
	StateCommitted EntryState = "committed"
	// StateUpdating is a committed entry with a status change in flight.
	StateUpdating EntryState = "updating"
	// StateRollbackPending means a write failed and the entry is being
	// reconciled against a fresh read of the primary store.
	StateRollbackPending EntryState = "rollback_pending"
	// StateDegraded means the entry lives only in the fallback snapshot.
	StateDegraded EntryState = "degraded"
	// StateRemoved is terminal: the entry is gone from every store.
	StateRemoved EntryState = "removed"
)

// validTransitions is the entry lifecycle. Anything not listed is a
// programming error, caught by transition().
var validTransitions = map[EntryState][]EntryState{
	StateSaving:          {StateCommitted, StateDegraded},
	StateCommitted:       {StateUpdating, StateRollbackPending, StateRemoved},
	StateUpdating:        {StateCommitted, StateRollbackPending},
	StateRollbackPending: {StateCommitted, StateRemoved},
	StateDegraded:        {StateCommitted, StateRemoved},
}

// canTransition reports whether moving from one state to another is part of
// the lifecycle.
func canTransition(from, to EntryState) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Entry is the controller's view of a reading-list entry: identifier, status
// in the UI vocabulary, lifecycle state, and the descriptive fields a client
// renders. Degraded entries carry the original catalog reference so resync
// can retry resolution later.
type Entry struct {
	EntryID    string                 `json:"entry_id"`
	Ref        resolve.BookReference  `json:"ref"`
	ListID     *string                `json:"list_id"`
	Status     entities.ReadingStatus `json:"status"`
	State      EntryState             `json:"state"`
	AddedAt    time.Time              `json:"added_at"`
	Title      string                 `json:"title,omitempty"`
	Author     string                 `json:"author,omitempty"`
	Year       int                    `json:"year,omitempty"`
	Genre      string                 `json:"genre,omitempty"`
	Language   string                 `json:"language,omitempty"`
	Themes     []string               `json:"themes,omitempty"`
	CoverImage string                 `json:"cover_image,omitempty"`
}

// EventType classifies controller notifications.
type EventType string

const (
	// EventError is a user-visible failure: the write was rejected and no
	// fallback applied.
	EventError EventType = "error"
	// EventReconciled reports that a failed write was silently reconciled
	// against the primary store.
	EventReconciled EventType = "reconciled"
)

// Event is a notification emitted by the controller. Recoverable fallbacks
// are deliberately silent; only rejections and reconciliations surface.
type Event struct {
	Type    EventType
	EntryID string
	Message string
}
