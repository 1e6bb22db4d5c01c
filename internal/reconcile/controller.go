// Package reconcile keeps the user-visible reading list consistent with the
// primary annotation store across failures.
//
// Writes are optimistic: the controller answers with a provisional entry
// immediately and settles it against the store in the background. Recoverable
// store failures (store not provisioned, schema drift, transient outages)
// silently redirect the write into the per-user fallback snapshot; anything
// else is surfaced as an error event and reconciled by re-reading the store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wasomaji/kitabu/internal/auth"
	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/database"
	"github.com/wasomaji/kitabu/internal/entities"
	"github.com/wasomaji/kitabu/internal/fallback"
	"github.com/wasomaji/kitabu/internal/resolve"
)

// AnnotationStore is the slice of the annotations repository the controller
// writes through.
type AnnotationStore interface {
	Create(ctx context.Context, userID, bookID string, listID *string, status entities.ReadingStatus) (*entities.ReadingListEntry, error)
	UpdateStatus(ctx context.Context, entryID string, status entities.ReadingStatus) (*entities.ReadingListEntry, error)
	Remove(ctx context.Context, entryID string) error
	GetByID(ctx context.Context, entryID string) (*entities.ReadingListEntry, error)
	ListFor(ctx context.Context, userID string, listID *string) ([]entities.ReadingListEntry, error)
}

// SnapshotStore is the fallback cache the controller degrades into.
type SnapshotStore interface {
	Load(userID string) ([]fallback.CachedEntry, error)
	Update(userID string, fn func([]fallback.CachedEntry) []fallback.CachedEntry) error
}

// BookResolver maps catalog references onto canonical book ids.
type BookResolver interface {
	Resolve(ctx context.Context, ref catalog.BookRef) (string, error)
}

// BookLoader fetches canonical book records for display enrichment.
type BookLoader interface {
	GetByID(ctx context.Context, id string) (*entities.Book, error)
}

// localEntry is the controller's in-memory overlay for one entry: an
// optimistic save not yet acknowledged, a status change in flight, or a
// tombstone for a removal in flight.
type localEntry struct {
	entry   Entry
	removed bool
	// saveKey identifies the (catalog ref, list) a save targets, so rapid
	// duplicate saves collapse onto one in-flight write even after the
	// entry's reference flips from legacy to canonical.
	saveKey string
}

func (le *localEntry) moveTo(to EntryState) {
	if !canTransition(le.entry.State, to) {
		log.Printf("Invalid entry state transition %s -> %s for %s", le.entry.State, to, le.entry.EntryID)
	}
	le.entry.State = to
}

// Controller coordinates optimistic writes, fallback degradation and
// reload-based reconciliation for reading-list entries.
type Controller struct {
	store    AnnotationStore
	snapshot SnapshotStore
	resolver BookResolver
	books    BookLoader

	mu      sync.Mutex
	pending map[string]map[string]*localEntry // userID -> entryID -> overlay

	listenerMu sync.Mutex
	listeners  []func(Event)
	onDegrade  func(userID string)

	wg sync.WaitGroup
}

// NewController wires the controller to its collaborators.
func NewController(store AnnotationStore, snapshot SnapshotStore, resolver BookResolver, books BookLoader) *Controller {
	return &Controller{
		store:    store,
		snapshot: snapshot,
		resolver: resolver,
		books:    books,
		pending:  make(map[string]map[string]*localEntry),
	}
}

// Subscribe registers a listener for controller events. Listeners are called
// from background goroutines and must not block.
func (c *Controller) Subscribe(fn func(Event)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// OnDegrade registers a callback invoked after a write lands in the fallback
// snapshot, typically to schedule an early resync. Called from background
// goroutines; must not block.
func (c *Controller) OnDegrade(fn func(userID string)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.onDegrade = fn
}

func (c *Controller) emit(ev Event) {
	c.listenerMu.Lock()
	listeners := make([]func(Event), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Wait blocks until every in-flight background write has settled. Tests use
// this to observe deterministic post-write state.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// SaveBook adds a catalog book to one of the user's lists. The returned entry
// is provisional: it carries a temporary identifier and the Saving state, and
// settles in the background to Committed or Degraded.
func (c *Controller) SaveBook(ctx context.Context, sess auth.Session, ref catalog.BookRef, listID *string, status entities.ReadingStatus) (Entry, error) {
	if status == "" {
		status = entities.StatusWantToRead
	}
	if !status.Valid() {
		return Entry{}, fmt.Errorf("save book: %w", database.ErrInvalidStatus)
	}

	entry := Entry{
		EntryID:    "tmp_" + uuid.NewString(),
		Ref:        resolve.Legacy(ref.LegacyID),
		ListID:     normalizeListID(listID),
		Status:     status,
		State:      StateSaving,
		AddedAt:    time.Now().UTC(),
		Title:      ref.Title,
		Author:     ref.Author,
		Year:       ref.Year,
		Genre:      ref.Genre,
		Language:   ref.Language,
		Themes:     ref.Themes,
		CoverImage: ref.CoverImage,
	}

	saveKey := dedupKey(saveIdentity(ref), entry.ListID)

	c.mu.Lock()
	for _, le := range c.userPending(sess.UserID) {
		if !le.removed && le.saveKey == saveKey {
			// Same (book, list) save already in flight: idempotent.
			existing := le.entry
			c.mu.Unlock()
			return existing, nil
		}
	}
	c.userPending(sess.UserID)[entry.EntryID] = &localEntry{entry: entry, saveKey: saveKey}
	c.mu.Unlock()

	c.wg.Add(1)
	go c.settleSave(context.WithoutCancel(ctx), sess.UserID, entry.EntryID, ref)

	return entry, nil
}

// settleSave resolves the reference and writes the entry to the primary
// store, degrading into the fallback snapshot when the failure class allows.
func (c *Controller) settleSave(ctx context.Context, userID, entryID string, ref catalog.BookRef) {
	defer c.wg.Done()

	c.mu.Lock()
	le, ok := c.userPending(userID)[entryID]
	if !ok || le.removed {
		delete(c.userPending(userID), entryID)
		c.mu.Unlock()
		return
	}
	status := le.entry.Status
	listID := le.entry.ListID
	c.mu.Unlock()

	bookID, err := c.resolver.Resolve(ctx, ref)
	if err != nil {
		var resFail *resolve.ResolutionFailure
		if errors.As(err, &resFail) || database.Classify(err).Recoverable() {
			// The reference stays legacy; resync retries resolution later.
			c.degrade(userID, entryID)
			return
		}
		c.reject(userID, entryID, "could not save book", err)
		return
	}

	// Resolution succeeded; if the store write degrades from here, the
	// snapshot should carry the canonical identity, not the legacy one.
	c.mu.Lock()
	if le, ok := c.userPending(userID)[entryID]; ok && !le.removed {
		le.entry.Ref = resolve.Canonical(bookID)
	}
	c.mu.Unlock()

	created, err := c.createWithRetry(ctx, userID, bookID, listID, status)
	if err != nil {
		if database.Classify(err).Recoverable() {
			c.degrade(userID, entryID)
			return
		}
		c.reject(userID, entryID, "could not save book", err)
		return
	}

	c.mu.Lock()
	le, ok = c.userPending(userID)[entryID]
	if !ok {
		c.mu.Unlock()
		return
	}
	removed := le.removed
	delete(c.userPending(userID), entryID)
	var steered entities.ReadingStatus
	if !removed {
		// The overlay status is fresher than the captured one when a
		// SetStatus landed while the create was in flight; the committed
		// row is then already stale and needs a follow-up write.
		desired := le.entry.Status
		le.moveTo(StateCommitted)
		le.entry.EntryID = created.ID
		le.entry.Ref = resolve.Canonical(created.BookID)
		le.entry.ListID = created.ListID
		le.entry.Status = entities.FromStoreStatus(created.Status)
		le.entry.AddedAt = created.AddedAt
		if desired != le.entry.Status {
			le.entry.Status = desired
			le.moveTo(StateUpdating)
			steered = desired
		}
		// Kept until a successful reload shows the authoritative row.
		c.userPending(userID)[created.ID] = le
	}
	c.mu.Unlock()

	if removed {
		// The user removed the entry while the save was still in flight.
		if err := c.store.Remove(ctx, created.ID); err != nil {
			log.Printf("Failed to remove entry %s saved after its removal: %v", created.ID, err)
		}
		return
	}

	if steered != "" {
		c.wg.Add(1)
		go c.settleStatus(ctx, userID, created.ID, steered)
	}
}

func (c *Controller) createWithRetry(ctx context.Context, userID, bookID string, listID *string, status entities.ReadingStatus) (*entities.ReadingListEntry, error) {
	created, err := c.store.Create(ctx, userID, bookID, listID, status)
	if err != nil && database.Classify(err) == database.FailureTransient {
		created, err = c.store.Create(ctx, userID, bookID, listID, status)
	}
	return created, err
}

// degrade moves a pending entry into the fallback snapshot. Deliberately
// silent: continuity, not an error the user can act on.
func (c *Controller) degrade(userID, entryID string) {
	c.mu.Lock()
	le, ok := c.userPending(userID)[entryID]
	if !ok || le.removed {
		delete(c.userPending(userID), entryID)
		c.mu.Unlock()
		return
	}
	le.moveTo(StateDegraded)
	entry := le.entry
	c.mu.Unlock()

	cached := fallback.CachedEntry{
		EntryID:    entry.EntryID,
		Ref:        entry.Ref,
		ListID:     entry.ListID,
		Status:     entities.ToStoreStatus(entry.Status),
		AddedAt:    entry.AddedAt,
		Title:      entry.Title,
		Author:     entry.Author,
		Year:       entry.Year,
		Genre:      entry.Genre,
		Language:   entry.Language,
		Themes:     entry.Themes,
		CoverImage: entry.CoverImage,
	}

	err := c.snapshot.Update(userID, func(entries []fallback.CachedEntry) []fallback.CachedEntry {
		for _, e := range entries {
			if e.EntryID == cached.EntryID {
				return entries
			}
		}
		return append(entries, cached)
	})
	if err != nil {
		// Both stores refused the write; now it is an error.
		c.reject(userID, entryID, "could not save book", err)
		return
	}

	// The snapshot owns the entry from here on.
	c.mu.Lock()
	delete(c.userPending(userID), entryID)
	c.mu.Unlock()

	c.listenerMu.Lock()
	onDegrade := c.onDegrade
	c.listenerMu.Unlock()
	if onDegrade != nil {
		onDegrade(userID)
	}
}

func (c *Controller) reject(userID, entryID, message string, err error) {
	log.Printf("Rejected write for entry %s: %v", entryID, err)
	c.mu.Lock()
	delete(c.userPending(userID), entryID)
	c.mu.Unlock()
	c.emit(Event{Type: EventError, EntryID: entryID, Message: message})
}

// SetStatus changes an entry's reading status. The change is applied
// optimistically; on failure the entry is silently reconciled against a fresh
// read of the store.
func (c *Controller) SetStatus(ctx context.Context, sess auth.Session, entryID string, status entities.ReadingStatus) (Entry, error) {
	if !status.Valid() {
		return Entry{}, fmt.Errorf("set status: %w", database.ErrInvalidStatus)
	}

	// A save still in flight: just steer the pending write.
	c.mu.Lock()
	if le, ok := c.userPending(sess.UserID)[entryID]; ok && !le.removed {
		le.entry.Status = status
		if le.entry.State == StateCommitted {
			le.moveTo(StateUpdating)
			entry := le.entry
			c.mu.Unlock()
			c.wg.Add(1)
			go c.settleStatus(context.WithoutCancel(ctx), sess.UserID, entryID, status)
			return entry, nil
		}
		entry := le.entry
		c.mu.Unlock()
		return entry, nil
	}
	c.mu.Unlock()

	// A degraded entry lives only in the snapshot; update it there.
	if entry, ok, err := c.setSnapshotStatus(sess.UserID, entryID, status); err != nil {
		return Entry{}, err
	} else if ok {
		return entry, nil
	}

	current, err := c.store.GetByID(ctx, entryID)
	if err != nil {
		if database.Classify(err) == database.FailureConflict {
			return Entry{}, fmt.Errorf("set status for %s: %w", entryID, database.ErrEntryNotFound)
		}
		return Entry{}, fmt.Errorf("set status for %s: %w", entryID, err)
	}
	if current.UserID != sess.UserID {
		return Entry{}, fmt.Errorf("set status for %s: %w", entryID, database.ErrEntryNotFound)
	}

	overlay := &localEntry{entry: Entry{
		EntryID: entryID,
		Ref:     resolve.Canonical(current.BookID),
		ListID:  current.ListID,
		Status:  status,
		State:   StateUpdating,
		AddedAt: current.AddedAt,
	}}

	c.mu.Lock()
	c.userPending(sess.UserID)[entryID] = overlay
	entry := overlay.entry
	c.mu.Unlock()

	c.wg.Add(1)
	go c.settleStatus(context.WithoutCancel(ctx), sess.UserID, entryID, status)

	return entry, nil
}

func (c *Controller) setSnapshotStatus(userID, entryID string, status entities.ReadingStatus) (Entry, bool, error) {
	var found *fallback.CachedEntry
	err := c.snapshot.Update(userID, func(entries []fallback.CachedEntry) []fallback.CachedEntry {
		for i := range entries {
			if entries[i].EntryID == entryID {
				entries[i].Status = entities.ToStoreStatus(status)
				found = &entries[i]
				break
			}
		}
		return entries
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("update snapshot entry %s: %w", entryID, err)
	}
	if found == nil {
		return Entry{}, false, nil
	}
	return entryFromCached(*found), true, nil
}

func (c *Controller) settleStatus(ctx context.Context, userID, entryID string, status entities.ReadingStatus) {
	defer c.wg.Done()

	_, err := c.store.UpdateStatus(ctx, entryID, status)
	if err != nil && database.Classify(err) == database.FailureTransient {
		_, err = c.store.UpdateStatus(ctx, entryID, status)
	}

	c.mu.Lock()
	le, ok := c.userPending(userID)[entryID]
	if ok && err == nil {
		// The store now matches what we show.
		le.moveTo(StateCommitted)
		delete(c.userPending(userID), entryID)
	}
	if ok && err != nil {
		le.moveTo(StateRollbackPending)
	}
	c.mu.Unlock()

	if err != nil {
		c.reconcileEntry(ctx, userID, entryID)
	}
}

// RemoveEntry deletes an entry. The removal is applied optimistically; a
// failed delete is silently reconciled against a fresh read.
func (c *Controller) RemoveEntry(ctx context.Context, sess auth.Session, entryID string) error {
	c.mu.Lock()
	if le, ok := c.userPending(sess.UserID)[entryID]; ok {
		if le.entry.State == StateSaving {
			// Save still in flight; flag it so settleSave undoes the write.
			le.removed = true
			c.mu.Unlock()
			return nil
		}
		le.removed = true
		le.moveTo(StateRollbackPending)
		c.mu.Unlock()
		c.wg.Add(1)
		go c.settleRemove(context.WithoutCancel(ctx), sess.UserID, entryID)
		return nil
	}
	c.mu.Unlock()

	if removed, err := c.removeSnapshotEntry(sess.UserID, entryID); err != nil {
		return err
	} else if removed {
		return nil
	}

	current, err := c.store.GetByID(ctx, entryID)
	if err != nil {
		if database.Classify(err) == database.FailureConflict {
			return fmt.Errorf("remove entry %s: %w", entryID, database.ErrEntryNotFound)
		}
		return fmt.Errorf("remove entry %s: %w", entryID, err)
	}
	if current.UserID != sess.UserID {
		return fmt.Errorf("remove entry %s: %w", entryID, database.ErrEntryNotFound)
	}

	// Tombstone: hides the authoritative row while the delete is in flight.
	tombstone := &localEntry{
		entry: Entry{
			EntryID: entryID,
			Ref:     resolve.Canonical(current.BookID),
			ListID:  current.ListID,
			Status:  entities.FromStoreStatus(current.Status),
			State:   StateRollbackPending,
			AddedAt: current.AddedAt,
		},
		removed: true,
	}

	c.mu.Lock()
	c.userPending(sess.UserID)[entryID] = tombstone
	c.mu.Unlock()

	c.wg.Add(1)
	go c.settleRemove(context.WithoutCancel(ctx), sess.UserID, entryID)

	return nil
}

func (c *Controller) removeSnapshotEntry(userID, entryID string) (bool, error) {
	removed := false
	err := c.snapshot.Update(userID, func(entries []fallback.CachedEntry) []fallback.CachedEntry {
		kept := entries[:0]
		for _, e := range entries {
			if e.EntryID == entryID {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		return kept
	})
	if err != nil {
		return false, fmt.Errorf("remove snapshot entry %s: %w", entryID, err)
	}
	return removed, nil
}

func (c *Controller) settleRemove(ctx context.Context, userID, entryID string) {
	defer c.wg.Done()

	err := c.store.Remove(ctx, entryID)
	if err != nil && database.Classify(err) == database.FailureTransient {
		err = c.store.Remove(ctx, entryID)
	}
	if err != nil && errors.Is(err, database.ErrEntryNotFound) {
		// Already gone; that is the outcome we wanted.
		err = nil
	}

	c.mu.Lock()
	if le, ok := c.userPending(userID)[entryID]; ok && err == nil {
		le.moveTo(StateRemoved)
		delete(c.userPending(userID), entryID)
	}
	c.mu.Unlock()

	if err != nil {
		c.reconcileEntry(ctx, userID, entryID)
	}
}

// reconcileEntry settles a RollbackPending overlay against a fresh read of
// the primary store: the server value wins, whatever it is.
func (c *Controller) reconcileEntry(ctx context.Context, userID, entryID string) {
	current, err := c.store.GetByID(ctx, entryID)

	if err != nil && database.Classify(err) == database.FailureConflict {
		// The entry no longer exists; the rollback resolves to Removed.
		c.mu.Lock()
		if le, ok := c.userPending(userID)[entryID]; ok {
			le.moveTo(StateRemoved)
			delete(c.userPending(userID), entryID)
		}
		c.mu.Unlock()
		c.emit(Event{Type: EventReconciled, EntryID: entryID, Message: "entry reconciled with the server"})
		return
	}

	if err != nil {
		// Could not even reload; give up on the overlay and tell the user.
		c.mu.Lock()
		delete(c.userPending(userID), entryID)
		c.mu.Unlock()
		c.emit(Event{Type: EventError, EntryID: entryID, Message: "could not update entry"})
		return
	}

	c.mu.Lock()
	if le, ok := c.userPending(userID)[entryID]; ok {
		le.entry.Status = entities.FromStoreStatus(current.Status)
		le.moveTo(StateCommitted)
		le.removed = false
		delete(c.userPending(userID), entryID)
	}
	c.mu.Unlock()
	c.emit(Event{Type: EventReconciled, EntryID: entryID, Message: "entry reconciled with the server"})
}

// ListEntries returns one of the user's lists: the authoritative rows merged
// with degraded snapshot entries and in-flight optimistic ones. Reads
// deduplicate repeated (book, list) rows, oldest first; the store itself
// tolerates duplicates.
func (c *Controller) ListEntries(ctx context.Context, sess auth.Session, listID *string) ([]Entry, error) {
	norm := normalizeListID(listID)

	rows, err := c.store.ListFor(ctx, sess.UserID, norm)
	authoritative := err == nil
	if err != nil && !database.Classify(err).Recoverable() {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	// Copy the overlay under lock; enrichment below does I/O.
	c.mu.Lock()
	overlays := make(map[string]localEntry, len(c.userPending(sess.UserID)))
	for id, le := range c.userPending(sess.UserID) {
		overlays[id] = *le
	}
	c.mu.Unlock()

	var result []Entry
	seenKey := make(map[string]bool)
	seenID := make(map[string]bool)
	var settled []string

	if authoritative {
		bookCache := make(map[string]*entities.Book)
		for _, row := range rows {
			key := dedupKey(row.BookID, row.ListID)
			if seenKey[key] {
				continue
			}
			seenKey[key] = true
			seenID[row.ID] = true

			if ov, ok := overlays[row.ID]; ok {
				if ov.removed {
					continue
				}
				if ov.entry.State == StateCommitted {
					// Settled save now visible in the store; drop the overlay.
					settled = append(settled, row.ID)
				} else {
					// Status change in flight: show the optimistic value.
					row.Status = entities.ToStoreStatus(ov.entry.Status)
					entry := c.entryFromRow(ctx, row, bookCache)
					entry.State = ov.entry.State
					result = append(result, entry)
					continue
				}
			}
			result = append(result, c.entryFromRow(ctx, row, bookCache))
		}
	}

	cached, err := c.snapshot.Load(sess.UserID)
	if err != nil {
		log.Printf("Failed to load fallback snapshot for %s: %v", sess.UserID, err)
	}
	for _, ce := range cached {
		if !sameList(ce.ListID, norm) || seenID[ce.EntryID] {
			continue
		}
		seenID[ce.EntryID] = true
		result = append(result, entryFromCached(ce))
	}

	for id, ov := range overlays {
		if ov.removed || seenID[id] {
			continue
		}
		if !sameList(ov.entry.ListID, norm) {
			continue
		}
		if ov.entry.State == StateCommitted && authoritative {
			// Settled entry missing from a successful reload: another client
			// removed it. Adopt the reload.
			settled = append(settled, id)
			continue
		}
		if key := overlayKey(ov.entry); key != "" && seenKey[key] {
			continue
		}
		result = append(result, ov.entry)
	}

	if len(settled) > 0 {
		c.mu.Lock()
		for _, id := range settled {
			delete(c.userPending(sess.UserID), id)
		}
		c.mu.Unlock()
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].AddedAt.Equal(result[j].AddedAt) {
			return result[i].AddedAt.Before(result[j].AddedAt)
		}
		return result[i].EntryID < result[j].EntryID
	})

	return result, nil
}

// userPending returns the per-user overlay map, creating it on first use.
// Callers hold c.mu.
func (c *Controller) userPending(userID string) map[string]*localEntry {
	m, ok := c.pending[userID]
	if !ok {
		m = make(map[string]*localEntry)
		c.pending[userID] = m
	}
	return m
}

func (c *Controller) entryFromRow(ctx context.Context, row entities.ReadingListEntry, cache map[string]*entities.Book) Entry {
	entry := Entry{
		EntryID: row.ID,
		Ref:     resolve.Canonical(row.BookID),
		ListID:  row.ListID,
		Status:  entities.FromStoreStatus(row.Status),
		State:   StateCommitted,
		AddedAt: row.AddedAt,
	}

	book, ok := cache[row.BookID]
	if !ok {
		loaded, err := c.books.GetByID(ctx, row.BookID)
		if err != nil {
			loaded = nil
		}
		book = loaded
		cache[row.BookID] = book
	}
	if book != nil {
		entry.Title = book.Title
		entry.Author = book.Author
		entry.Year = book.PublishedYear
		entry.Genre = book.Genre
		entry.Language = book.Language
		entry.Themes = book.ThemeList()
		entry.CoverImage = book.CoverURL
	}
	return entry
}

func entryFromCached(ce fallback.CachedEntry) Entry {
	return Entry{
		EntryID:    ce.EntryID,
		Ref:        ce.Ref,
		ListID:     ce.ListID,
		Status:     entities.FromStoreStatus(ce.Status),
		State:      StateDegraded,
		AddedAt:    ce.AddedAt,
		Title:      ce.Title,
		Author:     ce.Author,
		Year:       ce.Year,
		Genre:      ce.Genre,
		Language:   ce.Language,
		Themes:     ce.Themes,
		CoverImage: ce.CoverImage,
	}
}

// saveIdentity names the book a save refers to, for duplicate-save
// collapsing. References without a catalog id are keyed by normalized
// title+author so two different title-only saves never share a key.
func saveIdentity(ref catalog.BookRef) string {
	if ref.LegacyID != "" {
		return "legacy:" + ref.LegacyID
	}
	title := strings.ToLower(strings.TrimSpace(ref.Title))
	author := strings.ToLower(strings.TrimSpace(ref.Author))
	return "title:" + title + "\x00" + author
}

func dedupKey(bookID string, listID *string) string {
	key := bookID + "\x00"
	if listID != nil {
		key += *listID
	}
	return key
}

// overlayKey builds a dedup key for an optimistic entry. Only canonical
// references compare against authoritative rows; a legacy reference cannot
// collide with a canonical book id.
func overlayKey(e Entry) string {
	if !e.Ref.IsCanonical() {
		return ""
	}
	return dedupKey(e.Ref.ID, e.ListID)
}

func sameList(a, b *string) bool {
	a, b = normalizeListID(a), normalizeListID(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// normalizeListID collapses the absent-list spellings ("" and the UI-only
// "default" sentinel) to nil, mirroring the store adapter.
func normalizeListID(listID *string) *string {
	if listID == nil || *listID == "" || *listID == "default" {
		return nil
	}
	return listID
}
