package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wasomaji/kitabu/internal/auth"
	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/entities"
	"github.com/wasomaji/kitabu/internal/fallback"
	"github.com/wasomaji/kitabu/internal/resolve"
)

var testSession = auth.Session{UserID: "u1", Username: "reader"}

// fakeAnnotations is an in-memory annotation store with injectable failures.
type fakeAnnotations struct {
	mu      sync.Mutex
	entries map[string]*entities.ReadingListEntry
	seq     int

	createErrs  []error // consumed one per Create call
	updateErrs  []error
	removeErrs  []error
	getErr      error
	listErr     error
	createGate  chan struct{} // when set, Create blocks until closed
	removeCalls int
}

func newFakeAnnotations() *fakeAnnotations {
	return &fakeAnnotations{entries: make(map[string]*entities.ReadingListEntry)}
}

func shiftErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (f *fakeAnnotations) Create(_ context.Context, userID, bookID string, listID *string, status entities.ReadingStatus) (*entities.ReadingListEntry, error) {
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := shiftErr(&f.createErrs); err != nil {
		return nil, err
	}
	f.seq++
	entry := &entities.ReadingListEntry{
		ID:      fmt.Sprintf("e%d", f.seq),
		UserID:  userID,
		BookID:  bookID,
		ListID:  listID,
		Status:  entities.ToStoreStatus(status),
		AddedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute),
	}
	f.entries[entry.ID] = entry
	copied := *entry
	return &copied, nil
}

func (f *fakeAnnotations) UpdateStatus(_ context.Context, entryID string, status entities.ReadingStatus) (*entities.ReadingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := shiftErr(&f.updateErrs); err != nil {
		return nil, err
	}
	entry, ok := f.entries[entryID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	entry.Status = entities.ToStoreStatus(status)
	copied := *entry
	return &copied, nil
}

func (f *fakeAnnotations) Remove(_ context.Context, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	if err := shiftErr(&f.removeErrs); err != nil {
		return err
	}
	delete(f.entries, entryID)
	return nil
}

func (f *fakeAnnotations) GetByID(_ context.Context, entryID string) (*entities.ReadingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	entry, ok := f.entries[entryID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeAnnotations) ListFor(_ context.Context, userID string, listID *string) ([]entities.ReadingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var rows []entities.ReadingListEntry
	for _, entry := range f.entries {
		if entry.UserID != userID {
			continue
		}
		if listID == nil && entry.ListID != nil {
			continue
		}
		if listID != nil && (entry.ListID == nil || *entry.ListID != *listID) {
			continue
		}
		rows = append(rows, *entry)
	}
	// oldest first, like the real adapter
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if rows[j].AddedAt.Before(rows[i].AddedAt) {
				rows[i], rows[j] = rows[j], rows[i]
			}
		}
	}
	return rows, nil
}

// fakeResolver maps catalog references to canonical ids through fixed
// tables, legacy id first then title, like the real resolver's priority.
type fakeResolver struct {
	byLegacy map[string]string
	byTitle  map[string]string
	err      error
}

func (f *fakeResolver) Resolve(_ context.Context, ref catalog.BookRef) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if id, ok := f.byLegacy[ref.LegacyID]; ok {
		return id, nil
	}
	if id, ok := f.byTitle[ref.Title]; ok {
		return id, nil
	}
	return "", &resolve.ResolutionFailure{LegacyID: ref.LegacyID}
}

type fakeBooks struct {
	books map[string]*entities.Book
}

func (f *fakeBooks) GetByID(_ context.Context, id string) (*entities.Book, error) {
	if book, ok := f.books[id]; ok {
		copied := *book
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fixture struct {
	controller *Controller
	store      *fakeAnnotations
	snapshot   *fallback.Store
	events     *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	snapshot, err := fallback.NewStore(t.TempDir())
	require.NoError(t, err)

	store := newFakeAnnotations()
	resolver := &fakeResolver{
		byLegacy: map[string]string{"42": "b-1", "7": "b-2"},
		byTitle:  map[string]string{"Dune": "b-1", "Solaris": "b-2"},
	}
	books := &fakeBooks{books: map[string]*entities.Book{
		"b-1": {ID: "b-1", Title: "Dune", Author: "Frank Herbert", PublishedYear: 1965},
		"b-2": {ID: "b-2", Title: "Solaris", Author: "Stanislaw Lem"},
	}}

	events := &eventLog{}
	controller := NewController(store, snapshot, resolver, books)
	controller.Subscribe(events.record)

	return &fixture{controller: controller, store: store, snapshot: snapshot, events: events}
}

func duneRef() catalog.BookRef {
	return catalog.BookRef{LegacyID: "42", Title: "Dune", Author: "Frank Herbert", Year: 1965}
}

func TestSaveBook_CommitsOptimisticEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	assert.Equal(t, StateSaving, entry.State)
	assert.True(t, strings.HasPrefix(entry.EntryID, "tmp_"), "provisional id")
	assert.Equal(t, "Dune", entry.Title, "optimistic entry renders from the catalog ref")

	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StateCommitted, entries[0].State)
	assert.Equal(t, "e1", entries[0].EntryID, "authoritative id replaces the temp one")
	assert.Equal(t, resolve.Canonical("b-1"), entries[0].Ref)
	assert.Equal(t, entities.StatusWantToRead, entries[0].Status)
	assert.Empty(t, f.events.all())

	cached, err := f.snapshot.Load(testSession.UserID)
	require.NoError(t, err)
	assert.Empty(t, cached, "successful saves never touch the snapshot")
}

func TestSaveBook_DefaultsStatus(t *testing.T) {
	f := newFixture(t)

	entry, err := f.controller.SaveBook(context.Background(), testSession, duneRef(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusWantToRead, entry.Status)
}

func TestSaveBook_RapidDuplicateSavesCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createGate = make(chan struct{})

	first, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	second, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	assert.Equal(t, first.EntryID, second.EntryID, "the in-flight save is reused")

	close(f.store.createGate)
	f.controller.Wait()

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Len(t, f.store.entries, 1)
}

func TestSaveBook_TitleOnlySavesOfDifferentBooksStayDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.controller.SaveBook(ctx, testSession,
		catalog.BookRef{Title: "Dune", Author: "Frank Herbert"}, nil, entities.StatusWantToRead)
	require.NoError(t, err)
	second, err := f.controller.SaveBook(ctx, testSession,
		catalog.BookRef{Title: "Solaris", Author: "Stanislaw Lem"}, nil, entities.StatusWantToRead)
	require.NoError(t, err)
	assert.NotEqual(t, first.EntryID, second.EntryID,
		"different books without catalog ids must not collapse")

	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Len(t, f.store.entries, 2)
}

func TestSaveBook_TitleOnlyDuplicateSavesStillCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createGate = make(chan struct{})

	ref := catalog.BookRef{Title: "Dune", Author: "Frank Herbert"}
	first, err := f.controller.SaveBook(ctx, testSession, ref, nil, entities.StatusWantToRead)
	require.NoError(t, err)
	second, err := f.controller.SaveBook(ctx, testSession, ref, nil, entities.StatusWantToRead)
	require.NoError(t, err)
	assert.Equal(t, first.EntryID, second.EntryID)

	close(f.store.createGate)
	f.controller.Wait()

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Len(t, f.store.entries, 1)
}

func TestSaveBook_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.SaveBook(context.Background(), testSession, duneRef(), nil, "finished")
	assert.Error(t, err)
}

func TestSaveBook_StoreNotProvisioned_DegradesSilently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{errors.New("no such table: reading_list_entries")}

	entry, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusReading)
	require.NoError(t, err)
	f.controller.Wait()

	cached, err := f.snapshot.Load(testSession.UserID)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, entry.EntryID, cached[0].EntryID)
	assert.Equal(t, "reading", cached[0].Status, "snapshot holds the persisted vocabulary")
	assert.Equal(t, resolve.Canonical("b-1"), cached[0].Ref,
		"resolution succeeded before the store failed; keep the canonical ref")

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StateDegraded, entries[0].State)
	assert.Equal(t, "Dune", entries[0].Title, "degraded entries render from denormalized fields")

	assert.Empty(t, f.events.all(), "recoverable fallback is silent")
}

func TestSaveBook_DegradeFiresHook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{errors.New("no such table: reading_list_entries")}

	var mu sync.Mutex
	var degraded []string
	f.controller.OnDegrade(func(userID string) {
		mu.Lock()
		degraded = append(degraded, userID)
		mu.Unlock()
	})

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusReading)
	require.NoError(t, err)
	f.controller.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{testSession.UserID}, degraded)
}

func TestSaveBook_ResolutionFailure_DegradesWithLegacyRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ref := catalog.BookRef{LegacyID: "999", Title: "Unknown Book", Author: "Nobody"}
	_, err := f.controller.SaveBook(ctx, testSession, ref, nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	cached, err := f.snapshot.Load(testSession.UserID)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, resolve.Legacy("999"), cached[0].Ref,
		"the legacy reference survives so resync can retry resolution")
	assert.Empty(t, f.events.all())
}

func TestSaveBook_ForbiddenFailure_EmitsError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{errors.New("permission denied")}

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected saves disappear")

	cached, err := f.snapshot.Load(testSession.UserID)
	require.NoError(t, err)
	assert.Empty(t, cached, "non-recoverable failures never fall back")

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
}

func TestSaveBook_TransientFailure_RetriedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{errors.New("database is locked")}

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StateCommitted, entries[0].State, "second attempt succeeded")
	assert.Empty(t, f.events.all())
}

func TestSaveBook_TransientTwice_Degrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{
		errors.New("database is locked"),
		errors.New("database is locked"),
	}

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	cached, err := f.snapshot.Load(testSession.UserID)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
	assert.Empty(t, f.events.all())
}

func TestRemoveEntry_WhileSaveInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createGate = make(chan struct{})

	entry, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)

	require.NoError(t, f.controller.RemoveEntry(ctx, testSession, entry.EntryID))
	close(f.store.createGate)
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	assert.Empty(t, entries, "the late-arriving save is undone")

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Empty(t, f.store.entries)
}

func TestSetStatus_WhileSaveInFlight_Persists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createGate = make(chan struct{})

	entry, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)

	updated, err := f.controller.SetStatus(ctx, testSession, entry.EntryID, entities.StatusReading)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReading, updated.Status)

	close(f.store.createGate)
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.StatusReading, entries[0].Status,
		"a status change steered into an in-flight save survives the commit")

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	require.Len(t, f.store.entries, 1)
	assert.Equal(t, "reading", f.store.entries["e1"].Status,
		"the store converges on the steered status")
}

func TestSetStatus_CommitsOptimistically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	entry, err := f.controller.SetStatus(ctx, testSession, "e1", entities.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, entry.Status)

	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.StatusCompleted, entries[0].Status)
	assert.Equal(t, StateCommitted, entries[0].State)
	assert.Empty(t, f.events.all())
}

func TestSetStatus_FailureReconcilesToServerValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	f.store.updateErrs = []error{errors.New("permission denied")}

	_, err = f.controller.SetStatus(ctx, testSession, "e1", entities.StatusCompleted)
	require.NoError(t, err, "the optimistic response succeeds regardless")
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.StatusWantToRead, entries[0].Status, "server value wins after reload")
	assert.Equal(t, StateCommitted, entries[0].State)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventReconciled, events[0].Type, "silent reload, not an error banner")
}

func TestSetStatus_EntryVanished_ResolvesToRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	// Another client removed the row; the update and the reload both miss.
	f.store.mu.Lock()
	delete(f.store.entries, "e1")
	f.store.mu.Unlock()

	_, err = f.controller.SetStatus(ctx, testSession, "e1", entities.StatusCompleted)
	require.NoError(t, err)
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetStatus_DegradedEntry_UpdatesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{errors.New("no such table: reading_list_entries")}

	saved, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	entry, err := f.controller.SetStatus(ctx, testSession, saved.EntryID, entities.StatusReading)
	require.NoError(t, err)
	assert.Equal(t, StateDegraded, entry.State)
	assert.Equal(t, entities.StatusReading, entry.Status)

	cached, err := f.snapshot.Load(testSession.UserID)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "reading", cached[0].Status)
}

func TestSetStatus_UnknownEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.SetStatus(context.Background(), testSession, "missing", entities.StatusReading)
	assert.Error(t, err)
}

func TestRemoveEntry_Committed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	require.NoError(t, f.controller.RemoveEntry(ctx, testSession, "e1"))
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.events.all())
}

func TestRemoveEntry_FailureRestoresEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	f.store.removeErrs = []error{errors.New("permission denied")}
	require.NoError(t, f.controller.RemoveEntry(ctx, testSession, "e1"))
	f.controller.Wait()

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1, "the entry comes back after the reload")
	assert.Equal(t, StateCommitted, entries[0].State)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventReconciled, events[0].Type)
}

func TestRemoveEntry_Degraded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{errors.New("no such table: reading_list_entries")}

	saved, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	require.NoError(t, f.controller.RemoveEntry(ctx, testSession, saved.EntryID))

	cached, err := f.snapshot.Load(testSession.UserID)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestRemoveEntry_OtherUsersEntryHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	err = f.controller.RemoveEntry(ctx, auth.Session{UserID: "u2"}, "e1")
	assert.Error(t, err)
}

func TestListEntries_DeduplicatesRepeatedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.store.Create(ctx, testSession.UserID, "b-1", nil, entities.StatusWantToRead)
	require.NoError(t, err)
	_, err = f.store.Create(ctx, testSession.UserID, "b-1", nil, entities.StatusCompleted)
	require.NoError(t, err)

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1, "repeated (book, list) rows collapse")
	assert.Equal(t, first.ID, entries[0].EntryID, "oldest row wins")
}

func TestListEntries_StoreDownServesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.createErrs = []error{errors.New("no such table: reading_list_entries")}

	_, err := f.controller.SaveBook(ctx, testSession, duneRef(), nil, entities.StatusWantToRead)
	require.NoError(t, err)
	f.controller.Wait()

	f.store.listErr = errors.New("no such table: reading_list_entries")

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err, "a recoverable read failure degrades, it does not error")
	require.Len(t, entries, 1)
	assert.Equal(t, StateDegraded, entries[0].State)
}

func TestListEntries_StoreDownNonRecoverable(t *testing.T) {
	f := newFixture(t)
	f.store.listErr = errors.New("permission denied")

	_, err := f.controller.ListEntries(context.Background(), testSession, nil)
	assert.Error(t, err)
}

func TestListEntries_FiltersByList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listID := "l1"

	_, err := f.store.Create(ctx, testSession.UserID, "b-1", nil, entities.StatusWantToRead)
	require.NoError(t, err)
	_, err = f.store.Create(ctx, testSession.UserID, "b-2", &listID, entities.StatusReading)
	require.NoError(t, err)

	defaultEntries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, defaultEntries, 1)
	assert.Equal(t, resolve.Canonical("b-1"), defaultEntries[0].Ref)

	t.Run("default sentinel means the nil list", func(t *testing.T) {
		sentinel := "default"
		entries, err := f.controller.ListEntries(ctx, testSession, &sentinel)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, resolve.Canonical("b-1"), entries[0].Ref)
	})

	named, err := f.controller.ListEntries(ctx, testSession, &listID)
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, resolve.Canonical("b-2"), named[0].Ref)
}

func TestListEntries_EnrichesFromCanonicalStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, testSession.UserID, "b-1", nil, entities.StatusWantToRead)
	require.NoError(t, err)

	entries, err := f.controller.ListEntries(ctx, testSession, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dune", entries[0].Title)
	assert.Equal(t, 1965, entries[0].Year)
}

func TestStateTransitions(t *testing.T) {
	valid := [][2]EntryState{
		{StateSaving, StateCommitted},
		{StateSaving, StateDegraded},
		{StateCommitted, StateUpdating},
		{StateUpdating, StateCommitted},
		{StateUpdating, StateRollbackPending},
		{StateRollbackPending, StateCommitted},
		{StateRollbackPending, StateRemoved},
	}
	for _, pair := range valid {
		assert.True(t, canTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	invalid := [][2]EntryState{
		{StateSaving, StateUpdating},
		{StateDegraded, StateUpdating},
		{StateRemoved, StateCommitted},
		{StateCommitted, StateSaving},
	}
	for _, pair := range invalid {
		assert.False(t, canTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}
