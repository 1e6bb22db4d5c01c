// Package fallback holds the per-user, device-scoped shadow copy of
// reading-list entries, used when the primary store is unreachable or its
// schema does not match.
//
// A snapshot is a best-effort continuity mechanism, never an authority: once
// the primary store answers again, the snapshot only feeds the resync drain.
package fallback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wasomaji/kitabu/internal/resolve"
)

// CachedEntry mirrors a reading-list entry plus the descriptive book fields
// the UI needs. The fields are denormalized because the fallback path cannot
// re-join against the canonical store; Ref keeps the original reference
// (legacy or canonical, whichever was available) so resync can re-resolve.
type CachedEntry struct {
	EntryID    string                `json:"entry_id"`
	Ref        resolve.BookReference `json:"ref"`
	ListID     *string               `json:"list_id"`
	Status     string                `json:"status"` // persisted vocabulary
	AddedAt    time.Time             `json:"added_at"`
	Title      string                `json:"title,omitempty"`
	Author     string                `json:"author,omitempty"`
	Year       int                   `json:"year,omitempty"`
	Genre      string                `json:"genre,omitempty"`
	Language   string                `json:"language,omitempty"`
	Themes     []string              `json:"themes,omitempty"`
	CoverImage string                `json:"cover_image,omitempty"`
}

// Store persists one JSON snapshot file per user. Save replaces the whole
// snapshot; there is no append log and no multi-device merge.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fallback dir: %w", err)
	}
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Load returns the user's snapshot. A missing snapshot is an empty one, not
// an error.
func (s *Store) Load(userID string) ([]CachedEntry, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.load(userID)
}

// Save replaces the user's snapshot wholesale.
func (s *Store) Save(userID string, entries []CachedEntry) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.save(userID, entries)
}

// Update applies fn to the current snapshot and persists the result, all
// under the user's lock. Concurrent saves for the same user serialize here
// so a merge never drops entries written by another caller.
func (s *Store) Update(userID string, fn func([]CachedEntry) []CachedEntry) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	entries, err := s.load(userID)
	if err != nil {
		return err
	}
	return s.save(userID, fn(entries))
}

// Users returns every user id that currently has a snapshot on disk.
func (s *Store) Users() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "snapshot_*.json"))
	if err != nil {
		return nil, err
	}

	var users []string
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".json")
		users = append(users, strings.TrimPrefix(name, "snapshot_"))
	}
	return users, nil
}

func (s *Store) load(userID string) ([]CachedEntry, error) {
	data, err := os.ReadFile(s.snapshotPath(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot for %s: %w", userID, err)
	}

	var entries []CachedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", userID, err)
	}
	return entries, nil
}

func (s *Store) save(userID string, entries []CachedEntry) error {
	if len(entries) == 0 {
		// An empty snapshot and no snapshot are the same thing.
		err := os.Remove(s.snapshotPath(userID))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot for %s: %w", userID, err)
	}

	// Write to a temp file in the same directory, then rename, so a crash
	// mid-write never leaves a torn snapshot.
	tmpFile, err := os.CreateTemp(s.dir, "snapshot_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, s.snapshotPath(userID))
}

func (s *Store) snapshotPath(userID string) string {
	// User ids are UUIDs or test fixtures; strip anything path-hostile.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, userID)
	return filepath.Join(s.dir, "snapshot_"+safe+".json")
}

func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
