// Package annotations provides database operations for reading-list entries:
// the authoritative copy of a user's per-book status annotations.
//
// The adapter translates between the UI status vocabulary and the persisted
// one on every boundary crossing, so callers never see a raw stored status.
// Failures are returned untranslated; the reconciliation controller
// classifies them with database.Classify to pick the fallback policy.
package annotations

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/wasomaji/kitabu/internal/database"
	"github.com/wasomaji/kitabu/internal/entities"
)

// Repository handles all reading-list entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new annotations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an entry for (userID, bookID, listID). A nil listID means
// the implicit default list and is persisted as SQL NULL. The UI sentinel
// string "default" must never reach this layer; it is normalized away
// defensively rather than stored.
func (r *Repository) Create(ctx context.Context, userID, bookID string, listID *string, status entities.ReadingStatus) (*entities.ReadingListEntry, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("create entry: %w", database.ErrInvalidStatus)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate entry id: %w", err)
	}

	entry := &entities.ReadingListEntry{
		ID:      id,
		UserID:  userID,
		BookID:  bookID,
		ListID:  normalizeListID(listID),
		Status:  entities.ToStoreStatus(status),
		AddedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateStatus changes the status of an existing entry.
func (r *Repository) UpdateStatus(ctx context.Context, entryID string, status entities.ReadingStatus) (*entities.ReadingListEntry, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("update entry %s: %w", entryID, database.ErrInvalidStatus)
	}

	result := r.db.WithContext(ctx).
		Model(&entities.ReadingListEntry{}).
		Where("id = ?", entryID).
		Update("status", entities.ToStoreStatus(status))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update entry %s: %w", entryID, database.ErrEntryNotFound)
	}

	return r.GetByID(ctx, entryID)
}

// Remove deletes an entry.
func (r *Repository) Remove(ctx context.Context, entryID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", entryID).
		Delete(&entities.ReadingListEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("remove entry %s: %w", entryID, database.ErrEntryNotFound)
	}
	return nil
}

// GetByID retrieves a single entry.
func (r *Repository) GetByID(ctx context.Context, entryID string) (*entities.ReadingListEntry, error) {
	var entry entities.ReadingListEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListFor returns the entries of one of a user's lists. A nil listID selects
// the default list: the rows whose list_id is NULL.
func (r *Repository) ListFor(ctx context.Context, userID string, listID *string) ([]entities.ReadingListEntry, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if normalized := normalizeListID(listID); normalized == nil {
		query = query.Where("list_id IS NULL")
	} else {
		query = query.Where("list_id = ?", *normalized)
	}

	var entries []entities.ReadingListEntry
	err := query.Order("added_at ASC, id ASC").Find(&entries).Error
	return entries, err
}

// ListAll returns every entry a user owns, across all lists. The controller
// reloads through this after failed writes.
func (r *Repository) ListAll(ctx context.Context, userID string) ([]entities.ReadingListEntry, error) {
	var entries []entities.ReadingListEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// RemoveForList deletes all entries belonging to a named list, used when the
// list itself is deleted.
func (r *Repository) RemoveForList(ctx context.Context, userID, listID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND list_id = ?", userID, listID).
		Delete(&entities.ReadingListEntry{}).Error
}

// PruneDuplicates removes surplus rows sharing (user_id, book_id, list_id),
// keeping the oldest by added_at. The store tolerates duplicates; this is
// background hygiene, not a correctness mechanism — reads deduplicate
// regardless.
func (r *Repository) PruneDuplicates(ctx context.Context, userID string) (int64, error) {
	entries, err := r.ListAll(ctx, userID)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	var surplus []string
	for _, e := range entries {
		key := e.BookID + "\x00"
		if e.ListID != nil {
			key += *e.ListID
		}
		if seen[key] {
			surplus = append(surplus, e.ID)
			continue
		}
		seen[key] = true
	}

	if len(surplus) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("id IN ?", surplus).
		Delete(&entities.ReadingListEntry{})
	return result.RowsAffected, result.Error
}

// UserIDs returns every distinct user with at least one entry. Background
// cleanup iterates these rather than the users table, which stays empty in
// single-user mode.
func (r *Repository) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entities.ReadingListEntry{}).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// normalizeListID collapses the absent-list spellings ("" and the UI-only
// "default" sentinel) to nil.
func normalizeListID(listID *string) *string {
	if listID == nil || *listID == "" || *listID == "default" {
		return nil
	}
	return listID
}
