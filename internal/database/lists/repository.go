// Package lists provides database operations for named reading-list
// collections. The default list is virtual (entries with NULL list_id) and
// is never materialized here.
package lists

import (
	"context"
	"errors"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/wasomaji/kitabu/internal/entities"
)

// ErrReservedName is returned when a list would shadow the virtual default
// list.
var ErrReservedName = errors.New("list name is reserved")

// Repository handles all reading-list collection database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new lists repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create makes a new named list for a user.
func (r *Repository) Create(ctx context.Context, userID, name, description string, isPublic bool) (*entities.ReadingList, error) {
	if name == "" || name == "default" {
		return nil, ErrReservedName
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	list := &entities.ReadingList{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
	}
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID retrieves a list by its identifier.
func (r *Repository) GetByID(ctx context.Context, listID string) (*entities.ReadingList, error) {
	var list entities.ReadingList
	err := r.db.WithContext(ctx).First(&list, "id = ?", listID).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListForUser returns all named lists a user owns, oldest first.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]entities.ReadingList, error) {
	var lists []entities.ReadingList
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lists).Error
	return lists, err
}

// Update renames a list or changes its description/visibility.
func (r *Repository) Update(ctx context.Context, listID, name, description string, isPublic bool) (*entities.ReadingList, error) {
	if name == "" || name == "default" {
		return nil, ErrReservedName
	}

	result := r.db.WithContext(ctx).
		Model(&entities.ReadingList{}).
		Where("id = ?", listID).
		Updates(map[string]any{
			"name":        name,
			"description": description,
			"is_public":   isPublic,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, listID)
}

// Delete removes a list row. Entries that pointed at it are the annotations
// repository's concern; callers delete them in the same flow.
func (r *Repository) Delete(ctx context.Context, listID string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", listID).
		Delete(&entities.ReadingList{}).Error
}
