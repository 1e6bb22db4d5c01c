// Package books provides database operations for the canonical book store.
//
// This package implements the resolver's CanonicalStore interface and the
// BookStore interface consumed by internal/http.
package books

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wasomaji/kitabu/internal/entities"
)

// Repository handles all canonical book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a canonical book, assigning an opaque ID when none is set.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID retrieves a book by its canonical identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByLegacyItemID returns all books carrying the given legacy catalog id.
// The resolver requires exactly one match; more than one means the ingestion
// produced an ambiguous mapping, so all candidates are returned for the
// caller to judge.
func (r *Repository) FindByLegacyItemID(ctx context.Context, legacyID int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).
		Where("legacy_item_id = ?", legacyID).
		Limit(2).
		Find(&books).Error
	return books, err
}

// FindByTitleAuthor returns books matching the exact title and author pair,
// oldest first so "first match" is deterministic.
func (r *Repository) FindByTitleAuthor(ctx context.Context, title, author string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).
		Where("title = ? AND author = ?", title, author).
		Order("created_at ASC, id ASC").
		Find(&books).Error
	return books, err
}

// List returns books for catalog browsing with pagination.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.Book, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Order("title ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var books []entities.Book
	err := query.Find(&books).Error
	return books, total, err
}

// Search returns books whose title or author contains the query,
// case-insensitively.
func (r *Repository) Search(ctx context.Context, query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}
