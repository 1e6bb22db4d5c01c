package http

import (
	"context"

	"github.com/wasomaji/kitabu/internal/auth"
	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/entities"
	"github.com/wasomaji/kitabu/internal/reconcile"
)

// Consumer-side interfaces for the stores and services the HTTP controllers
// use. Each controller depends only on the slice it needs; the concrete
// implementations live in internal/database and internal/reconcile.

// BookStore provides read access to the canonical book store.
type BookStore interface {
	GetByID(ctx context.Context, id string) (*entities.Book, error)
	List(ctx context.Context, limit, offset int) ([]entities.Book, int64, error)
	Search(ctx context.Context, query string) ([]entities.Book, error)
}

// ListStore manages named reading-list collections.
type ListStore interface {
	Create(ctx context.Context, userID, name, description string, isPublic bool) (*entities.ReadingList, error)
	GetByID(ctx context.Context, listID string) (*entities.ReadingList, error)
	ListForUser(ctx context.Context, userID string) ([]entities.ReadingList, error)
	Update(ctx context.Context, listID, name, description string, isPublic bool) (*entities.ReadingList, error)
	Delete(ctx context.Context, listID string) error
}

// EntryPurger removes a deleted list's entries in the same flow.
type EntryPurger interface {
	RemoveForList(ctx context.Context, userID, listID string) error
}

// EntryController is the reconciliation surface the reading-list handlers
// talk to. Writes are optimistic; the returned entries carry their lifecycle
// state.
type EntryController interface {
	SaveBook(ctx context.Context, sess auth.Session, ref catalog.BookRef, listID *string, status entities.ReadingStatus) (reconcile.Entry, error)
	SetStatus(ctx context.Context, sess auth.Session, entryID string, status entities.ReadingStatus) (reconcile.Entry, error)
	RemoveEntry(ctx context.Context, sess auth.Session, entryID string) error
	ListEntries(ctx context.Context, sess auth.Session, listID *string) ([]reconcile.Entry, error)
}

// CatalogClient is the discovery/recommendation collaborator.
type CatalogClient interface {
	AllBooks(ctx context.Context) ([]catalog.BookRef, error)
	Search(ctx context.Context, query string) ([]catalog.BookRef, error)
	Recommendations(ctx context.Context, bookID string, limit int) ([]catalog.BookRef, error)
	Themes(ctx context.Context) ([]string, error)
}
