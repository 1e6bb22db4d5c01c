// Package resolve maps book references from the legacy catalog's identifier
// space onto canonical store identifiers.
//
// The two spaces are disjoint: the legacy catalog keys books by small
// integers, the canonical store by opaque UUIDs. Resolution always runs
// Legacy -> Canonical, never the reverse.
package resolve

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/entities"
)

// Kind tags which identifier space a reference lives in.
type Kind string

const (
	KindLegacy    Kind = "legacy"
	KindCanonical Kind = "canonical"
)

// BookReference is a book identifier tagged with its space. Degraded
// reading-list entries persist the Legacy form so a later resync can retry
// resolution.
type BookReference struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Legacy wraps a raw catalog identifier.
func Legacy(id string) BookReference {
	return BookReference{Kind: KindLegacy, ID: id}
}

// Canonical wraps a canonical store identifier.
func Canonical(id string) BookReference {
	return BookReference{Kind: KindCanonical, ID: id}
}

// IsCanonical reports whether the reference is already in the canonical
// space.
func (r BookReference) IsCanonical() bool {
	return r.Kind == KindCanonical
}

// ResolutionFailure reports that no canonical record matched a catalog
// reference. It carries the original legacy identifier unchanged; callers
// may keep operating on it as a degraded identifier instead of aborting.
type ResolutionFailure struct {
	LegacyID string
}

func (e *ResolutionFailure) Error() string {
	return fmt.Sprintf("no canonical book for catalog reference %q", e.LegacyID)
}

// CanonicalStore is the slice of the books repository the resolver reads.
type CanonicalStore interface {
	FindByLegacyItemID(ctx context.Context, legacyID int) ([]entities.Book, error)
	FindByTitleAuthor(ctx context.Context, title, author string) ([]entities.Book, error)
}

// Resolver resolves catalog references against the canonical store.
// Read-only; a resolution issues at most two queries.
type Resolver struct {
	store CanonicalStore
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store CanonicalStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the canonical id for a catalog reference.
//
// Priority is strict and deliberate: a unique legacy_item_id match wins over
// any title/author match, because legacy ids survive retitling while
// title/author pairs do not. Only when the legacy id is absent, non-numeric,
// or matches zero or several rows does the exact (title, author) pair get
// consulted; its first match wins. Anything else is a *ResolutionFailure.
// Store errors are returned as-is and are not resolution failures.
func (r *Resolver) Resolve(ctx context.Context, ref catalog.BookRef) (string, error) {
	if legacyID, err := strconv.Atoi(ref.LegacyID); err == nil {
		books, err := r.store.FindByLegacyItemID(ctx, legacyID)
		if err != nil {
			return "", fmt.Errorf("resolve by legacy id %d: %w", legacyID, err)
		}
		if len(books) == 1 {
			return books[0].ID, nil
		}
	}

	books, err := r.store.FindByTitleAuthor(ctx, ref.Title, ref.Author)
	if err != nil {
		return "", fmt.Errorf("resolve by title/author: %w", err)
	}
	if len(books) > 0 {
		return books[0].ID, nil
	}

	return "", &ResolutionFailure{LegacyID: ref.LegacyID}
}
