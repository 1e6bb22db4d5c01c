package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/database/annotations"
	"github.com/wasomaji/kitabu/internal/database/books"
	"github.com/wasomaji/kitabu/internal/database/lists"
	"github.com/wasomaji/kitabu/internal/fallback"
	"github.com/wasomaji/kitabu/internal/http"
	"github.com/wasomaji/kitabu/internal/reconcile"
	"github.com/wasomaji/kitabu/internal/resolve"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// The canonical book store backs both identity resolution and the read API.
var _ resolve.CanonicalStore = (*books.Repository)(nil)
var _ http.BookStore = (*books.Repository)(nil)
var _ reconcile.BookLoader = (*books.Repository)(nil)

// The annotations repository is the authoritative entry store.
var _ reconcile.AnnotationStore = (*annotations.Repository)(nil)
var _ http.EntryPurger = (*annotations.Repository)(nil)

// Named list collections.
var _ http.ListStore = (*lists.Repository)(nil)

// =============================================================================
// Reconciliation
// =============================================================================

var _ reconcile.BookResolver = (*resolve.Resolver)(nil)
var _ reconcile.SnapshotStore = (*fallback.Store)(nil)
var _ http.EntryController = (*reconcile.Controller)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ http.CatalogClient = (*catalog.Client)(nil)
