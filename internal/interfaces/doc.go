// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// The application uses several categories of interfaces:
//
// ## Data Access Interfaces
//
//   - BookStore: Read-only access to the canonical book store (internal/http/stores.go)
//   - ListStore: Named reading-list collections (internal/http/stores.go)
//   - AnnotationStore: Authoritative entry persistence (internal/reconcile/controller.go)
//   - SnapshotStore: Fallback cache for degraded writes (internal/reconcile/controller.go)
//   - CanonicalStore: Identity resolution queries (internal/resolve/resolver.go)
//
// ## Reconciliation Interfaces
//
//   - EntryController: Optimistic write surface for the HTTP layer (internal/http/stores.go)
//   - BookResolver: Catalog reference to canonical id mapping (internal/reconcile/controller.go)
//   - BookLoader: Display enrichment from the canonical store (internal/reconcile/controller.go)
//
// ## External Service Interfaces
//
//   - CatalogClient: Discovery and recommendation collaborator (internal/http/stores.go)
//
// # Adding a New Catalog Backend
//
// To point discovery at a different catalog service:
//
//  1. Implement CatalogClient in a new package
//
//     type OpenLibraryCatalog struct {
//         baseURL    string
//         httpClient *http.Client
//     }
//
//     func (c *OpenLibraryCatalog) Search(ctx context.Context, query string) ([]catalog.BookRef, error)
//
//     var _ http.CatalogClient = (*OpenLibraryCatalog)(nil)
//
//  2. Wire it in entrypoint.go
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., reviews):
//
//  1. Create sub-package: internal/database/reviews/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ ReviewStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
