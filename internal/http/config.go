package http

import (
	"github.com/wasomaji/kitabu/internal/auth"
	"github.com/wasomaji/kitabu/internal/config"
	"github.com/wasomaji/kitabu/internal/database"
	"github.com/wasomaji/kitabu/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Books    BookStore
	Lists    ListStore
	Purger   EntryPurger
	Entries  EntryController
	Catalog  CatalogClient

	// Authentication (all optional; absent means single-user mode)
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
