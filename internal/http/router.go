package http

import (
	"github.com/gin-gonic/gin"

	"github.com/wasomaji/kitabu/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Apply session middleware if enabled
	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - every request acts as the local user
		router.Use(func(c *gin.Context) {
			auth.SetSession(c, auth.Session{UserID: auth.DefaultUserID}, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authHandlers := auth.NewHandlers(cfg.AuthService, cfg.SessionManager)
		authHandlers.RegisterRoutes(router)
	}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books)
	catalogController := NewCatalogController(cfg.Catalog)
	readingListController := NewReadingListController(cfg.Entries)
	listsController := NewListsController(cfg.Lists, cfg.Purger)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Canonical book store endpoints
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/search", booksController.SearchBooks)
	router.GET("/api/books/:id", booksController.GetBook)

	// Catalog discovery endpoints
	router.GET("/api/catalog/books", catalogController.Browse)
	router.GET("/api/catalog/search", catalogController.Search)
	router.GET("/api/catalog/recommendations", catalogController.Recommendations)
	router.GET("/api/catalog/themes", catalogController.Themes)

	// Reading-list entry endpoints
	router.POST("/api/reading-list/entries", readingListController.SaveEntry)
	router.GET("/api/reading-list/entries", readingListController.ListEntries)
	router.PATCH("/api/reading-list/entries/:id", readingListController.UpdateEntry)
	router.DELETE("/api/reading-list/entries/:id", readingListController.RemoveEntry)

	// Named list endpoints
	router.POST("/api/lists", listsController.CreateList)
	router.GET("/api/lists", listsController.ListLists)
	router.GET("/api/lists/:id", listsController.GetList)
	router.PUT("/api/lists/:id", listsController.UpdateList)
	router.DELETE("/api/lists/:id", listsController.DeleteList)

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
