package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wasomaji/kitabu/internal/auth"
	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/config"
	"github.com/wasomaji/kitabu/internal/database"
	"github.com/wasomaji/kitabu/internal/database/annotations"
	"github.com/wasomaji/kitabu/internal/database/books"
	"github.com/wasomaji/kitabu/internal/database/lists"
	"github.com/wasomaji/kitabu/internal/database/users"
	"github.com/wasomaji/kitabu/internal/fallback"
	http_controllers "github.com/wasomaji/kitabu/internal/http"
	"github.com/wasomaji/kitabu/internal/reconcile"
	"github.com/wasomaji/kitabu/internal/resolve"
	"github.com/wasomaji/kitabu/internal/scheduler"
	"github.com/wasomaji/kitabu/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Kitabu v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories over the shared gorm handle
	booksRepo := books.NewRepository(db.DB)
	annotationsRepo := annotations.NewRepository(db.DB)
	listsRepo := lists.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)

	// Identity resolution against the canonical store
	resolver := resolve.NewResolver(booksRepo)

	// Per-user fallback snapshots for degraded writes
	snapshot, err := fallback.NewStore(cfg.Fallback.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize fallback store: %v", err)
	}

	// The reconciliation controller sits between the HTTP layer and the
	// stores: optimistic writes, background settlement, fallback on failure.
	controller := reconcile.NewController(annotationsRepo, snapshot, resolver, booksRepo)

	// Discovery/recommendation collaborator
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, cfg.Catalog.CacheTTL)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var resyncScheduler *scheduler.ResyncScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewResyncUserQueue(snapshot, annotationsRepo, resolver),
			tasks.NewCleanupDuplicatesQueue(annotationsRepo, annotationsRepo),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Schedule periodic snapshot resync
		if cfg.Resync.Enabled {
			resyncScheduler = scheduler.NewResyncScheduler(db, snapshot, taskClient, cfg.Resync.Schedule)
			if err := resyncScheduler.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start resync scheduler: %v", err)
			}
		}

		// A degraded save enqueues an early drain instead of waiting for the
		// next cron cycle.
		client := taskClient
		controller.OnDegrade(func(userID string) {
			if _, err := client.Add(tasks.ResyncUserTask{UserID: userID}).Save(); err != nil {
				log.Printf("Failed to enqueue resync after degraded save for %s: %v", userID, err)
			}
		})
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(usersRepo, cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers(context.Background())
		if !hasUsers {
			log.Printf("No users found. POST /api/auth/register to create an account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Books:          booksRepo,
		Lists:          listsRepo,
		Purger:         annotationsRepo,
		Entries:        controller,
		Catalog:        catalogClient,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		AuthConfig:     cfg.Auth,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TaskClient:     taskClient,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if resyncScheduler != nil {
			resyncScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		controller.Wait()
	}

	Serve(router, cfg, onShutdown)
}
