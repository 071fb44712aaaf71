// Package entrypoint wires configuration, storage, background workers, and the
// HTTP router into a running server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/auth"
	"github.com/bookboss/bookboss/internal/config"
	"github.com/bookboss/bookboss/internal/covers"
	"github.com/bookboss/bookboss/internal/database"
	"github.com/bookboss/bookboss/internal/database/books"
	"github.com/bookboss/bookboss/internal/database/loans"
	dbphotos "github.com/bookboss/bookboss/internal/database/photos"
	"github.com/bookboss/bookboss/internal/database/progress"
	"github.com/bookboss/bookboss/internal/database/refresh"
	"github.com/bookboss/bookboss/internal/database/settings"
	"github.com/bookboss/bookboss/internal/database/shelves"
	http_controllers "github.com/bookboss/bookboss/internal/http"
	"github.com/bookboss/bookboss/internal/metadata"
	photostore "github.com/bookboss/bookboss/internal/photos"
	"github.com/bookboss/bookboss/internal/scheduler"
	"github.com/bookboss/bookboss/internal/settingsstore"
	"github.com/bookboss/bookboss/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown requested, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run assembles every component and starts the server.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting BookBoss v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	booksRepo := books.NewRepository(db.DB)
	shelvesRepo := shelves.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB)
	progressRepo := progress.NewRepository(db.DB)
	photosRepo := dbphotos.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)
	refreshRepo := refresh.NewRepository(db.DB)

	settingsStore := settingsstore.New(settingsRepo)

	// Cover cache next to the database unless overridden
	coverCacheDir := cfg.Covers.Dir
	if coverCacheDir == "" {
		coverCacheDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	}
	coverCache, err := covers.NewCache(coverCacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}
	log.Printf("Cover cache initialized at %s", coverCacheDir)

	// Photo storage
	uploadsDir := cfg.Uploads.Dir
	if uploadsDir == "" {
		uploadsDir = filepath.Join(filepath.Dir(cfg.Database.Path), "photos")
	}
	photoStore, err := photostore.NewStore(uploadsDir, cfg.Uploads.ThumbnailSize)
	if err != nil {
		log.Fatalf("Failed to initialize photo store: %v", err)
	}

	// Metadata providers, tried in order
	refresher := metadata.NewRefresher(buildProviders(cfg.Metadata.Provider), booksRepo, coverCache)
	refresher.SetProgressReporter(refreshRepo)

	// Task queue for background metadata refresh
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
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

		taskClient.Register(
			tasks.NewRefreshAllBooksQueue(refresher),
			tasks.NewRefreshBookQueue(refresher),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Scheduled refresh, driven by settings
	refreshScheduler := scheduler.NewMetadataRefreshScheduler(refresher, settingsStore)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	if err := refreshScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: metadata refresh scheduler not started: %v", err)
	}

	// Authentication
	var authService *auth.Service
	var authController *auth.Controller
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		authController = auth.NewController(authService, sessionManager, settingsStore, cfg.Auth)

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. Register the first account or run the create-admin command.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database: db,
		Version:  version,

		Books:    booksRepo,
		Shelves:  shelvesRepo,
		Loans:    loansRepo,
		Progress: progressRepo,
		Photos:   photosRepo,
		Settings: settingsRepo,
		Refresh:  refreshRepo,

		AuthService:    authService,
		AuthController: authController,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,

		PhotoStore:  photoStore,
		CoverCache:  coverCache,
		MaxUploadMB: cfg.Uploads.MaxUploadMB,

		Refresher:        refresher,
		RefreshScheduler: refreshScheduler,
		SettingsStore:    settingsStore,
		TaskClient:       taskClient,

		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		refreshScheduler.Stop()
		schedulerCancel()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if authController != nil {
			authController.Close()
		}
	}

	Serve(router, cfg, onShutdown)
}

// buildProviders returns the metadata providers for the configured mode.
func buildProviders(mode string) []metadata.Provider {
	switch mode {
	case "openlibrary":
		return []metadata.Provider{metadata.NewOpenLibraryClient()}
	case "googlebooks":
		return []metadata.Provider{metadata.NewGoogleBooksClient()}
	default:
		return []metadata.Provider{
			metadata.NewOpenLibraryClient(),
			metadata.NewGoogleBooksClient(),
		}
	}
}
