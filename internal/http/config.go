package http

import (
	"github.com/bookboss/bookboss/internal/auth"
	"github.com/bookboss/bookboss/internal/covers"
	"github.com/bookboss/bookboss/internal/database"
	"github.com/bookboss/bookboss/internal/database/books"
	"github.com/bookboss/bookboss/internal/database/loans"
	"github.com/bookboss/bookboss/internal/database/photos"
	"github.com/bookboss/bookboss/internal/database/progress"
	"github.com/bookboss/bookboss/internal/database/refresh"
	"github.com/bookboss/bookboss/internal/database/settings"
	"github.com/bookboss/bookboss/internal/database/shelves"
	"github.com/bookboss/bookboss/internal/metadata"
	photostore "github.com/bookboss/bookboss/internal/photos"
	"github.com/bookboss/bookboss/internal/scheduler"
	"github.com/bookboss/bookboss/internal/settingsstore"
	"github.com/bookboss/bookboss/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Version  string

	// Repositories
	Books    *books.Repository
	Shelves  *shelves.Repository
	Loans    *loans.Repository
	Progress *progress.Repository
	Photos   *photos.Repository
	Settings *settings.Repository
	Refresh  *refresh.Repository

	// Authentication
	AuthService    *auth.Service
	AuthController *auth.Controller
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager

	// File storage
	PhotoStore  *photostore.Store
	CoverCache  *covers.Cache
	MaxUploadMB int64

	// Metadata refresh
	Refresher        *metadata.Refresher
	RefreshScheduler *scheduler.MetadataRefreshScheduler

	// Settings
	SettingsStore *settingsstore.SettingsStore

	// Task queue client (optional; refresh runs inline when nil)
	TaskClient *tasks.Client

	// CORS origins for the SPA
	AllowedOrigins []string
}
