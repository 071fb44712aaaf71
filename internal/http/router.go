// Package http wires the gin router and per-resource controllers for the
// JSON API consumed by the BookBoss SPA.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/bookboss/bookboss/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CORS for the SPA origin
	if len(cfg.AllowedOrigins) > 0 {
		corsHandler := cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		})
		router.Use(func(c *gin.Context) {
			corsHandler.HandlerFunc(c.Writer, c.Request)
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}
			c.Next()
		})
	}

	// Sessions must load before the auth middleware reads them
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Auth endpoints
	if cfg.AuthController != nil {
		authGroup := router.Group("/api/auth")
		authGroup.POST("/login", cfg.AuthController.Login)
		authGroup.POST("/register", cfg.AuthController.Register)
		authGroup.POST("/logout", cfg.AuthController.Logout)
		authGroup.GET("/status", cfg.AuthController.Status)
		authGroup.GET("/me", cfg.AuthController.Me)
		authGroup.POST("/token", cfg.AuthController.GenerateToken)
		authGroup.DELETE("/token", cfg.AuthController.RevokeToken)
	}

	// Books
	booksController := NewBooksController(cfg.Books, cfg.CoverCache, cfg.PhotoStore)
	router.GET("/api/books", booksController.List)
	router.POST("/api/books", booksController.Create)
	router.PUT("/api/books/:id", booksController.Update)
	router.DELETE("/api/books/bulk", booksController.BulkDelete)
	router.PATCH("/api/books/bulk", booksController.BulkUpdate)
	router.GET("/api/books/:id", booksController.Get)
	router.DELETE("/api/books/:id", booksController.Delete)

	// Covers
	coversController := NewCoversController(cfg.Books, cfg.CoverCache)
	router.GET("/api/books/:id/cover", coversController.GetCover)
	router.POST("/api/books/:id/cover", coversController.UploadCover)

	// Photos
	photosController := NewPhotosController(cfg.Photos, cfg.PhotoStore, cfg.MaxUploadMB)
	router.GET("/api/books/:id/photos", photosController.ListByBook)
	router.POST("/api/books/:id/photos", photosController.Upload)
	router.PUT("/api/photos/:id", photosController.Update)
	router.DELETE("/api/photos/:id", photosController.Delete)

	// Shelves
	shelvesController := NewShelvesController(cfg.Shelves)
	router.GET("/api/shelves", shelvesController.List)
	router.POST("/api/shelves", shelvesController.Create)
	router.DELETE("/api/shelves/:id", shelvesController.Delete)
	router.POST("/api/shelves/:id/books", shelvesController.AddBook)
	router.DELETE("/api/shelves/:id/books/:bookId", shelvesController.RemoveBook)

	// Loans
	loansController := NewLoansController(cfg.Loans)
	router.GET("/api/loans", loansController.List)
	router.POST("/api/loans", loansController.Create)
	router.PUT("/api/loans/:id/return", loansController.Return)

	// Reading progress
	progressController := NewProgressController(cfg.Progress)
	router.GET("/api/progress", progressController.List)
	router.GET("/api/progress/:bookId", progressController.Get)
	router.PUT("/api/progress/:bookId", progressController.Upsert)

	// Metadata refresh
	if cfg.Refresher != nil {
		metadataController := NewMetadataController(cfg.Refresher, cfg.Refresh, cfg.TaskClient)
		router.POST("/api/books/refresh-metadata", metadataController.RefreshAll)
		router.POST("/api/books/:id/refresh-metadata", metadataController.RefreshBook)
		router.GET("/api/metadata/refresh/status", metadataController.GetRefreshStatus)
	}

	// Settings (reads for any user, writes admin-only)
	settingsController := NewSettingsController(cfg.Settings, cfg.SettingsStore, cfg.RefreshScheduler)
	router.GET("/api/settings", settingsController.List)
	if cfg.AuthMiddleware != nil {
		router.POST("/api/settings", cfg.AuthMiddleware.RequireAdmin(), settingsController.Set)
	} else {
		router.POST("/api/settings", settingsController.Set)
	}

	// Users (admin CRUD + self-service profile)
	if cfg.AuthService != nil {
		usersController := NewUsersController(cfg.AuthService)
		if cfg.AuthMiddleware != nil {
			adminGroup := router.Group("/api/users", cfg.AuthMiddleware.RequireAdmin())
			adminGroup.GET("", usersController.List)
			adminGroup.POST("", usersController.Create)
			adminGroup.PUT("/:id", usersController.Update)
			adminGroup.DELETE("/:id", usersController.Delete)
		}

		router.GET("/api/profile", usersController.GetProfile)
		router.PUT("/api/profile", usersController.UpdateProfile)
		if cfg.AuthController != nil {
			router.PUT("/api/profile/password", cfg.AuthController.ChangePassword)
		}
	}

	return router
}
