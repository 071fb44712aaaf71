package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookboss/bookboss/internal/database/books"
	"github.com/bookboss/bookboss/internal/database/refresh"
	"github.com/bookboss/bookboss/internal/metadata"
)

func setupMetadataRouter(t *testing.T) (*gin.Engine, *refresh.Repository) {
	t.Helper()
	db := setupTestDB(t)
	booksRepo := books.NewRepository(db)
	refreshRepo := refresh.NewRepository(db)

	refresher := metadata.NewRefresher(nil, booksRepo, nil)
	refresher.SetProgressReporter(refreshRepo)

	controller := NewMetadataController(refresher, refreshRepo, nil)

	router := newTestRouter(1, false)
	router.POST("/api/books/refresh-metadata", controller.RefreshAll)
	router.POST("/api/books/:id/refresh-metadata", controller.RefreshBook)
	router.GET("/api/metadata/refresh/status", controller.GetRefreshStatus)
	return router, refreshRepo
}

func TestRefreshStatusIdle(t *testing.T) {
	router, _ := setupMetadataRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/metadata/refresh/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	decodeBody(t, w, &response)
	assert.Equal(t, "idle", response["status"])
}

func TestRefreshAllAccepted(t *testing.T) {
	router, _ := setupMetadataRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/books/refresh-metadata", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRefreshAllConflictWhileRunning(t *testing.T) {
	router, refreshRepo := setupMetadataRouter(t)

	require.NoError(t, refreshRepo.StartRefresh(10))

	w := doJSON(t, router, http.MethodPost, "/api/books/refresh-metadata", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRefreshBookNotFound(t *testing.T) {
	router, _ := setupMetadataRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/books/99/refresh-metadata", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
