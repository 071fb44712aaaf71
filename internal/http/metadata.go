package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/database/books"
	"github.com/bookboss/bookboss/internal/database/refresh"
	"github.com/bookboss/bookboss/internal/metadata"
	"github.com/bookboss/bookboss/internal/tasks"
)

// MetadataController triggers metadata refreshes and reports their progress.
type MetadataController struct {
	refresher  *metadata.Refresher
	refreshes  *refresh.Repository
	taskClient *tasks.Client
}

// NewMetadataController creates a new metadata controller.
func NewMetadataController(refresher *metadata.Refresher, refreshes *refresh.Repository, taskClient *tasks.Client) *MetadataController {
	return &MetadataController{
		refresher:  refresher,
		refreshes:  refreshes,
		taskClient: taskClient,
	}
}

// RefreshAll starts a catalog-wide metadata refresh in the background and
// returns 202. Only one bulk refresh may run at a time; a second trigger while
// one is running is a conflict. Progress is polled via GetRefreshStatus.
func (controller *MetadataController) RefreshAll(c *gin.Context) {
	running, err := controller.refreshes.IsRefreshRunning()
	if err != nil {
		respondInternalError(c, err, "check refresh status")
		return
	}
	if running {
		respondConflict(c, "metadata refresh is already in progress")
		return
	}

	if controller.taskClient != nil {
		task := tasks.RefreshAllBooksTask{TriggeredBy: GetUserID(c)}
		if _, err := controller.taskClient.Add(task).Save(); err != nil {
			respondInternalError(c, err, "enqueue refresh")
			return
		}
	} else {
		go func() {
			if _, err := controller.refresher.RefreshAll(context.Background()); err != nil &&
				!errors.Is(err, metadata.ErrRefreshRunning) {
				log.Printf("metadata: background refresh failed: %v", err)
			}
		}()
	}

	respondAccepted(c, "metadata refresh started", gin.H{
		"status_url": "/api/metadata/refresh/status",
	})
}

// RefreshBook refreshes one book's metadata synchronously and returns the
// updated book with the list of fields that changed.
func (controller *MetadataController) RefreshBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := controller.refresher.RefreshBook(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, metadata.ErrNotFound):
			respondNotFound(c, "metadata")
		default:
			respondBadRequest(c, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRefreshStatus returns the current (or last) bulk refresh progress row.
// Before any refresh has run the status is "idle".
func (controller *MetadataController) GetRefreshStatus(c *gin.Context) {
	progress, err := controller.refreshes.GetProgress()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"status": "idle"})
			return
		}
		respondInternalError(c, err, "get refresh status")
		return
	}

	c.JSON(http.StatusOK, progress)
}
