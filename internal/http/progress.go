package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/database/progress"
	"github.com/bookboss/bookboss/internal/entities"
)

// ProgressController serves per-user reading progress endpoints.
type ProgressController struct {
	repo *progress.Repository
}

// NewProgressController creates a new progress controller.
func NewProgressController(repo *progress.Repository) *ProgressController {
	return &ProgressController{repo: repo}
}

// List returns all progress rows for the user.
func (controller *ProgressController) List(c *gin.Context) {
	all, err := controller.repo.ListForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": all, "count": len(all)})
}

// Get returns the user's progress for one book.
func (controller *ProgressController) Get(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	record, err := controller.repo.Get(GetUserID(c), bookID)
	if err != nil {
		if errors.Is(err, progress.ErrProgressNotFound) {
			respondNotFound(c, "progress")
			return
		}
		respondInternalError(c, err, "get progress")
		return
	}

	c.JSON(http.StatusOK, record)
}

type upsertProgressRequest struct {
	Status   entities.ReadingStatus `json:"status"`
	Progress int                    `json:"progress"`
	Rating   float64                `json:"rating"`
}

// Upsert creates or replaces the user's progress for a book. Last write wins.
func (controller *ProgressController) Upsert(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req upsertProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	record, err := controller.repo.Upsert(GetUserID(c), bookID, req.Status, req.Progress, req.Rating)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidStatus) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "upsert progress")
		return
	}

	c.JSON(http.StatusOK, record)
}
