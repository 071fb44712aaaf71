package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/database/shelves"
)

// ShelvesController serves the shelf endpoints. All operations are scoped to
// the authenticated user.
type ShelvesController struct {
	repo *shelves.Repository
}

// NewShelvesController creates a new shelves controller.
func NewShelvesController(repo *shelves.Repository) *ShelvesController {
	return &ShelvesController{repo: repo}
}

// List returns the user's shelves with book counts.
func (controller *ShelvesController) List(c *gin.Context) {
	userID := GetUserID(c)

	all, err := controller.repo.ListForUser(userID)
	if err != nil {
		respondInternalError(c, err, "list shelves")
		return
	}

	c.JSON(http.StatusOK, gin.H{"shelves": all, "count": len(all)})
}

type createShelfRequest struct {
	Name string `json:"name"`
}

// Create adds a shelf for the user. Duplicate names are a conflict.
func (controller *ShelvesController) Create(c *gin.Context) {
	var req createShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	shelf, err := controller.repo.Create(GetUserID(c), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, shelves.ErrNameRequired):
			respondBadRequest(c, err.Error())
		case errors.Is(err, shelves.ErrShelfExists):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "create shelf")
		}
		return
	}

	respondCreated(c, shelf)
}

// Delete removes a shelf and its memberships. Books survive.
func (controller *ShelvesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.repo.Delete(GetUserID(c), id); err != nil {
		if errors.Is(err, shelves.ErrShelfNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "delete shelf")
		return
	}

	respondSuccess(c, "shelf deleted")
}

type addBookRequest struct {
	BookID uint `json:"book_id" binding:"required"`
}

// AddBook places a book on a shelf. Adding the same book twice is a no-op.
func (controller *ShelvesController) AddBook(c *gin.Context) {
	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	err := controller.repo.AddBook(GetUserID(c), shelfID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, shelves.ErrShelfNotFound):
			respondNotFound(c, "shelf")
		case errors.Is(err, shelves.ErrBookNotFound):
			respondNotFound(c, "book")
		default:
			respondInternalError(c, err, "add book to shelf")
		}
		return
	}

	respondSuccess(c, "book added to shelf")
}

// RemoveBook takes a book off a shelf.
func (controller *ShelvesController) RemoveBook(c *gin.Context) {
	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	err := controller.repo.RemoveBook(GetUserID(c), shelfID, bookID)
	if err != nil {
		if errors.Is(err, shelves.ErrShelfNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "remove book from shelf")
		return
	}

	respondSuccess(c, "book removed from shelf")
}
