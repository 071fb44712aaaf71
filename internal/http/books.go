package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/covers"
	"github.com/bookboss/bookboss/internal/database/books"
	"github.com/bookboss/bookboss/internal/entities"
	photostore "github.com/bookboss/bookboss/internal/photos"
)

// BooksController serves the book catalog endpoints.
type BooksController struct {
	repo       *books.Repository
	coverCache *covers.Cache
	photoStore *photostore.Store
}

// NewBooksController creates a new books controller.
func NewBooksController(repo *books.Repository, coverCache *covers.Cache, photoStore *photostore.Store) *BooksController {
	return &BooksController{
		repo:       repo,
		coverCache: coverCache,
		photoStore: photoStore,
	}
}

// List returns every book with shelf annotations.
func (controller *BooksController) List(c *gin.Context) {
	all, err := controller.repo.List()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": all, "count": len(all)})
}

// Get returns a single book by ID.
func (controller *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// createBookRequest carries a new book. Categories accepts a JSON array or a
// comma separated string; the legacy client sends both shapes.
type createBookRequest struct {
	entities.Book
	Categories any `json:"categories"`
}

// normalizeCategories accepts a comma separated string, a []any of strings,
// or nil. A string is split into an ordered list, dropping empty entries.
func normalizeCategories(raw any) (entities.StringList, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case string:
		var list entities.StringList
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				list = append(list, part)
			}
		}
		return list, true
	case []any:
		list := make(entities.StringList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			list = append(list, s)
		}
		return list, true
	default:
		return nil, false
	}
}

// Create adds a book to the catalog. If a remote cover URL is provided the
// cover is fetched through the cache; a failed fetch keeps the URL and logs.
func (controller *BooksController) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	categories, ok := normalizeCategories(req.Categories)
	if !ok {
		respondBadRequest(c, "categories must be a string or an array of strings")
		return
	}

	book := req.Book
	book.ID = 0
	book.Categories = categories

	// Loan state is owned by the loans API, never set on create
	book.IsLoaned = false
	book.BorrowerName = ""
	book.LoanDate = nil
	book.DueDate = nil

	if book.CoverURL != "" && controller.coverCache != nil {
		localPath, err := controller.coverCache.Fetch(book.CoverURL)
		if err != nil {
			log.Printf("books: cover fetch failed for %q: %v", book.CoverURL, err)
		} else {
			book.CoverImagePath = localPath
		}
	}

	if err := controller.repo.Create(&book); err != nil {
		if errors.Is(err, books.ErrTitleRequired) || errors.Is(err, books.ErrAuthorRequired) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	respondCreated(c, book)
}

// allowedBookFields are the columns a client may set via update endpoints.
var allowedBookFields = map[string]bool{
	"title": true, "author": true, "isbn": true,
	"format": true, "binding_type": true, "physical_format": true,
	"book_condition": true, "is_signed": true, "edition_type": true,
	"edge_type": true, "binding_details": true, "has_bonus_chapters": true,
	"series": true, "series_order": true,
	"publisher": true, "language": true, "description": true,
	"categories": true, "page_count": true, "publication_date": true,
	"cover_url": true, "current_page": true, "status": true,
	"rating": true, "notes": true,
}

// buildBookUpdates filters a raw JSON patch down to allowed columns and
// normalizes categories. Returns false when the patch is malformed.
func buildBookUpdates(c *gin.Context) (map[string]any, bool) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondBadRequest(c, "invalid request body")
		return nil, false
	}

	updates := make(map[string]any, len(raw))
	for key, value := range raw {
		if !allowedBookFields[key] {
			continue
		}
		if key == "categories" {
			categories, ok := normalizeCategories(value)
			if !ok {
				respondBadRequest(c, "categories must be a string or an array of strings")
				return nil, false
			}
			updates[key] = categories
			continue
		}
		updates[key] = value
	}

	return updates, true
}

// Update applies a partial update to a book.
func (controller *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	updates, ok := buildBookUpdates(c)
	if !ok {
		return
	}

	book, err := controller.repo.Update(id, updates)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// Delete removes a book, its related rows, and its stored image files.
func (controller *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filePaths, err := controller.repo.Delete(id)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	// Rows are gone; file removal is best-effort
	photostore.RemoveFiles(filePaths)

	respondSuccess(c, "book deleted")
}

type bulkIDsRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// BulkDelete removes several books in one transaction.
func (controller *BooksController) BulkDelete(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		respondBadRequest(c, "ids are required")
		return
	}

	filePaths, err := controller.repo.BulkDelete(req.IDs)
	if err != nil {
		respondInternalError(c, err, "bulk delete books")
		return
	}

	photostore.RemoveFiles(filePaths)

	c.JSON(http.StatusOK, gin.H{"message": "books deleted", "count": len(req.IDs)})
}

type bulkUpdateRequest struct {
	IDs     []uint         `json:"ids" binding:"required"`
	Updates map[string]any `json:"updates" binding:"required"`
}

// BulkUpdate applies the same patch to several books in one transaction.
func (controller *BooksController) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		respondBadRequest(c, "ids and updates are required")
		return
	}

	updates := make(map[string]any, len(req.Updates))
	for key, value := range req.Updates {
		if !allowedBookFields[key] {
			continue
		}
		if key == "categories" {
			categories, ok := normalizeCategories(value)
			if !ok {
				respondBadRequest(c, "categories must be a string or an array of strings")
				return
			}
			updates[key] = categories
			continue
		}
		updates[key] = value
	}

	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields provided")
		return
	}

	if err := controller.repo.BulkUpdate(req.IDs, updates); err != nil {
		respondInternalError(c, err, "bulk update books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "books updated", "count": len(req.IDs)})
}
