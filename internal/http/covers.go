package http

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/covers"
	"github.com/bookboss/bookboss/internal/database/books"
)

// CoversController serves and accepts book cover images.
type CoversController struct {
	repo  *books.Repository
	cache *covers.Cache
}

// NewCoversController creates a new covers controller.
func NewCoversController(repo *books.Repository, cache *covers.Cache) *CoversController {
	return &CoversController{repo: repo, cache: cache}
}

// GetCover serves the book's cover image. A locally cached file wins; when
// only a remote URL is known the image is fetched into the cache on demand.
func (controller *CoversController) GetCover(c *gin.Context) {
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
		respondInternalError(c, err, "get book cover")
		return
	}

	if book.CoverImagePath != "" {
		if _, err := os.Stat(book.CoverImagePath); err == nil {
			c.File(book.CoverImagePath)
			return
		}
	}

	if book.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	localPath, err := controller.cache.Fetch(book.CoverURL)
	if err != nil {
		// Degrade to the remote URL rather than fail the request
		c.Redirect(http.StatusFound, book.CoverURL)
		return
	}

	if _, err := controller.repo.Update(id, map[string]any{"cover_image_path": localPath}); err != nil {
		respondInternalError(c, err, "store cover path")
		return
	}

	c.File(localPath)
}

// UploadCover replaces a book's cover with an uploaded image. The stored file
// supersedes any remote cover URL.
func (controller *CoversController) UploadCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := controller.repo.GetByID(id); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		respondBadRequest(c, "cover file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "could not read uploaded file")
		return
	}
	defer file.Close()

	localPath, err := controller.cache.Store(file)
	if err != nil {
		respondInternalError(c, err, "store cover upload")
		return
	}

	book, err := controller.repo.Update(id, map[string]any{
		"cover_image_path": localPath,
		"cover_url":        "",
	})
	if err != nil {
		respondInternalError(c, err, "update cover")
		return
	}

	c.JSON(http.StatusOK, book)
}
