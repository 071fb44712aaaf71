package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/database/photos"
	"github.com/bookboss/bookboss/internal/entities"
	photostore "github.com/bookboss/bookboss/internal/photos"
)

// PhotosController serves the book photo endpoints.
type PhotosController struct {
	repo        *photos.Repository
	store       *photostore.Store
	maxUploadMB int64
}

// NewPhotosController creates a new photos controller.
func NewPhotosController(repo *photos.Repository, store *photostore.Store, maxUploadMB int64) *PhotosController {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &PhotosController{repo: repo, store: store, maxUploadMB: maxUploadMB}
}

// ListByBook returns a book's photos, oldest first.
func (controller *PhotosController) ListByBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	all, err := controller.repo.ListByBook(bookID)
	if err != nil {
		respondInternalError(c, err, "list photos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": all, "count": len(all)})
}

// parseTags splits a comma separated tag field, dropping empty entries.
func parseTags(raw string) entities.StringList {
	if raw == "" {
		return nil
	}
	var tags entities.StringList
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Upload accepts a multipart photo for a book. Optional form fields:
// photo_type, description, tags (comma separated).
func (controller *PhotosController) Upload(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, controller.maxUploadMB<<20)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondBadRequest(c, "photo file is required")
		return
	}

	photoType := c.PostForm("photo_type")
	if !photos.ValidPhotoType(photoType) {
		respondBadRequest(c, "invalid photo type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "could not read uploaded file")
		return
	}
	defer file.Close()

	saved, err := controller.store.Save(file)
	if err != nil {
		if errors.Is(err, photostore.ErrNotAnImage) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "save photo")
		return
	}

	photo := entities.BookPhoto{
		BookID:        bookID,
		PhotoPath:     saved.PhotoPath,
		ThumbnailPath: saved.ThumbnailPath,
		PhotoType:     photoType,
		Description:   c.PostForm("description"),
		Tags:          parseTags(c.PostForm("tags")),
	}

	if err := controller.repo.Create(&photo); err != nil {
		photostore.RemoveFiles([]string{saved.PhotoPath, saved.ThumbnailPath})
		if errors.Is(err, photos.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "create photo")
		return
	}

	respondCreated(c, photo)
}

type updatePhotoRequest struct {
	PhotoType   *string  `json:"photo_type"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

// Update changes a photo's metadata. The stored files stay put.
func (controller *PhotosController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := make(map[string]any)
	if req.PhotoType != nil {
		updates["photo_type"] = *req.PhotoType
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Tags != nil {
		updates["tags"] = entities.StringList(req.Tags)
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields provided")
		return
	}

	photo, err := controller.repo.Update(id, updates)
	if err != nil {
		switch {
		case errors.Is(err, photos.ErrInvalidType):
			respondBadRequest(c, err.Error())
		case errors.Is(err, photos.ErrPhotoNotFound):
			respondNotFound(c, "photo")
		default:
			respondInternalError(c, err, "update photo")
		}
		return
	}

	c.JSON(http.StatusOK, photo)
}

// Delete removes a photo row, then its files best-effort.
func (controller *PhotosController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filePaths, err := controller.repo.Delete(id)
	if err != nil {
		if errors.Is(err, photos.ErrPhotoNotFound) {
			respondNotFound(c, "photo")
			return
		}
		respondInternalError(c, err, "delete photo")
		return
	}

	photostore.RemoveFiles(filePaths)

	respondSuccess(c, "photo deleted")
}
