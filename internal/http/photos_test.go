package http

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/database/photos"
	"github.com/bookboss/bookboss/internal/entities"
	photostore "github.com/bookboss/bookboss/internal/photos"
)

func setupPhotosRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	store, err := photostore.NewStore(t.TempDir(), 100)
	require.NoError(t, err)
	controller := NewPhotosController(photos.NewRepository(db), store, 5)

	router := newTestRouter(1, false)
	router.GET("/api/books/:id/photos", controller.ListByBook)
	router.POST("/api/books/:id/photos", controller.Upload)
	router.PUT("/api/photos/:id", controller.Update)
	router.DELETE("/api/photos/:id", controller.Delete)
	return router, db
}

func multipartUpload(t *testing.T, router *gin.Engine, path string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "upload.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestPhotoUpload(t *testing.T) {
	router, db := setupPhotosRouter(t)
	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)

	w := multipartUpload(t, router, "/api/books/1/photos", testPNG(t), map[string]string{
		"photo_type":  "spine",
		"description": "sprayed edges",
		"tags":        "signed, first edition",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var photo entities.BookPhoto
	decodeBody(t, w, &photo)
	assert.Equal(t, "spine", photo.PhotoType)
	assert.Equal(t, entities.StringList{"signed", "first edition"}, photo.Tags)
	assert.FileExists(t, photo.PhotoPath)
	assert.FileExists(t, photo.ThumbnailPath)
}

func TestPhotoUploadRejectsNonImage(t *testing.T) {
	router, db := setupPhotosRouter(t)
	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)

	w := multipartUpload(t, router, "/api/books/1/photos", []byte("not an image"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoUploadInvalidType(t *testing.T) {
	router, db := setupPhotosRouter(t)
	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)

	w := multipartUpload(t, router, "/api/books/1/photos", testPNG(t), map[string]string{
		"photo_type": "selfie",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoUploadBookNotFound(t *testing.T) {
	router, _ := setupPhotosRouter(t)

	w := multipartUpload(t, router, "/api/books/99/photos", testPNG(t), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPhotoUpdateAndDelete(t *testing.T) {
	router, db := setupPhotosRouter(t)
	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)

	w := multipartUpload(t, router, "/api/books/1/photos", testPNG(t), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var photo entities.BookPhoto
	decodeBody(t, w, &photo)

	w = doJSON(t, router, http.MethodPut, "/api/photos/1", gin.H{
		"photo_type": "edges",
		"tags":       []string{"special"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated entities.BookPhoto
	decodeBody(t, w, &updated)
	assert.Equal(t, "edges", updated.PhotoType)
	assert.Equal(t, photo.PhotoPath, updated.PhotoPath)

	w = doJSON(t, router, http.MethodDelete, "/api/photos/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := os.Stat(photo.PhotoPath)
	assert.True(t, os.IsNotExist(err))

	w = doJSON(t, router, http.MethodDelete, "/api/photos/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPhotoListByBook(t *testing.T) {
	router, db := setupPhotosRouter(t)
	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)

	multipartUpload(t, router, "/api/books/1/photos", testPNG(t), nil)
	multipartUpload(t, router, "/api/books/1/photos", testPNG(t), nil)

	w := doJSON(t, router, http.MethodGet, "/api/books/1/photos", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Photos []entities.BookPhoto `json:"photos"`
		Count  int                  `json:"count"`
	}
	decodeBody(t, w, &response)
	assert.Equal(t, 2, response.Count)
}
