package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/database/books"
	"github.com/bookboss/bookboss/internal/entities"
)

func setupBooksRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	controller := NewBooksController(books.NewRepository(db), nil, nil)

	router := newTestRouter(1, false)
	router.GET("/api/books", controller.List)
	router.POST("/api/books", controller.Create)
	router.GET("/api/books/:id", controller.Get)
	router.PUT("/api/books/:id", controller.Update)
	router.DELETE("/api/books/bulk", controller.BulkDelete)
	router.PATCH("/api/books/bulk", controller.BulkUpdate)
	router.DELETE("/api/books/:id", controller.Delete)
	return router, db
}

func TestBooksCreate(t *testing.T) {
	router, _ := setupBooksRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":      "Dune",
		"author":     "Frank Herbert",
		"categories": []string{"Science Fiction"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var book entities.Book
	decodeBody(t, w, &book)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, entities.StringList{"Science Fiction"}, book.Categories)
}

func TestBooksCreateCategoriesString(t *testing.T) {
	router, _ := setupBooksRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":      "Dune",
		"author":     "Frank Herbert",
		"categories": "Science Fiction, Space Opera",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var book entities.Book
	decodeBody(t, w, &book)
	assert.Equal(t, entities.StringList{"Science Fiction", "Space Opera"}, book.Categories)
}

func TestBooksCreateIgnoresLoanFields(t *testing.T) {
	router, db := setupBooksRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":         "Dune",
		"author":        "Frank Herbert",
		"is_loaned":     true,
		"borrower_name": "Paul",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var book entities.Book
	require.NoError(t, db.First(&book).Error)
	assert.False(t, book.IsLoaned)
	assert.Empty(t, book.BorrowerName)
}

func TestBooksCreateValidation(t *testing.T) {
	router, _ := setupBooksRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{"author": "Frank Herbert"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":      "Dune",
		"author":     "Frank Herbert",
		"categories": 7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksGet(t *testing.T) {
	router, db := setupBooksRouter(t)

	book := entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, db.Create(&book).Error)

	w := doJSON(t, router, http.MethodGet, "/api/books/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/books/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/books/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksUpdateRecomputesProgress(t *testing.T) {
	router, db := setupBooksRouter(t)

	book := entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, db.Create(&book).Error)

	w := doJSON(t, router, http.MethodPut, "/api/books/1", gin.H{
		"page_count":   412,
		"current_page": 103,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated entities.Book
	decodeBody(t, w, &updated)
	assert.Equal(t, 25, updated.ProgressPercentage)
}

func TestBooksUpdateIgnoresUnknownFields(t *testing.T) {
	router, db := setupBooksRouter(t)

	book := entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, db.Create(&book).Error)

	w := doJSON(t, router, http.MethodPut, "/api/books/1", gin.H{
		"title":     "Dune Messiah",
		"is_loaned": true, // loan fields only change through the loans API
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated entities.Book
	decodeBody(t, w, &updated)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.False(t, updated.IsLoaned)
}

func TestBooksDelete(t *testing.T) {
	router, db := setupBooksRouter(t)

	book := entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, db.Create(&book).Error)

	w := doJSON(t, router, http.MethodDelete, "/api/books/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&entities.Book{}).Count(&count)
	assert.Zero(t, count)

	w = doJSON(t, router, http.MethodDelete, "/api/books/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksBulkUpdate(t *testing.T) {
	router, db := setupBooksRouter(t)

	for _, title := range []string{"Dune", "Dune Messiah", "Children of Dune"} {
		require.NoError(t, db.Create(&entities.Book{Title: title, Author: "Frank Herbert"}).Error)
	}

	w := doJSON(t, router, http.MethodPatch, "/api/books/bulk", gin.H{
		"ids":     []uint{1, 2},
		"updates": gin.H{"publisher": "Chilton"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&entities.Book{}).Where("publisher = ?", "Chilton").Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestBooksBulkUpdateValidation(t *testing.T) {
	router, _ := setupBooksRouter(t)

	w := doJSON(t, router, http.MethodPatch, "/api/books/bulk", gin.H{
		"ids":     []uint{},
		"updates": gin.H{"publisher": "Chilton"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/books/bulk", gin.H{
		"ids":     []uint{1},
		"updates": gin.H{"is_loaned": true},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksBulkDelete(t *testing.T) {
	router, db := setupBooksRouter(t)

	for _, title := range []string{"Dune", "Dune Messiah", "Children of Dune"} {
		require.NoError(t, db.Create(&entities.Book{Title: title, Author: "Frank Herbert"}).Error)
	}

	w := doJSON(t, router, http.MethodDelete, "/api/books/bulk", gin.H{"ids": []uint{1, 3}})
	require.Equal(t, http.StatusOK, w.Code)

	var remaining []entities.Book
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Dune Messiah", remaining[0].Title)
}

func TestBooksList(t *testing.T) {
	router, db := setupBooksRouter(t)

	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)

	w := doJSON(t, router, http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Books []entities.Book `json:"books"`
		Count int             `json:"count"`
	}
	decodeBody(t, w, &response)
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Books, 1)
	assert.NotNil(t, response.Books[0].ShelfIDs)
}
