package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/database/shelves"
	"github.com/bookboss/bookboss/internal/entities"
)

func setupShelvesRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	controller := NewShelvesController(shelves.NewRepository(db))

	router := newTestRouter(1, false)
	router.GET("/api/shelves", controller.List)
	router.POST("/api/shelves", controller.Create)
	router.DELETE("/api/shelves/:id", controller.Delete)
	router.POST("/api/shelves/:id/books", controller.AddBook)
	router.DELETE("/api/shelves/:id/books/:bookId", controller.RemoveBook)
	return router, db
}

func TestShelvesCreate(t *testing.T) {
	router, _ := setupShelvesRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": "Sci-Fi"})
	require.Equal(t, http.StatusCreated, w.Code)

	var shelf entities.Shelf
	decodeBody(t, w, &shelf)
	assert.Equal(t, "Sci-Fi", shelf.Name)
	assert.Equal(t, uint(1), shelf.UserID)
}

func TestShelvesCreateBlankName(t *testing.T) {
	router, _ := setupShelvesRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShelvesCreateDuplicate(t *testing.T) {
	router, _ := setupShelvesRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": "Sci-Fi"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": "Sci-Fi"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestShelvesAddBookIdempotent(t *testing.T) {
	router, db := setupShelvesRouter(t)

	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)
	w := doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": "Sci-Fi"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/shelves/1/books", gin.H{"book_id": 1})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/shelves/1/books", gin.H{"book_id": 1})
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&entities.ShelfBook{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestShelvesAddBookErrors(t *testing.T) {
	router, db := setupShelvesRouter(t)

	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)
	doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": "Sci-Fi"})

	w := doJSON(t, router, http.MethodPost, "/api/shelves/99/books", gin.H{"book_id": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/shelves/1/books", gin.H{"book_id": 99})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/shelves/1/books", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Create a book, shelve it, delete the shelf: the book must survive with no
// shelf annotations left.
func TestShelfDeleteLeavesBook(t *testing.T) {
	router, db := setupShelvesRouter(t)

	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)
	doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": "Sci-Fi"})
	doJSON(t, router, http.MethodPost, "/api/shelves/1/books", gin.H{"book_id": 1})

	w := doJSON(t, router, http.MethodDelete, "/api/shelves/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var bookCount, joinCount int64
	db.Model(&entities.Book{}).Count(&bookCount)
	db.Model(&entities.ShelfBook{}).Count(&joinCount)
	assert.Equal(t, int64(1), bookCount)
	assert.Zero(t, joinCount)
}

func TestShelvesListWithCounts(t *testing.T) {
	router, db := setupShelvesRouter(t)

	require.NoError(t, db.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}).Error)
	doJSON(t, router, http.MethodPost, "/api/shelves", gin.H{"name": "Sci-Fi"})
	doJSON(t, router, http.MethodPost, "/api/shelves/1/books", gin.H{"book_id": 1})

	w := doJSON(t, router, http.MethodGet, "/api/shelves", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Shelves []entities.Shelf `json:"shelves"`
	}
	decodeBody(t, w, &response)
	require.Len(t, response.Shelves, 1)
	assert.Equal(t, 1, response.Shelves[0].BookCount)
}
