package photos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.BookPhoto{}, &entities.Book{}))
	return db
}

func createTestBook(t *testing.T, db *gorm.DB) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestValidPhotoType(t *testing.T) {
	assert.True(t, ValidPhotoType(""))
	assert.True(t, ValidPhotoType(entities.PhotoTypeCover))
	assert.True(t, ValidPhotoType(entities.PhotoTypeSpine))
	assert.True(t, ValidPhotoType(entities.PhotoTypeEdges))
	assert.True(t, ValidPhotoType(entities.PhotoTypeSpecial))
	assert.False(t, ValidPhotoType("selfie"))
}

func TestCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	book := createTestBook(t, db)

	photo := &entities.BookPhoto{
		BookID:    book.ID,
		PhotoPath: "/photos/a.jpg",
		PhotoType: entities.PhotoTypeSpine,
		Tags:      entities.StringList{"signed", "first edition"},
	}
	require.NoError(t, repo.Create(photo))

	photos, err := repo.ListByBook(book.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, entities.PhotoTypeSpine, photos[0].PhotoType)
	assert.Equal(t, entities.StringList{"signed", "first edition"}, photos[0].Tags)
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	book := createTestBook(t, db)

	err := repo.Create(&entities.BookPhoto{BookID: book.ID, PhotoType: "selfie"})
	assert.ErrorIs(t, err, ErrInvalidType)

	err = repo.Create(&entities.BookPhoto{BookID: 999, PhotoPath: "/photos/a.jpg"})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateMetadataOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	book := createTestBook(t, db)

	photo := &entities.BookPhoto{BookID: book.ID, PhotoPath: "/photos/a.jpg"}
	require.NoError(t, repo.Create(photo))

	updated, err := repo.Update(photo.ID, map[string]any{
		"photo_type":  entities.PhotoTypeEdges,
		"description": "sprayed edges",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.PhotoTypeEdges, updated.PhotoType)
	assert.Equal(t, "sprayed edges", updated.Description)
	assert.Equal(t, "/photos/a.jpg", updated.PhotoPath)

	_, err = repo.Update(photo.ID, map[string]any{"photo_type": "selfie"})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = repo.Update(999, map[string]any{"description": "x"})
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestDeleteReturnsPaths(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	book := createTestBook(t, db)

	photo := &entities.BookPhoto{
		BookID:        book.ID,
		PhotoPath:     "/photos/a.jpg",
		ThumbnailPath: "/photos/a_thumb.jpg",
	}
	require.NoError(t, repo.Create(photo))

	paths, err := repo.Delete(photo.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/photos/a.jpg", "/photos/a_thumb.jpg"}, paths)

	_, err = repo.GetByID(photo.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	_, err = repo.Delete(photo.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}
