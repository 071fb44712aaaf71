// Package photos provides database operations for book photo records.
//
// The rows here reference files managed by the photo store; row deletion
// happens first, file removal is best effort and handled by the caller.
package photos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

var (
	ErrPhotoNotFound = errors.New("photo not found")
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalidType   = errors.New("invalid photo type")
)

// ValidPhotoType reports whether t is an accepted photo type. An empty type is
// allowed; it means untyped.
func ValidPhotoType(t string) bool {
	switch t {
	case "", entities.PhotoTypeCover, entities.PhotoTypeSpine, entities.PhotoTypeEdges, entities.PhotoTypeSpecial:
		return true
	}
	return false
}

// Repository handles all book photo database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new photos repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByBook returns the photos attached to a book, oldest first.
func (r *Repository) ListByBook(bookID uint) ([]entities.BookPhoto, error) {
	var photos []entities.BookPhoto
	err := r.db.Where("book_id = ?", bookID).Order("created_at ASC").Find(&photos).Error
	return photos, err
}

// GetByID returns a photo record.
func (r *Repository) GetByID(id uint) (*entities.BookPhoto, error) {
	var photo entities.BookPhoto
	err := r.db.First(&photo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Create attaches a photo record to an existing book.
func (r *Repository) Create(photo *entities.BookPhoto) error {
	if !ValidPhotoType(photo.PhotoType) {
		return ErrInvalidType
	}

	var book entities.Book
	if err := r.db.First(&book, photo.BookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	return r.db.Create(photo).Error
}

// Update applies a partial update to a photo's metadata (type, description,
// tags). The stored file paths are immutable through this path.
func (r *Repository) Update(id uint, updates map[string]any) (*entities.BookPhoto, error) {
	if t, ok := updates["photo_type"].(string); ok && !ValidPhotoType(t) {
		return nil, ErrInvalidType
	}

	result := r.db.Model(&entities.BookPhoto{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPhotoNotFound
	}

	return r.GetByID(id)
}

// Delete removes the photo row and returns the backing file paths so the
// caller can remove them best-effort.
func (r *Repository) Delete(id uint) ([]string, error) {
	photo, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := r.db.Delete(&entities.BookPhoto{}, id).Error; err != nil {
		return nil, err
	}

	var paths []string
	if photo.PhotoPath != "" {
		paths = append(paths, photo.PhotoPath)
	}
	if photo.ThumbnailPath != "" {
		paths = append(paths, photo.ThumbnailPath)
	}
	return paths, nil
}
