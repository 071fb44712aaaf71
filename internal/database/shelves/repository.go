// Package shelves provides database operations for user shelves and their
// book memberships.
package shelves

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

var (
	ErrNameRequired  = errors.New("shelf name is required")
	ErrShelfExists   = errors.New("a shelf with this name already exists")
	ErrShelfNotFound = errors.New("shelf not found")
	ErrBookNotFound  = errors.New("book not found")
)

// Repository handles all shelf database operations. Every operation is scoped
// to the owning user; a shelf is never visible to or mutable by another user.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new shelves repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser returns the user's shelves with their book counts.
func (r *Repository) ListForUser(userID uint) ([]entities.Shelf, error) {
	var shelves []entities.Shelf
	if err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&shelves).Error; err != nil {
		return nil, err
	}

	for i := range shelves {
		var count int64
		if err := r.db.Model(&entities.ShelfBook{}).Where("shelf_id = ?", shelves[i].ID).Count(&count).Error; err != nil {
			return nil, err
		}
		shelves[i].BookCount = int(count)
	}

	return shelves, nil
}

// Create adds a new shelf for the user. Blank names are rejected; names are
// unique per user.
func (r *Repository) Create(userID uint, name string) (*entities.Shelf, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	var existing entities.Shelf
	err := r.db.Where("user_id = ? AND name = ?", userID, name).First(&existing).Error
	if err == nil {
		return nil, ErrShelfExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shelf := &entities.Shelf{UserID: userID, Name: name}
	if err := r.db.Create(shelf).Error; err != nil {
		return nil, err
	}
	return shelf, nil
}

// Delete removes the user's shelf and its membership rows. The books on the
// shelf are untouched. Deleting a shelf the user does not own reports not found.
func (r *Repository) Delete(userID, shelfID uint) error {
	var shelf entities.Shelf
	err := r.db.Where("id = ? AND user_id = ?", shelfID, userID).First(&shelf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrShelfNotFound
	}
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shelf_id = ?", shelfID).Delete(&entities.ShelfBook{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Shelf{}, shelfID).Error
	})
}

// AddBook puts a book on the user's shelf. Adding a book that is already on
// the shelf is a no-op, not an error.
func (r *Repository) AddBook(userID, shelfID, bookID uint) error {
	if err := r.checkOwnership(userID, shelfID); err != nil {
		return err
	}

	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	var existing entities.ShelfBook
	err := r.db.Where("shelf_id = ? AND book_id = ?", shelfID, bookID).First(&existing).Error
	if err == nil {
		return nil // already on the shelf
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(&entities.ShelfBook{ShelfID: shelfID, BookID: bookID}).Error
}

// RemoveBook takes a book off the user's shelf.
func (r *Repository) RemoveBook(userID, shelfID, bookID uint) error {
	if err := r.checkOwnership(userID, shelfID); err != nil {
		return err
	}
	return r.db.Where("shelf_id = ? AND book_id = ?", shelfID, bookID).Delete(&entities.ShelfBook{}).Error
}

func (r *Repository) checkOwnership(userID, shelfID uint) error {
	var shelf entities.Shelf
	err := r.db.Where("id = ? AND user_id = ?", shelfID, userID).First(&shelf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrShelfNotFound
	}
	return err
}
