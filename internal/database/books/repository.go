// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	all, err := repo.List()
package books

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrAuthorRequired = errors.New("author is required")
	ErrBookNotFound   = errors.New("book not found")
)

// Fields that require the progress percentage to be rederived when updated.
var progressFields = map[string]bool{
	"current_page": true,
	"page_count":   true,
}

// Repository handles all book catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List retrieves all books, each annotated with the IDs of the shelves it
// belongs to. Shelf membership is derived from the join table at read time,
// never stored on the book. No pagination; personal-library scale.
func (r *Repository) List() ([]entities.Book, error) {
	var books []entities.Book
	if err := r.db.Preload("Photos").Order("title ASC").Find(&books).Error; err != nil {
		return nil, err
	}

	var memberships []entities.ShelfBook
	if err := r.db.Find(&memberships).Error; err != nil {
		return nil, err
	}

	shelvesByBook := make(map[uint][]uint)
	for _, m := range memberships {
		shelvesByBook[m.BookID] = append(shelvesByBook[m.BookID], m.ShelfID)
	}

	for i := range books {
		ids := shelvesByBook[books[i].ID]
		if ids == nil {
			ids = []uint{}
		}
		books[i].ShelfIDs = ids
	}

	return books, nil
}

// GetByID retrieves a book by its ID with photos and shelf annotation.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Photos").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	book.ShelfIDs = []uint{}
	var shelfIDs []uint
	if err := r.db.Model(&entities.ShelfBook{}).Where("book_id = ?", id).Pluck("shelf_id", &shelfIDs).Error; err != nil {
		return nil, err
	}
	if shelfIDs != nil {
		book.ShelfIDs = shelfIDs
	}

	return &book, nil
}

// Create validates and inserts a new book. Title and author are required;
// everything else is optional. The progress percentage is derived before the
// insert so the stored value is consistent from the start.
func (r *Repository) Create(book *entities.Book) error {
	if book.Title == "" {
		return ErrTitleRequired
	}
	if book.Author == "" {
		return ErrAuthorRequired
	}

	book.RecomputeProgress()
	if book.ShelfIDs == nil {
		book.ShelfIDs = []uint{}
	}

	return r.db.Create(book).Error
}

// Update applies a partial update: every provided key overwrites the stored
// value. When the update touches current_page or page_count the progress
// percentage is rederived in the same transaction, and last_read_at is stamped
// on page movement.
func (r *Repository) Update(id uint, updates map[string]any) (*entities.Book, error) {
	if len(updates) == 0 {
		return r.GetByID(id)
	}

	touchesProgress := false
	for field := range updates {
		if progressFields[field] {
			touchesProgress = true
		}
	}
	if _, ok := updates["current_page"]; ok {
		updates["last_read_at"] = time.Now()
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookNotFound
		}

		if touchesProgress {
			return recomputeProgress(tx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// recomputeProgress rederives progress_percentage from the stored page fields.
func recomputeProgress(tx *gorm.DB, id uint) error {
	var book entities.Book
	if err := tx.First(&book, id).Error; err != nil {
		return err
	}
	book.RecomputeProgress()
	return tx.Model(&entities.Book{}).Where("id = ?", id).
		Update("progress_percentage", book.ProgressPercentage).Error
}

// Delete removes a book and cascades to its photos, shelf memberships, loans,
// and reading progress in one transaction. Returns the file paths of the
// book's stored images so the caller can remove the backing files.
func (r *Repository) Delete(id uint) ([]string, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	filePaths := collectFilePaths(r.db, []uint{id})
	if book.CoverImagePath != "" {
		filePaths = append(filePaths, book.CoverImagePath)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return deleteBookRows(tx, []uint{id})
	})
	if err != nil {
		return nil, err
	}

	return filePaths, nil
}

// BulkDelete removes every book in ids with the same cascade semantics as
// Delete, in a single transaction. Missing IDs are silently skipped.
func (r *Repository) BulkDelete(ids []uint) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	filePaths := collectFilePaths(r.db, ids)
	var coverPaths []string
	if err := r.db.Model(&entities.Book{}).
		Where("id IN ? AND cover_image_path <> ''", ids).
		Pluck("cover_image_path", &coverPaths).Error; err == nil {
		filePaths = append(filePaths, coverPaths...)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return deleteBookRows(tx, ids)
	})
	if err != nil {
		return nil, err
	}

	return filePaths, nil
}

// BulkUpdate applies the same patch to every book in ids, in one transaction.
// Progress rederivation runs per row when the patch touches page fields.
func (r *Repository) BulkUpdate(ids []uint, updates map[string]any) error {
	if len(ids) == 0 || len(updates) == 0 {
		return nil
	}

	touchesProgress := false
	for field := range updates {
		if progressFields[field] {
			touchesProgress = true
		}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Book{}).Where("id IN ?", ids).Updates(updates).Error; err != nil {
			return err
		}
		if touchesProgress {
			for _, id := range ids {
				if err := recomputeProgress(tx, id); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return err
				}
			}
		}
		return nil
	})
}

// ListWithISBN returns all books that carry an ISBN, the candidate set for a
// metadata refresh.
func (r *Repository) ListWithISBN() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("isbn <> ''").Order("id ASC").Find(&books).Error
	return books, err
}

// UpdateMetadata overwrites descriptive fields on a book. Used by the metadata
// refresher; the provided map is applied as-is.
func (r *Repository) UpdateMetadata(id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// collectFilePaths gathers photo and thumbnail paths for the given books.
func collectFilePaths(db *gorm.DB, bookIDs []uint) []string {
	var photos []entities.BookPhoto
	if err := db.Where("book_id IN ?", bookIDs).Find(&photos).Error; err != nil {
		return nil
	}

	var paths []string
	for _, p := range photos {
		if p.PhotoPath != "" {
			paths = append(paths, p.PhotoPath)
		}
		if p.ThumbnailPath != "" {
			paths = append(paths, p.ThumbnailPath)
		}
	}
	return paths
}

// deleteBookRows removes the books and every dependent row inside tx.
func deleteBookRows(tx *gorm.DB, ids []uint) error {
	if err := tx.Where("book_id IN ?", ids).Delete(&entities.ShelfBook{}).Error; err != nil {
		return fmt.Errorf("delete shelf memberships: %w", err)
	}
	if err := tx.Where("book_id IN ?", ids).Delete(&entities.BookPhoto{}).Error; err != nil {
		return fmt.Errorf("delete photos: %w", err)
	}
	if err := tx.Where("book_id IN ?", ids).Delete(&entities.Loan{}).Error; err != nil {
		return fmt.Errorf("delete loans: %w", err)
	}
	if err := tx.Where("book_id IN ?", ids).Delete(&entities.ReadingProgress{}).Error; err != nil {
		return fmt.Errorf("delete reading progress: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&entities.Book{}).Error; err != nil {
		return fmt.Errorf("delete books: %w", err)
	}
	return nil
}
