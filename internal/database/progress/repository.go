// Package progress provides database operations for per-user reading progress.
package progress

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

var (
	ErrInvalidStatus    = errors.New("invalid reading status")
	ErrProgressNotFound = errors.New("reading progress not found")
)

// Repository handles all reading progress database operations. One row exists
// per (user, book); repeated submissions overwrite, never append.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading progress repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert records the user's status, progress, and rating for a book.
// Last write wins; no history is retained.
func (r *Repository) Upsert(userID, bookID uint, status entities.ReadingStatus, progressValue int, rating float64) (*entities.ReadingProgress, error) {
	if !entities.ValidReadingStatus(status) {
		return nil, ErrInvalidStatus
	}

	var record entities.ReadingProgress
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = entities.ReadingProgress{
			UserID:   userID,
			BookID:   bookID,
			Status:   status,
			Progress: progressValue,
			Rating:   rating,
		}
		if err := r.db.Create(&record).Error; err != nil {
			return nil, err
		}
		return &record, nil
	}
	if err != nil {
		return nil, err
	}

	record.Status = status
	record.Progress = progressValue
	record.Rating = rating
	if err := r.db.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Get returns the user's progress for a book.
func (r *Repository) Get(userID, bookID uint) (*entities.ReadingProgress, error) {
	var record entities.ReadingProgress
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListForUser returns all of the user's progress records.
func (r *Repository) ListForUser(userID uint) ([]entities.ReadingProgress, error) {
	var records []entities.ReadingProgress
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&records).Error
	return records, err
}
