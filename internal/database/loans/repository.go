// Package loans provides database operations for loan tracking.
//
// A loan row is the source of truth; the owning book mirrors the active loan
// in its denormalized loan fields for legacy display. Both sides are written
// in one transaction so they never diverge.
package loans

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

var (
	ErrBorrowerRequired = errors.New("borrower name is required")
	ErrBookNotFound     = errors.New("book not found")
	ErrLoanNotFound     = errors.New("loan not found")
	ErrAlreadyReturned  = errors.New("loan is already returned")
)

// Repository handles all loan database operations, scoped to the owning user.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser returns the user's loans, newest first. When activeOnly is set,
// returned loans are filtered out.
func (r *Repository) ListForUser(userID uint, activeOnly bool) ([]entities.Loan, error) {
	query := r.db.Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("return_date IS NULL")
	}
	var loans []entities.Loan
	err := query.Order("loan_date DESC").Find(&loans).Error
	return loans, err
}

// Create inserts a loan and mirrors it onto the book's denormalized loan
// fields in the same transaction.
func (r *Repository) Create(userID, bookID uint, borrower string, dueDate *time.Time, notes string) (*entities.Loan, error) {
	if borrower == "" {
		return nil, ErrBorrowerRequired
	}

	loan := &entities.Loan{
		UserID:       userID,
		BookID:       bookID,
		BorrowerName: borrower,
		LoanDate:     time.Now(),
		DueDate:      dueDate,
		Notes:        notes,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if err := tx.Create(loan).Error; err != nil {
			return err
		}

		return tx.Model(&entities.Book{}).Where("id = ?", bookID).Updates(map[string]any{
			"is_loaned":     true,
			"borrower_name": borrower,
			"loan_date":     loan.LoanDate,
			"due_date":      dueDate,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// Return marks the user's loan as returned and clears the book's denormalized
// loan fields in the same transaction.
func (r *Repository) Return(userID, loanID uint) (*entities.Loan, error) {
	var loan entities.Loan

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", loanID, userID).First(&loan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}
		if loan.ReturnDate != nil {
			return ErrAlreadyReturned
		}

		now := time.Now()
		loan.ReturnDate = &now
		if err := tx.Model(&entities.Loan{}).Where("id = ?", loanID).Update("return_date", now).Error; err != nil {
			return err
		}

		return tx.Model(&entities.Book{}).Where("id = ?", loan.BookID).Updates(map[string]any{
			"is_loaned":     false,
			"borrower_name": "",
			"loan_date":     nil,
			"due_date":      nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &loan, nil
}
