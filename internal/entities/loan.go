package entities

import (
	"time"
)

// Loan records a book lent to a named borrower. ReturnDate is nil while the
// loan is active. The owning book mirrors the active loan in its denormalized
// loan fields.
type Loan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index" json:"user_id"`
	BookID       uint       `gorm:"index" json:"book_id"`
	BorrowerName string     `gorm:"size:256" json:"borrower_name"`
	LoanDate     time.Time  `json:"loan_date"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
}

// Active reports whether the loan has not been returned yet.
func (l *Loan) Active() bool {
	return l.ReturnDate == nil
}
