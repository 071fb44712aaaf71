package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/database/loans"
)

// LoansController serves the loan endpoints, scoped to the authenticated user.
type LoansController struct {
	repo *loans.Repository
}

// NewLoansController creates a new loans controller.
func NewLoansController(repo *loans.Repository) *LoansController {
	return &LoansController{repo: repo}
}

// List returns the user's loans. ?active=true filters to open loans.
func (controller *LoansController) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	all, err := controller.repo.ListForUser(GetUserID(c), activeOnly)
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": all, "count": len(all)})
}

type createLoanRequest struct {
	BookID       uint       `json:"book_id" binding:"required"`
	BorrowerName string     `json:"borrower_name"`
	DueDate      *time.Time `json:"due_date"`
	Notes        string     `json:"notes"`
}

// Create lends a book out. The loan row and the book's denormalized loan
// fields change together.
func (controller *LoansController) Create(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	loan, err := controller.repo.Create(GetUserID(c), req.BookID, req.BorrowerName, req.DueDate, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrBorrowerRequired):
			respondBadRequest(c, err.Error())
		case errors.Is(err, loans.ErrBookNotFound):
			respondNotFound(c, "book")
		default:
			respondInternalError(c, err, "create loan")
		}
		return
	}

	respondCreated(c, loan)
}

// Return closes a loan and clears the book's loan fields.
func (controller *LoansController) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := controller.repo.Return(GetUserID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrLoanNotFound):
			respondNotFound(c, "loan")
		case errors.Is(err, loans.ErrAlreadyReturned):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "return loan")
		}
		return
	}

	c.JSON(http.StatusOK, loan)
}
