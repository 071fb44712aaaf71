package entities

import (
	"time"
)

// Shelf is a user-owned named collection of books. Names are unique per user.
type Shelf struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_shelf_user_name" json:"user_id"`
	Name      string    `gorm:"size:256;uniqueIndex:idx_shelf_user_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Populated at read time.
	BookCount int `gorm:"-" json:"book_count"`
}

// ShelfBook is the shelf membership join row. Deleting a shelf or a book removes
// join rows only, never the other side.
type ShelfBook struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	ShelfID uint      `gorm:"index;uniqueIndex:idx_shelf_book" json:"shelf_id"`
	BookID  uint      `gorm:"index;uniqueIndex:idx_shelf_book" json:"book_id"`
	AddedAt time.Time `gorm:"column:added_at;autoCreateTime" json:"added_at"`
}

func (ShelfBook) TableName() string {
	return "shelf_books"
}
