package entities

import (
	"time"
)

// BookPhoto is an image attached to a book: the stored file path, an optional
// generated thumbnail, and typed tag metadata. Deleting a book removes its
// photo rows and backing files.
type BookPhoto struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	BookID        uint       `gorm:"index" json:"book_id"`
	PhotoPath     string     `gorm:"size:1024" json:"photo_path"`
	ThumbnailPath string     `gorm:"size:1024" json:"thumbnail_path,omitempty"`
	PhotoType     string     `gorm:"size:20" json:"photo_type,omitempty"` // cover, spine, edges, special
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	Tags          StringList `gorm:"type:text" json:"tags,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (BookPhoto) TableName() string {
	return "book_photos"
}
