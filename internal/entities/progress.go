package entities

import (
	"time"
)

type ReadingStatus string

const (
	ReadingStatusPlanToRead ReadingStatus = "plan_to_read"
	ReadingStatusReading    ReadingStatus = "reading"
	ReadingStatusRead       ReadingStatus = "read"
	ReadingStatusDropped    ReadingStatus = "dropped"
)

// ValidReadingStatus reports whether s is one of the known status values.
func ValidReadingStatus(s ReadingStatus) bool {
	switch s {
	case ReadingStatusPlanToRead, ReadingStatusReading, ReadingStatusRead, ReadingStatusDropped:
		return true
	}
	return false
}

// ReadingProgress is the per-user, per-book reading record. One row per
// (user, book); a second submission overwrites prior values.
type ReadingProgress struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"index;uniqueIndex:idx_progress_user_book" json:"user_id"`
	BookID    uint          `gorm:"index;uniqueIndex:idx_progress_user_book" json:"book_id"`
	Status    ReadingStatus `gorm:"size:20" json:"status"`
	Progress  int           `json:"progress"` // page count or percent, caller-defined unit
	Rating    float64       `json:"rating"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}
