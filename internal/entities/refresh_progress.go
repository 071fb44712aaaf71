package entities

import (
	"time"
)

type RefreshType string

const (
	RefreshTypeMetadata RefreshType = "metadata"
)

type RefreshStatus string

const (
	RefreshStatusRunning   RefreshStatus = "running"
	RefreshStatusCompleted RefreshStatus = "completed"
	RefreshStatusFailed    RefreshStatus = "failed"
)

// RefreshProgress tracks a bulk metadata refresh run. One row per refresh type;
// pollable while the background task runs.
type RefreshProgress struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	RefreshType RefreshType   `gorm:"size:50;uniqueIndex" json:"refresh_type"`
	Status      RefreshStatus `gorm:"size:20" json:"status"`
	TotalItems  int           `json:"total_items"`
	Processed   int           `json:"processed"`
	Downloaded  int           `json:"downloaded"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	CurrentItem string        `gorm:"size:512" json:"current_item,omitempty"`
	Error       string        `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

func (RefreshProgress) TableName() string {
	return "refresh_progress"
}
