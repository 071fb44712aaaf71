package entities

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string `gorm:"size:100" json:"-"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`

	// Privacy settings
	ShareShelves  bool `gorm:"default:false" json:"share_shelves"`
	ShareProgress bool `gorm:"default:false" json:"share_progress"`

	// API token, stored as a SHA-256 hash. The plaintext is shown once on issue.
	TokenHash      string     `gorm:"index;size:64" json:"-"`
	TokenCreatedAt *time.Time `json:"-"`

	// Login rate limiting
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
