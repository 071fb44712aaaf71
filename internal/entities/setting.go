package entities

import (
	"time"
)

// Setting is a global key/value configuration row. Process-wide, not per-user.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyAccentColor       = "accent_color"
	SettingKeyAllowRegistration = "allow_registration"

	// Scheduled metadata refresh
	SettingKeyRefreshEnabled     = "metadata_refresh_enabled"
	SettingKeyRefreshSchedule    = "metadata_refresh_schedule"
	SettingKeyRefreshLastAt      = "metadata_refresh_last_at"
	SettingKeyRefreshLastStatus  = "metadata_refresh_last_status"
	SettingKeyRefreshLastMessage = "metadata_refresh_last_message"
)
