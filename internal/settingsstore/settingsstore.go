// Package settingsstore provides typed access to the global settings table,
// layering database values over environment variables and defaults.
package settingsstore

import (
	"os"
	"strconv"

	"github.com/bookboss/bookboss/internal/entities"
)

// SettingsRepository is the subset of the settings database API the store uses.
type SettingsRepository interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// SettingsStore resolves effective setting values. Resolution order is
// database, then environment variable, then default.
type SettingsStore struct {
	db SettingsRepository
}

// New creates a settings store backed by the given repository.
func New(db SettingsRepository) *SettingsStore {
	return &SettingsStore{db: db}
}

const defaultAccentColor = "#3b82f6"

// GetAccentColor returns the configured UI accent color.
func (s *SettingsStore) GetAccentColor() string {
	setting, err := s.db.GetSetting(entities.SettingKeyAccentColor)
	if err == nil && setting.Value != "" {
		return setting.Value
	}
	return defaultAccentColor
}

// SetAccentColor saves the accent color.
func (s *SettingsStore) SetAccentColor(color string) error {
	return s.db.SetSetting(entities.SettingKeyAccentColor, color)
}

// GetAllowRegistration returns whether new accounts may self-register.
func (s *SettingsStore) GetAllowRegistration() bool {
	setting, err := s.db.GetSetting(entities.SettingKeyAllowRegistration)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	if envVal := os.Getenv("ALLOW_REGISTRATION"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	// Default: open registration, first user becomes admin
	return true
}

// SetAllowRegistration saves the registration toggle.
func (s *SettingsStore) SetAllowRegistration(allowed bool) error {
	return s.db.SetSetting(entities.SettingKeyAllowRegistration, strconv.FormatBool(allowed))
}
