package settingsstore

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bookboss/bookboss/internal/entities"
)

// RefreshConfig represents the effective configuration for scheduled
// metadata refreshes.
type RefreshConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// RefreshStatus represents the last refresh outcome.
type RefreshStatus struct {
	LastRefreshAt *time.Time `json:"last_refresh_at,omitempty"`
	Status        string     `json:"status,omitempty"`  // "success", "failed", ""
	Message       string     `json:"message,omitempty"` // Error message or stats summary
}

// GetRefreshEnabled returns whether scheduled refresh is enabled
// (database > env > default).
func (s *SettingsStore) GetRefreshEnabled() bool {
	setting, err := s.db.GetSetting(entities.SettingKeyRefreshEnabled)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	if envVal := os.Getenv("METADATA_REFRESH_ENABLED"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	// Default: disabled, refreshes are triggered manually
	return false
}

// SetRefreshEnabled saves the enabled setting to database.
func (s *SettingsStore) SetRefreshEnabled(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeyRefreshEnabled, strconv.FormatBool(enabled))
}

// GetRefreshSchedule returns the cron schedule (database > env > default).
func (s *SettingsStore) GetRefreshSchedule() string {
	setting, err := s.db.GetSetting(entities.SettingKeyRefreshSchedule)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if envVal := os.Getenv("METADATA_REFRESH_SCHEDULE"); envVal != "" {
		return envVal
	}

	// Default: weekly on Sunday at 3am
	return "0 3 * * 0"
}

// SetRefreshSchedule saves the schedule to database.
func (s *SettingsStore) SetRefreshSchedule(schedule string) error {
	return s.db.SetSetting(entities.SettingKeyRefreshSchedule, schedule)
}

// GetRefreshConfig returns the effective configuration.
func (s *SettingsStore) GetRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Enabled:  s.GetRefreshEnabled(),
		Schedule: s.GetRefreshSchedule(),
	}
}

// GetRefreshStatus returns the last refresh outcome.
func (s *SettingsStore) GetRefreshStatus() RefreshStatus {
	var status RefreshStatus

	if setting, err := s.db.GetSetting(entities.SettingKeyRefreshLastAt); err == nil && setting.Value != "" {
		if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
			status.LastRefreshAt = &t
		}
	}

	if setting, err := s.db.GetSetting(entities.SettingKeyRefreshLastStatus); err == nil {
		status.Status = setting.Value
	}

	if setting, err := s.db.GetSetting(entities.SettingKeyRefreshLastMessage); err == nil {
		status.Message = setting.Value
	}

	return status
}

// SetRefreshStatus updates the last refresh outcome.
func (s *SettingsStore) SetRefreshStatus(status, message string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.db.SetSetting(entities.SettingKeyRefreshLastAt, now); err != nil {
		return err
	}
	if err := s.db.SetSetting(entities.SettingKeyRefreshLastStatus, status); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeyRefreshLastMessage, message)
}

// ClearRefreshSettings clears database overrides, reverting to env/default.
func (s *SettingsStore) ClearRefreshSettings() error {
	keys := []string{
		entities.SettingKeyRefreshEnabled,
		entities.SettingKeyRefreshSchedule,
	}
	for _, key := range keys {
		if err := s.db.DeleteSetting(key); err != nil {
			continue
		}
	}
	return nil
}

// ValidateCronSchedule validates a cron schedule string.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule.
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 3 * * 0":
		return "Weekly on Sunday at 3am"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next refresh will run based on the schedule.
func GetNextRunTime(schedule string) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
