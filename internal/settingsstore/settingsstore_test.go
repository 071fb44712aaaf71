package settingsstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookboss/bookboss/internal/entities"
)

type fakeRepo struct {
	values map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{values: make(map[string]string)}
}

func (f *fakeRepo) GetSetting(key string) (*entities.Setting, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &entities.Setting{Key: key, Value: v}, nil
}

func (f *fakeRepo) SetSetting(key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeRepo) DeleteSetting(key string) error {
	delete(f.values, key)
	return nil
}

func TestAccentColorDefault(t *testing.T) {
	store := New(newFakeRepo())
	assert.Equal(t, "#3b82f6", store.GetAccentColor())
}

func TestAccentColorFromDatabase(t *testing.T) {
	repo := newFakeRepo()
	store := New(repo)

	require.NoError(t, store.SetAccentColor("#ff0000"))
	assert.Equal(t, "#ff0000", store.GetAccentColor())
}

func TestAllowRegistrationDefault(t *testing.T) {
	store := New(newFakeRepo())
	assert.True(t, store.GetAllowRegistration())
}

func TestAllowRegistrationDatabaseOverridesEnv(t *testing.T) {
	t.Setenv("ALLOW_REGISTRATION", "true")

	repo := newFakeRepo()
	store := New(repo)
	require.NoError(t, store.SetAllowRegistration(false))

	assert.False(t, store.GetAllowRegistration())
}

func TestAllowRegistrationFromEnv(t *testing.T) {
	t.Setenv("ALLOW_REGISTRATION", "false")

	store := New(newFakeRepo())
	assert.False(t, store.GetAllowRegistration())
}

func TestRefreshScheduleDefault(t *testing.T) {
	store := New(newFakeRepo())
	assert.Equal(t, "0 3 * * 0", store.GetRefreshSchedule())
}

func TestRefreshConfigResolution(t *testing.T) {
	repo := newFakeRepo()
	store := New(repo)

	require.NoError(t, store.SetRefreshEnabled(true))
	require.NoError(t, store.SetRefreshSchedule("0 0 * * *"))

	config := store.GetRefreshConfig()
	assert.True(t, config.Enabled)
	assert.Equal(t, "0 0 * * *", config.Schedule)
}

func TestRefreshStatusRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	store := New(repo)

	require.NoError(t, store.SetRefreshStatus("success", "Processed 12 books"))

	status := store.GetRefreshStatus()
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, "Processed 12 books", status.Message)
	require.NotNil(t, status.LastRefreshAt)
	assert.WithinDuration(t, time.Now().UTC(), *status.LastRefreshAt, time.Minute)
}

func TestClearRefreshSettings(t *testing.T) {
	repo := newFakeRepo()
	store := New(repo)

	require.NoError(t, store.SetRefreshEnabled(true))
	require.NoError(t, store.SetRefreshSchedule("0 0 * * *"))
	require.NoError(t, store.ClearRefreshSettings())

	assert.False(t, store.GetRefreshEnabled())
	assert.Equal(t, "0 3 * * 0", store.GetRefreshSchedule())
}

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"*/15 * * * *", true},
		{"0 3 * * 0", true},
		{"invalid", false},
		{"", false},
		{"60 * * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGetCronDescription(t *testing.T) {
	assert.Equal(t, "Every hour at :00", GetCronDescription("0 * * * *"))
	assert.Equal(t, "Weekly on Sunday at 3am", GetCronDescription("0 3 * * 0"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))
}

func TestGetNextRunTime(t *testing.T) {
	next, err := GetNextRunTime("0 * * * *")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))

	_, err = GetNextRunTime("bogus")
	assert.Error(t, err)
}
