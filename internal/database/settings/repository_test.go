package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Setting{}))
	return db
}

func TestSetAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.SetSetting("accent_color", "#ff0000"))

	setting, err := repo.GetSetting("accent_color")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", setting.Value)
}

func TestSetOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.SetSetting("accent_color", "#ff0000"))
	require.NoError(t, repo.SetSetting("accent_color", "#00ff00"))

	setting, err := repo.GetSetting("accent_color")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", setting.Value)

	var count int64
	db.Model(&entities.Setting{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetMissing(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.GetSetting("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetAllSettings(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.SetSetting("b_key", "2"))
	require.NoError(t, repo.SetSetting("a_key", "1"))

	all, err := repo.GetAllSettings()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a_key", all[0].Key)
}

func TestDeleteSetting(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.SetSetting("accent_color", "#ff0000"))
	require.NoError(t, repo.DeleteSetting("accent_color"))

	_, err := repo.GetSetting("accent_color")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting an absent key is not an error
	assert.NoError(t, repo.DeleteSetting("accent_color"))
}
