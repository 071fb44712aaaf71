package refresh

import (
	"testing"
	"time"

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
	require.NoError(t, db.AutoMigrate(&entities.RefreshProgress{}))
	return db
}

func TestStartRefreshCreatesRow(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.StartRefresh(42))

	progress, err := repo.GetProgress()
	require.NoError(t, err)
	assert.Equal(t, entities.RefreshStatusRunning, progress.Status)
	assert.Equal(t, 42, progress.TotalItems)
	assert.Zero(t, progress.Processed)
}

func TestStartRefreshResetsCounters(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.StartRefresh(10))
	require.NoError(t, repo.UpdateProgress(5, 3, 1, 1, "Dune"))
	require.NoError(t, repo.CompleteRefresh(true, ""))

	require.NoError(t, repo.StartRefresh(7))

	progress, err := repo.GetProgress()
	require.NoError(t, err)
	assert.Equal(t, entities.RefreshStatusRunning, progress.Status)
	assert.Equal(t, 7, progress.TotalItems)
	assert.Zero(t, progress.Processed)
	assert.Zero(t, progress.Downloaded)
	assert.Empty(t, progress.CurrentItem)
	assert.Nil(t, progress.CompletedAt)
}

func TestUpdateProgressCounters(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.StartRefresh(10))
	require.NoError(t, repo.UpdateProgress(4, 2, 1, 1, "Dune Messiah"))

	progress, err := repo.GetProgress()
	require.NoError(t, err)
	assert.Equal(t, 4, progress.Processed)
	assert.Equal(t, 2, progress.Downloaded)
	assert.Equal(t, 1, progress.Skipped)
	assert.Equal(t, 1, progress.Failed)
	assert.Equal(t, "Dune Messiah", progress.CurrentItem)
}

func TestCompleteRefresh(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.StartRefresh(10))
	require.NoError(t, repo.CompleteRefresh(true, ""))

	progress, err := repo.GetProgress()
	require.NoError(t, err)
	assert.Equal(t, entities.RefreshStatusCompleted, progress.Status)
	assert.NotNil(t, progress.CompletedAt)

	running, err := repo.IsRefreshRunning()
	require.NoError(t, err)
	assert.False(t, running)
}

func TestCompleteRefreshFailure(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.StartRefresh(10))
	require.NoError(t, repo.CompleteRefresh(false, "operation cancelled"))

	progress, err := repo.GetProgress()
	require.NoError(t, err)
	assert.Equal(t, entities.RefreshStatusFailed, progress.Status)
	assert.Equal(t, "operation cancelled", progress.Error)
}

func TestIsRefreshRunning(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	running, err := repo.IsRefreshRunning()
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, repo.StartRefresh(10))

	running, err = repo.IsRefreshRunning()
	require.NoError(t, err)
	assert.True(t, running)
}

func TestStaleRefreshIsCleared(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.StartRefresh(10))

	stale := time.Now().Add(-15 * time.Minute)
	require.NoError(t, db.Model(&entities.RefreshProgress{}).
		Where("refresh_type = ?", entities.RefreshTypeMetadata).
		Update("updated_at", stale).Error)

	running, err := repo.IsRefreshRunning()
	require.NoError(t, err)
	assert.False(t, running)

	progress, err := repo.GetProgress()
	require.NoError(t, err)
	assert.Equal(t, entities.RefreshStatusFailed, progress.Status)
}
