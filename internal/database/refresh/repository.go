// Package refresh provides database operations for metadata refresh progress.
//
// This package implements the ProgressReporter interface used by the metadata
// refresher.
//
// # Usage
//
//	repo := refresh.NewRepository(db)
//	err := repo.StartRefresh(100)
package refresh

import (
	"time"

	"gorm.io/gorm"

	"github.com/bookboss/bookboss/internal/entities"
)

// Repository handles all refresh progress database operations.
type Repository struct {
	db          *gorm.DB
	refreshType entities.RefreshType
}

// NewRepository creates a new refresh progress repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, refreshType: entities.RefreshTypeMetadata}
}

// GetProgress retrieves the progress row for the configured refresh type.
func (r *Repository) GetProgress() (*entities.RefreshProgress, error) {
	var progress entities.RefreshProgress
	err := r.db.Where("refresh_type = ?", r.refreshType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartRefresh creates or resets the refresh progress record.
func (r *Repository) StartRefresh(totalItems int) error {
	var progress entities.RefreshProgress
	result := r.db.Where("refresh_type = ?", r.refreshType).First(&progress)

	now := time.Now()
	if result.Error == gorm.ErrRecordNotFound {
		progress = entities.RefreshProgress{
			RefreshType: r.refreshType,
			Status:      entities.RefreshStatusRunning,
			TotalItems:  totalItems,
			StartedAt:   now,
			UpdatedAt:   now,
		}
		return r.db.Create(&progress).Error
	} else if result.Error != nil {
		return result.Error
	}

	progress.Status = entities.RefreshStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Downloaded = 0
	progress.Skipped = 0
	progress.Failed = 0
	progress.CurrentItem = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// UpdateProgress updates the counters of an ongoing refresh.
func (r *Repository) UpdateProgress(processed, downloaded, skipped, failed int, currentItem string) error {
	return r.db.Model(&entities.RefreshProgress{}).
		Where("refresh_type = ?", r.refreshType).
		Updates(map[string]any{
			"processed":    processed,
			"downloaded":   downloaded,
			"skipped":      skipped,
			"failed":       failed,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteRefresh marks the refresh as completed or failed.
func (r *Repository) CompleteRefresh(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.RefreshStatusCompleted
	if !succeeded {
		status = entities.RefreshStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.RefreshProgress{}).
		Where("refresh_type = ?", r.refreshType).
		Updates(updates).Error
}

// IsRefreshRunning checks if a refresh is currently in progress.
// A refresh is considered stale if not updated in 10 minutes.
func (r *Repository) IsRefreshRunning() (bool, error) {
	var progress entities.RefreshProgress
	err := r.db.Where("refresh_type = ? AND status = ?", r.refreshType, entities.RefreshStatusRunning).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	staleThreshold := time.Now().Add(-10 * time.Minute)
	if progress.UpdatedAt.Before(staleThreshold) {
		_ = r.CompleteRefresh(false, "refresh was interrupted")
		return false, nil
	}

	return true, nil
}
