package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/bookboss/bookboss/internal/metadata"
)

// RefreshAllBooksTask refreshes metadata for every book with an ISBN.
// Books are processed sequentially so the progress row stays meaningful.
type RefreshAllBooksTask struct {
	// TriggeredBy records who started the refresh (user ID, 0 = scheduler)
	TriggeredBy uint `json:"triggered_by,omitempty"`
}

// Config returns the queue configuration for bulk refresh tasks.
func (t RefreshAllBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_all_books",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute, // Allow time to process the whole catalog
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshAllBooksProcessor creates a processor function for RefreshAllBooksTask.
// Progress tracking is handled inside the refresher.
func RefreshAllBooksProcessor(refresher *metadata.Refresher) backlite.QueueProcessor[RefreshAllBooksTask] {
	return func(ctx context.Context, task RefreshAllBooksTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		result, err := refresher.RefreshAll(ctx)
		if errors.Is(err, metadata.ErrRefreshRunning) {
			log.Printf("[TASK] Refresh skipped: another refresh is running")
			return nil
		}
		if err != nil {
			return fmt.Errorf("refresh all books: %w", err)
		}

		log.Printf("[TASK] Metadata refresh complete: %d processed, %d downloaded, %d skipped, %d failed",
			result.Processed, result.Downloaded, result.Skipped, result.Failed)

		return nil
	}
}

// NewRefreshAllBooksQueue creates a backlite queue for bulk refresh tasks.
func NewRefreshAllBooksQueue(refresher *metadata.Refresher) backlite.Queue {
	return backlite.NewQueue(RefreshAllBooksProcessor(refresher))
}
