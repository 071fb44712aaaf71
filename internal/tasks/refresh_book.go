package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/bookboss/bookboss/internal/metadata"
)

// RefreshBookTask refreshes a single book's metadata from external providers.
type RefreshBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for book refresh tasks.
func (t RefreshBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshBookProcessor creates a processor function for RefreshBookTask.
func RefreshBookProcessor(refresher *metadata.Refresher) backlite.QueueProcessor[RefreshBookTask] {
	return func(ctx context.Context, task RefreshBookTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		result, err := refresher.RefreshBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("refresh book %d: %w", task.BookID, err)
		}

		if len(result.FieldsUpdated) > 0 {
			log.Printf("[TASK] Refreshed book %d (%s): updated %v via %s",
				task.BookID, result.Book.Title, result.FieldsUpdated, result.Source)
		} else {
			log.Printf("[TASK] Book %d (%s): no metadata updates needed",
				task.BookID, result.Book.Title)
		}

		return nil
	}
}

// NewRefreshBookQueue creates a backlite queue for book refresh tasks.
func NewRefreshBookQueue(refresher *metadata.Refresher) backlite.Queue {
	return backlite.NewQueue(RefreshBookProcessor(refresher))
}
