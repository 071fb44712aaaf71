// Package scheduler runs periodic metadata refreshes on a cron schedule
// stored in settings.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bookboss/bookboss/internal/metadata"
	"github.com/bookboss/bookboss/internal/settingsstore"
)

// MetadataRefreshScheduler manages periodic refreshes of book metadata.
type MetadataRefreshScheduler struct {
	refresher     *metadata.Refresher
	settingsStore *settingsstore.SettingsStore

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMetadataRefreshScheduler creates a new scheduler instance.
func NewMetadataRefreshScheduler(refresher *metadata.Refresher, settingsStore *settingsstore.SettingsStore) *MetadataRefreshScheduler {
	return &MetadataRefreshScheduler{
		refresher:     refresher,
		settingsStore: settingsStore,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if scheduled refresh is enabled.
func (s *MetadataRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settingsStore.GetRefreshConfig()

	if !config.Enabled {
		log.Printf("Metadata refresh scheduler: disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.runRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule)
	log.Printf("Metadata refresh scheduler: started with schedule '%s' (%s). Next run: %v",
		config.Schedule,
		settingsstore.GetCronDescription(config.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *MetadataRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Remove the entry so a later Start does not stack schedules
	s.cron.Remove(s.entryID)

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Metadata refresh scheduler: stopped")
}

// Reschedule updates the schedule (call after settings change).
func (s *MetadataRefreshScheduler) Reschedule() error {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	return s.Start(context.Background())
}

// RunNow triggers an immediate refresh.
func (s *MetadataRefreshScheduler) RunNow() error {
	go s.runRefresh()
	return nil
}

// IsRunning returns whether the scheduler is active.
func (s *MetadataRefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next refresh will occur.
func (s *MetadataRefreshScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entries := s.cron.Entries()
	for _, entry := range entries {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runRefresh performs the actual refresh operation.
func (s *MetadataRefreshScheduler) runRefresh() {
	config := s.settingsStore.GetRefreshConfig()

	if !config.Enabled {
		log.Printf("Metadata refresh: skipped (disabled)")
		return
	}

	log.Printf("Metadata refresh: starting scheduled run")
	startTime := time.Now()

	result, err := s.refresher.RefreshAll(context.Background())
	if errors.Is(err, metadata.ErrRefreshRunning) {
		log.Printf("Metadata refresh: skipped (another refresh in progress)")
		return
	}
	if err != nil {
		errMsg := fmt.Sprintf("Refresh failed: %v", err)
		log.Printf("Metadata refresh: %s", errMsg)
		_ = s.settingsStore.SetRefreshStatus("failed", errMsg)
		return
	}

	duration := time.Since(startTime)
	successMsg := fmt.Sprintf("Processed %d books: %d covers downloaded, %d skipped, %d failed in %v",
		result.Processed, result.Downloaded, result.Skipped, result.Failed, duration.Round(time.Millisecond))
	log.Printf("Metadata refresh: %s", successMsg)

	status := "success"
	if result.Failed > 0 {
		status = "partial"
	}
	_ = s.settingsStore.SetRefreshStatus(status, successMsg)
}
