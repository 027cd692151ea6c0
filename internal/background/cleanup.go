package background

import (
	"context"
	"log/slog"
	"time"
)

// JournalPruner defines the retention deletion the manager runs
type JournalPruner interface {
	Cleanup(ctx context.Context, olderThanDays int) (int64, error)
}

// CleanupManager periodically prunes auth journal entries past the retention
// window. The journal is append-only everywhere else; this is the only
// deleter.
type CleanupManager struct {
	journalRepo   JournalPruner
	logger        *slog.Logger
	interval      time.Duration
	retentionDays int
	stopCh        chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	journalRepo JournalPruner,
	logger *slog.Logger,
	interval time.Duration,
	retentionDays int,
) *CleanupManager {
	return &CleanupManager{
		journalRepo:   journalRepo,
		logger:        logger,
		interval:      interval,
		retentionDays: retentionDays,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup deletes journal entries older than the retention window
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cm.logger.Info("starting auth journal cleanup", slog.Int("retention_days", cm.retentionDays))

	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.journalRepo.Cleanup(cleanupCtx, cm.retentionDays)
	if err != nil {
		cm.logger.Error("failed to prune auth journal", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("auth journal cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
