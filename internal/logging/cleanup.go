package logging

import (
	"log/slog"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"gorm.io/gorm"
)

// Retention is how long system_logs rows are kept.
const Retention = 30 * 24 * time.Hour

// StartCleanup runs a daily goroutine that deletes system_logs older than
// Retention until done is closed.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PruneLogs(db, time.Now())
			case <-done:
				return
			}
		}
	}()
}

// PruneLogs deletes rows older than Retention relative to now.
func PruneLogs(db *gorm.DB, now time.Time) int64 {
	result := db.Where("timestamp < ?", now.Add(-Retention)).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "action", "prune_logs", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "action", "prune_logs", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
