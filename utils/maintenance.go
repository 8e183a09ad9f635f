package utils

import (
	"time"

	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/models"
)

// StartMaintenance launches a background goroutine that periodically expires
// overdue redemptions and closes past-date events. It is best-effort and logs
// failures.
func StartMaintenance(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			RunMaintenance(db)
		}
	}()
}

// RunMaintenance performs one sweep. Split out of the loop so tests can call it
// directly.
func RunMaintenance(db *gorm.DB) {
	now := time.Now()

	res := db.Model(&models.UserReward{}).
		Where("status = ? AND expires_at <= ?", models.RewardActive, now).
		Update("status", models.RewardExpired)
	if res.Error != nil {
		if Sugar != nil {
			Sugar.Warnf("maintenance: expire redemptions failed: %v", res.Error)
		}
	} else if res.RowsAffected > 0 && Sugar != nil {
		Sugar.Infof("maintenance: expired %d redemptions", res.RowsAffected)
	}

	res = db.Model(&models.CleanupEvent{}).
		Where("status = ? AND event_date < ?", models.EventUpcoming, now.Add(-24*time.Hour)).
		Update("status", models.EventCompleted)
	if res.Error != nil {
		if Sugar != nil {
			Sugar.Warnf("maintenance: close past events failed: %v", res.Error)
		}
	} else if res.RowsAffected > 0 && Sugar != nil {
		Sugar.Infof("maintenance: closed %d past events", res.RowsAffected)
	}
}
