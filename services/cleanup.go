// services/cleanup.go - Stale Guest Cleanup
package services

import (
	"os"
	"strconv"
	"time"
	"wellspace/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultGuestMaxAgeDays = 30

// CleanupService removes guest accounts that have gone quiet, along with
// their reflections and achievement progress.
type CleanupService struct {
	db       *gorm.DB
	log      *zap.Logger
	maxAge   time.Duration
	interval time.Duration
	done     chan struct{}
}

func NewCleanupService(db *gorm.DB, logger *zap.Logger) *CleanupService {
	maxAgeDays := defaultGuestMaxAgeDays
	if v := os.Getenv("GUEST_MAX_AGE_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxAgeDays = parsed
		}
	}
	return &CleanupService{
		db:       db,
		log:      logger,
		maxAge:   time.Duration(maxAgeDays) * 24 * time.Hour,
		interval: 24 * time.Hour,
		done:     make(chan struct{}),
	}
}

// Start runs the cleanup loop until Stop is called.
func (s *CleanupService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupGuestAccounts(); err != nil {
					s.log.Error("guest cleanup failed", zap.Error(err))
				}
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the cleanup loop.
func (s *CleanupService) Stop() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// CleanupGuestAccounts deletes guest users whose last login is older than the
// configured maximum age, cascading to their reflections and ledger records.
func (s *CleanupService) CleanupGuestAccounts() error {
	cutoff := time.Now().UTC().Add(-s.maxAge)

	var stale []models.User
	if err := s.db.Where("is_guest = ? AND last_login < ?", true, cutoff).Find(&stale).Error; err != nil {
		return NewPersistenceError("failed to find stale guest accounts", err)
	}
	if len(stale) == 0 {
		return nil
	}

	ids := make([]uint, len(stale))
	for i, u := range stale {
		ids[i] = u.ID
	}

	if err := s.db.Where("user_id IN ?", ids).Delete(&models.Reflection{}).Error; err != nil {
		return NewPersistenceError("failed to delete guest reflections", err)
	}
	if err := s.db.Where("user_id IN ?", ids).Delete(&models.UserAchievementProgress{}).Error; err != nil {
		return NewPersistenceError("failed to delete guest progress", err)
	}
	if err := s.db.Delete(&models.User{}, ids).Error; err != nil {
		return NewPersistenceError("failed to delete guest accounts", err)
	}

	s.log.Info("cleaned up stale guest accounts", zap.Int("count", len(stale)))
	return nil
}
