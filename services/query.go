// services/query.go - Achievement Query Facade
package services

import (
	"time"
	"wellspace/models"

	"gorm.io/gorm"
)

// DefaultRecentLimit bounds the recently-completed listing when the caller
// gives no limit.
const DefaultRecentLimit = 5

// AchievementQueryService is the read side over the catalog and the ledger.
// Independent of the write path except that it reads the same ledger.
type AchievementQueryService struct {
	db *gorm.DB
}

func NewAchievementQueryService(db *gorm.DB) *AchievementQueryService {
	return &AchievementQueryService{db: db}
}

// ProgressWithDefinition pairs a catalog entry with the user's progress.
type ProgressWithDefinition struct {
	Achievement models.Achievement `json:"achievement"`
	Progress    int                `json:"progress"`
	IsCompleted bool               `json:"is_completed"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// GetUserAchievements left-joins every non-hidden catalog achievement with
// the user's ledger record, synthesizing a virtual zero-progress entry for
// achievements the user has no record for yet, so callers always see the
// complete catalog.
func (s *AchievementQueryService) GetUserAchievements(userID uint) ([]ProgressWithDefinition, error) {
	var catalog []models.Achievement
	if err := s.db.Where("is_hidden = ?", false).
		Order("category ASC, title ASC").Find(&catalog).Error; err != nil {
		return nil, NewPersistenceError("failed to load achievement catalog", err)
	}

	var records []models.UserAchievementProgress
	if err := s.db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, NewPersistenceError("failed to load achievement progress", err)
	}

	byAchievement := make(map[uint]models.UserAchievementProgress, len(records))
	for _, rec := range records {
		byAchievement[rec.AchievementID] = rec
	}

	out := make([]ProgressWithDefinition, 0, len(catalog))
	for _, achievement := range catalog {
		item := ProgressWithDefinition{Achievement: achievement}
		if rec, ok := byAchievement[achievement.ID]; ok {
			item.Progress = rec.Progress
			item.IsCompleted = rec.IsCompleted
			item.CompletedAt = rec.CompletedAt
		}
		out = append(out, item)
	}
	return out, nil
}

// GetCompletedAchievements returns the user's completed records, newest first.
func (s *AchievementQueryService) GetCompletedAchievements(userID uint) ([]models.UserAchievementProgress, error) {
	var records []models.UserAchievementProgress
	if err := s.db.Preload("Achievement").
		Where("user_id = ? AND is_completed = ?", userID, true).
		Order("completed_at DESC").Find(&records).Error; err != nil {
		return nil, NewPersistenceError("failed to load completed achievements", err)
	}
	return records, nil
}

// GetRecentlyCompletedAchievements returns up to limit completed records
// ordered by completion time descending.
func (s *AchievementQueryService) GetRecentlyCompletedAchievements(userID uint, limit int) ([]models.UserAchievementProgress, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var records []models.UserAchievementProgress
	if err := s.db.Preload("Achievement").
		Where("user_id = ? AND is_completed = ?", userID, true).
		Order("completed_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, NewPersistenceError("failed to load recent achievements", err)
	}
	return records, nil
}
