// services/reflections.go - Reflection Store
package services

import (
	"time"
	"wellspace/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReflectionService stores the user's dated mood reflections. The achievement
// engine only reads dates and counts from here.
type ReflectionService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReflectionService(db *gorm.DB, logger *zap.Logger) *ReflectionService {
	return &ReflectionService{db: db, log: logger}
}

// Create stores a reflection. The date defaults to now when omitted.
func (s *ReflectionService) Create(userID uint, mood, content string, date time.Time) (*models.Reflection, error) {
	if content == "" {
		return nil, NewValidationError("reflection content is required", nil)
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	reflection := models.Reflection{
		UserID:  userID,
		Mood:    mood,
		Content: content,
		Date:    date,
	}
	if err := s.db.Create(&reflection).Error; err != nil {
		return nil, NewPersistenceError("failed to save reflection", err)
	}
	return &reflection, nil
}

// List returns the user's reflections, newest first.
func (s *ReflectionService) List(userID uint) ([]models.Reflection, error) {
	var out []models.Reflection
	if err := s.db.Where("user_id = ?", userID).Order("date DESC").Find(&out).Error; err != nil {
		return nil, NewPersistenceError("failed to list reflections", err)
	}
	return out, nil
}

// Dates returns every reflection date for the user, for streak derivation.
func (s *ReflectionService) Dates(userID uint) ([]time.Time, error) {
	var dates []time.Time
	if err := s.db.Model(&models.Reflection{}).Where("user_id = ?", userID).
		Pluck("date", &dates).Error; err != nil {
		return nil, NewPersistenceError("failed to load reflection dates", err)
	}
	return dates, nil
}

// ReflectionCount returns the user's total stored reflections. Milestone
// criteria re-derive from this on every call.
func (s *ReflectionService) ReflectionCount(userID uint) (int, error) {
	var count int64
	if err := s.db.Model(&models.Reflection{}).Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, NewPersistenceError("failed to count reflections", err)
	}
	return int(count), nil
}
