// services/catalog.go - Achievement Catalog Store
package services

import (
	"errors"
	"wellspace/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService owns the immutable achievement definitions. Reads default to
// excluding hidden achievements unless the caller holds the admin capability;
// all mutations require it.
type CatalogService struct {
	db       *gorm.DB
	log      *zap.Logger
	validate *validator.Validate
}

func NewCatalogService(db *gorm.DB, logger *zap.Logger) *CatalogService {
	return &CatalogService{db: db, log: logger, validate: validator.New()}
}

// CriteriaInput is the criteria part of an admin write payload.
type CriteriaInput struct {
	Kind      string `json:"kind" validate:"required,oneof=streak count milestone combo"`
	Threshold int    `json:"threshold" validate:"required,min=1"`
	Target    string `json:"target" validate:"max=50"`
	Frequency string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
	Duration  int    `json:"duration" validate:"min=0"`
}

// AchievementInput is the admin write payload for catalog mutations.
type AchievementInput struct {
	Title       string        `json:"title" validate:"required,max=100"`
	Description string        `json:"description" validate:"required"`
	Icon        string        `json:"icon" validate:"max=50"`
	Category    string        `json:"category" validate:"required,oneof=Consistency Mindfulness Exercise Reflection Social General"`
	IsHidden    bool          `json:"is_hidden"`
	Criteria    CriteriaInput `json:"criteria"`
}

func (in AchievementInput) apply(a *models.Achievement) {
	a.Title = in.Title
	a.Description = in.Description
	a.Icon = in.Icon
	a.Category = in.Category
	a.IsHidden = in.IsHidden
	a.Criteria = models.Criteria{
		Kind:      models.CriteriaKind(in.Criteria.Kind),
		Threshold: in.Criteria.Threshold,
		Target:    in.Criteria.Target,
		Frequency: in.Criteria.Frequency,
		Duration:  in.Criteria.Duration,
	}
}

// ListAchievements returns the catalog ordered by category then title.
func (s *CatalogService) ListAchievements(includeHidden bool) ([]models.Achievement, error) {
	q := s.db.Order("category ASC, title ASC")
	if !includeHidden {
		q = q.Where("is_hidden = ?", false)
	}
	var out []models.Achievement
	if err := q.Find(&out).Error; err != nil {
		return nil, NewPersistenceError("failed to list achievements", err)
	}
	return out, nil
}

// GetAchievement returns one definition. Hidden achievements are only
// visible to admins; a non-admin lookup is rejected, not silently missing.
func (s *CatalogService) GetAchievement(id uint, isAdmin bool) (*models.Achievement, error) {
	var a models.Achievement
	err := s.db.First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("achievement not found")
	}
	if err != nil {
		return nil, NewPersistenceError("failed to load achievement", err)
	}
	if a.IsHidden && !isAdmin {
		return nil, NewUnauthorizedError("achievement is not visible")
	}
	return &a, nil
}

// ListByCategory returns a category's achievements ordered by title.
func (s *CatalogService) ListByCategory(category string, includeHidden bool) ([]models.Achievement, error) {
	q := s.db.Where("category = ?", category).Order("title ASC")
	if !includeHidden {
		q = q.Where("is_hidden = ?", false)
	}
	var out []models.Achievement
	if err := q.Find(&out).Error; err != nil {
		return nil, NewPersistenceError("failed to list achievements by category", err)
	}
	return out, nil
}

// ListCategories returns the fixed category set.
func (s *CatalogService) ListCategories() []string {
	return models.Categories
}

// CreateAchievement adds a definition to the catalog. Admin only.
func (s *CatalogService) CreateAchievement(input AchievementInput, isAdmin bool) (*models.Achievement, error) {
	if !isAdmin {
		return nil, NewUnauthorizedError("admin privileges required")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, NewValidationError("invalid achievement definition", err)
	}

	var a models.Achievement
	input.apply(&a)
	if err := s.db.Create(&a).Error; err != nil {
		return nil, NewPersistenceError("failed to create achievement", err)
	}

	s.log.Info("achievement created",
		zap.Uint("achievement_id", a.ID),
		zap.String("title", a.Title),
		zap.String("kind", string(a.Criteria.Kind)))
	return &a, nil
}

// UpdateAchievement replaces a definition. Admin only. Existing ledger
// records are left alone; they reconcile on the next evaluation.
func (s *CatalogService) UpdateAchievement(id uint, input AchievementInput, isAdmin bool) (*models.Achievement, error) {
	if !isAdmin {
		return nil, NewUnauthorizedError("admin privileges required")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, NewValidationError("invalid achievement definition", err)
	}

	var a models.Achievement
	err := s.db.First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("achievement not found")
	}
	if err != nil {
		return nil, NewPersistenceError("failed to load achievement", err)
	}

	input.apply(&a)
	if err := s.db.Save(&a).Error; err != nil {
		return nil, NewPersistenceError("failed to update achievement", err)
	}

	s.log.Info("achievement updated", zap.Uint("achievement_id", a.ID))
	return &a, nil
}

// DeleteAchievement removes a definition. Admin only.
func (s *CatalogService) DeleteAchievement(id uint, isAdmin bool) error {
	if !isAdmin {
		return NewUnauthorizedError("admin privileges required")
	}
	res := s.db.Delete(&models.Achievement{}, id)
	if res.Error != nil {
		return NewPersistenceError("failed to delete achievement", res.Error)
	}
	if res.RowsAffected == 0 {
		return NewNotFoundError("achievement not found")
	}

	s.log.Info("achievement deleted", zap.Uint("achievement_id", id))
	return nil
}
