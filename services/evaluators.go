// services/evaluators.go - Criteria Evaluators
package services

import (
	"errors"
	"time"
	"wellspace/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Signal is the ephemeral activity event driving an evaluation. Derived fresh
// per invocation; never persisted.
type Signal struct {
	ActivityType  string
	CurrentStreak int
	LongestStreak int
	Reflection    *models.Reflection
}

// Evaluator advances the ledger record for one achievement in response to a
// signal. Returning (nil, nil) means no-op. Every evaluator is idempotent on
// completed records: once IsCompleted is set the existing record is returned
// unchanged.
type Evaluator interface {
	Evaluate(userID uint, achievement models.Achievement, sig Signal) (*models.UserAchievementProgress, error)
}

// MilestoneSource supplies the authoritative values milestone criteria
// re-derive on every call.
type MilestoneSource interface {
	ReflectionCount(userID uint) (int, error)
}

// progressPercent clamps floor(current/threshold*100) into [0,100].
func progressPercent(current, threshold int) int {
	if threshold <= 0 {
		return 100
	}
	p := current * 100 / threshold
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}

var pairColumns = []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}}

// notCompletedGuard restricts an upsert's DO UPDATE branch to records that
// have not completed, so a late write can never demote a completed record.
var notCompletedGuard = clause.Where{Exprs: []clause.Expression{
	clause.Eq{Column: clause.Column{Table: "user_achievement_progress", Name: "is_completed"}, Value: false},
}}

// ledgerStore wraps the conditional upserts the evaluators share.
type ledgerStore struct {
	db *gorm.DB
}

func (s ledgerStore) find(userID, achievementID uint) (*models.UserAchievementProgress, error) {
	var rec models.UserAchievementProgress
	err := s.db.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewPersistenceError("failed to load progress record", err)
	}
	return &rec, nil
}

func (s ledgerStore) findWithAchievement(userID, achievementID uint) (*models.UserAchievementProgress, error) {
	var rec models.UserAchievementProgress
	err := s.db.Preload("Achievement").
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewPersistenceError("failed to load progress record", err)
	}
	return &rec, nil
}

// saveProgress upserts progress and metadata for the pair. The DO UPDATE
// branch only applies while the record is not completed.
func (s ledgerStore) saveProgress(userID, achievementID uint, progress int, meta models.ProgressMetadata) (*models.UserAchievementProgress, error) {
	rec := models.UserAchievementProgress{
		UserID:        userID,
		AchievementID: achievementID,
		Progress:      progress,
		Metadata:      meta,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   pairColumns,
		Where:     notCompletedGuard,
		DoUpdates: clause.AssignmentColumns([]string{"progress", "metadata", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return nil, NewPersistenceError("failed to save progress record", err)
	}
	// Re-read so the returned record reflects what actually persisted, which
	// may be an untouched completed record when the guard applied.
	saved, err := s.findWithAchievement(userID, achievementID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, NewPersistenceError("progress record missing after upsert", nil)
	}
	return saved, nil
}

// complete marks the pair completed with progress frozen at 100. Idempotent:
// applying it to an already-completed record changes nothing, including
// completed_at.
func (s ledgerStore) complete(userID, achievementID uint, meta models.ProgressMetadata) (*models.UserAchievementProgress, error) {
	now := time.Now().UTC()
	rec := models.UserAchievementProgress{
		UserID:        userID,
		AchievementID: achievementID,
		Progress:      100,
		IsCompleted:   true,
		CompletedAt:   &now,
		Metadata:      meta,
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   pairColumns,
		Where:     notCompletedGuard,
		DoUpdates: clause.AssignmentColumns([]string{"progress", "is_completed", "completed_at", "metadata", "updated_at"}),
	}).Create(&rec)
	if res.Error != nil {
		return nil, NewPersistenceError("failed to complete achievement", res.Error)
	}
	saved, err := s.findWithAchievement(userID, achievementID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, NewPersistenceError("progress record missing after completion", nil)
	}
	saved.JustCompleted = res.RowsAffected > 0
	return saved, nil
}

// streakEvaluator reads the current streak from the signal. Progress is
// monotonic while in progress: a broken streak refreshes metadata but never
// lowers the recorded progress.
type streakEvaluator struct {
	ledger ledgerStore
	log    *zap.Logger
}

func (e *streakEvaluator) Evaluate(userID uint, a models.Achievement, sig Signal) (*models.UserAchievementProgress, error) {
	existing, err := e.ledger.find(userID, a.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsCompleted {
		return existing, nil
	}

	meta := models.ProgressMetadata{Streak: &models.StreakMetadata{
		Streak:        sig.CurrentStreak,
		LongestStreak: sig.LongestStreak,
	}}

	if sig.CurrentStreak >= a.Criteria.Threshold {
		return e.ledger.complete(userID, a.ID, meta)
	}

	progress := progressPercent(sig.CurrentStreak, a.Criteria.Threshold)
	if existing != nil && existing.Progress > progress {
		progress = existing.Progress
	}
	return e.ledger.saveProgress(userID, a.ID, progress, meta)
}

// countEvaluator increments a running counter in the ledger metadata. It must
// only be invoked once per qualifying activity instance; the engine's target
// selection guarantees that.
type countEvaluator struct {
	ledger ledgerStore
	log    *zap.Logger
}

func (e *countEvaluator) Evaluate(userID uint, a models.Achievement, _ Signal) (*models.UserAchievementProgress, error) {
	existing, err := e.ledger.find(userID, a.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsCompleted {
		return existing, nil
	}

	prior := 0
	if existing != nil && existing.Metadata.Count != nil {
		prior = existing.Metadata.Count.Count
	}
	next := prior + 1
	meta := models.ProgressMetadata{Count: &models.CountMetadata{Count: next}}

	if next >= a.Criteria.Threshold {
		return e.ledger.complete(userID, a.ID, meta)
	}
	return e.ledger.saveProgress(userID, a.ID, progressPercent(next, a.Criteria.Threshold), meta)
}

// milestoneEvaluator recomputes an absolute value from authoritative source
// data on every call instead of incrementing, so it is idempotent by
// construction.
type milestoneEvaluator struct {
	ledger ledgerStore
	source MilestoneSource
	log    *zap.Logger
}

func (e *milestoneEvaluator) Evaluate(userID uint, a models.Achievement, sig Signal) (*models.UserAchievementProgress, error) {
	existing, err := e.ledger.find(userID, a.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsCompleted {
		return existing, nil
	}

	var current int
	var meta models.ProgressMetadata
	switch a.Criteria.Target {
	case models.ActivityReflectionCount, models.ActivityReflectionCreated:
		current, err = e.source.ReflectionCount(userID)
		if err != nil {
			return nil, err
		}
		meta = models.ProgressMetadata{Count: &models.CountMetadata{Count: current}}
	case models.ActivityReflectionStreak:
		current = sig.LongestStreak
		meta = models.ProgressMetadata{Streak: &models.StreakMetadata{
			Streak:        sig.CurrentStreak,
			LongestStreak: sig.LongestStreak,
		}}
	default:
		e.log.Warn("milestone criteria with unknown target",
			zap.Uint("achievement_id", a.ID),
			zap.String("target", a.Criteria.Target))
		return nil, nil
	}

	if current >= a.Criteria.Threshold {
		return e.ledger.complete(userID, a.ID, meta)
	}
	return e.ledger.saveProgress(userID, a.ID, progressPercent(current, a.Criteria.Threshold), meta)
}

// comboEvaluator is the multi-criteria extension point. Composition semantics
// (AND vs OR, weighting) are not defined yet, so it never advances progress.
type comboEvaluator struct {
	log *zap.Logger
}

func (e *comboEvaluator) Evaluate(_ uint, a models.Achievement, _ Signal) (*models.UserAchievementProgress, error) {
	e.log.Debug("combo criteria not implemented, skipping", zap.Uint("achievement_id", a.ID))
	return nil, nil
}
