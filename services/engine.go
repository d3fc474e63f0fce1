// services/engine.go - Achievement Engine
package services

import (
	"time"
	"wellspace/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AchievementEngine evaluates activity signals against the catalog and
// advances ledger records through the registered evaluators.
type AchievementEngine struct {
	db          *gorm.DB
	log         *zap.Logger
	reflections *ReflectionService
	events      *AchievementEventHub
	evaluators  map[models.CriteriaKind]Evaluator
}

// NewAchievementEngine wires one evaluator per criteria kind. The hub may be
// nil when no unlock feed is attached.
func NewAchievementEngine(db *gorm.DB, reflections *ReflectionService, events *AchievementEventHub, logger *zap.Logger) *AchievementEngine {
	ledger := ledgerStore{db: db}
	return &AchievementEngine{
		db:          db,
		log:         logger,
		reflections: reflections,
		events:      events,
		evaluators: map[models.CriteriaKind]Evaluator{
			models.CriteriaStreak:    &streakEvaluator{ledger: ledger, log: logger},
			models.CriteriaCount:     &countEvaluator{ledger: ledger, log: logger},
			models.CriteriaMilestone: &milestoneEvaluator{ledger: ledger, source: reflections, log: logger},
			models.CriteriaCombo:     &comboEvaluator{log: logger},
		},
	}
}

// ProcessActivity evaluates every achievement targeting activityType and
// returns all records touched, whether or not they changed state. A failure
// on one achievement is logged and does not abort the rest of the batch.
// Hidden achievements are evaluated like any other; visibility is a
// presentation concern.
func (e *AchievementEngine) ProcessActivity(userID uint, activityType string, sig Signal) ([]models.UserAchievementProgress, error) {
	var candidates []models.Achievement
	if err := e.db.Where("criteria_target = ?", activityType).Find(&candidates).Error; err != nil {
		return nil, NewPersistenceError("failed to load candidate achievements", err)
	}

	sig.ActivityType = activityType
	touched := make([]models.UserAchievementProgress, 0, len(candidates))
	for _, achievement := range candidates {
		evaluator, ok := e.evaluators[achievement.Criteria.Kind]
		if !ok {
			e.log.Warn("no evaluator registered for criteria kind",
				zap.String("kind", string(achievement.Criteria.Kind)),
				zap.Uint("achievement_id", achievement.ID))
			continue
		}

		rec, err := evaluator.Evaluate(userID, achievement, sig)
		if err != nil {
			e.log.Error("achievement evaluation failed",
				zap.Uint("user_id", userID),
				zap.Uint("achievement_id", achievement.ID),
				zap.Error(err))
			continue
		}
		if rec == nil {
			continue
		}
		touched = append(touched, *rec)
	}
	return touched, nil
}

// ProcessReflectionActivity is the composition used by the reflection flow:
// a reflection_created pass for count criteria, then reflection_streak and
// reflection_count passes with data derived from the user's full reflection
// history.
func (e *AchievementEngine) ProcessReflectionActivity(userID uint, reflection models.Reflection) ([]models.UserAchievementProgress, error) {
	touched, err := e.ProcessActivity(userID, models.ActivityReflectionCreated, Signal{Reflection: &reflection})
	if err != nil {
		return nil, err
	}

	dates, err := e.reflections.Dates(userID)
	if err != nil {
		return touched, err
	}
	streaks := CalculateStreaks(dates, time.Now().UTC())
	derived := Signal{
		CurrentStreak: streaks.CurrentStreak,
		LongestStreak: streaks.LongestStreak,
	}

	for _, activity := range []string{models.ActivityReflectionStreak, models.ActivityReflectionCount} {
		more, err := e.ProcessActivity(userID, activity, derived)
		if err != nil {
			return touched, err
		}
		touched = append(touched, more...)
	}

	e.publishCompletions(userID, touched)
	return touched, nil
}

func (e *AchievementEngine) publishCompletions(userID uint, recs []models.UserAchievementProgress) {
	if e.events == nil {
		return
	}
	for _, rec := range recs {
		if rec.JustCompleted {
			e.events.Publish(userID, rec)
		}
	}
}
