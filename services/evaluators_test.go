package services

import (
	"fmt"
	"testing"
	"time"
	"wellspace/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testUserID uint = 1

func createAchievement(t *testing.T, db *gorm.DB, kind models.CriteriaKind, threshold int, target string) models.Achievement {
	t.Helper()
	a := models.Achievement{
		Title:       fmt.Sprintf("%s %d", kind, threshold),
		Description: "test achievement",
		Category:    models.CategoryReflection,
		Criteria: models.Criteria{
			Kind:      kind,
			Threshold: threshold,
			Target:    target,
		},
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func TestCountEvaluatorProgression(t *testing.T) {
	db := newTestDB(t)
	evaluator := &countEvaluator{ledger: ledgerStore{db: db}, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaCount, 5, models.ActivityReflectionCreated)

	for i, wantProgress := range []int{20, 40, 60, 80} {
		rec, err := evaluator.Evaluate(testUserID, a, Signal{})
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, wantProgress, rec.Progress, "call %d", i+1)
		assert.False(t, rec.IsCompleted)
		assert.Nil(t, rec.CompletedAt)
		require.NotNil(t, rec.Metadata.Count)
		assert.Equal(t, i+1, rec.Metadata.Count.Count)
	}

	rec, err := evaluator.Evaluate(testUserID, a, Signal{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.IsCompleted)
	assert.True(t, rec.JustCompleted)
	assert.Equal(t, 100, rec.Progress)
	require.NotNil(t, rec.CompletedAt)
	require.NotNil(t, rec.Metadata.Count)
	assert.Equal(t, 5, rec.Metadata.Count.Count)
}

func TestCountEvaluatorStopsAfterCompletion(t *testing.T) {
	db := newTestDB(t)
	evaluator := &countEvaluator{ledger: ledgerStore{db: db}, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaCount, 2, models.ActivityReflectionCreated)

	for i := 0; i < 2; i++ {
		_, err := evaluator.Evaluate(testUserID, a, Signal{})
		require.NoError(t, err)
	}

	completed, err := evaluator.Evaluate(testUserID, a, Signal{})
	require.NoError(t, err)
	require.NotNil(t, completed)
	assert.True(t, completed.IsCompleted)
	assert.False(t, completed.JustCompleted)
	assert.Equal(t, 2, completed.Metadata.Count.Count, "counter frozen after completion")
}

func TestStreakEvaluatorCompletesAtThreshold(t *testing.T) {
	db := newTestDB(t)
	evaluator := &streakEvaluator{ledger: ledgerStore{db: db}, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaStreak, 3, models.ActivityReflectionStreak)

	rec, err := evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 2, LongestStreak: 2})
	require.NoError(t, err)
	assert.Equal(t, 66, rec.Progress)
	assert.False(t, rec.IsCompleted)
	require.NotNil(t, rec.Metadata.Streak)
	assert.Equal(t, 2, rec.Metadata.Streak.Streak)

	rec, err = evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 3, LongestStreak: 3})
	require.NoError(t, err)
	assert.True(t, rec.IsCompleted)
	assert.True(t, rec.JustCompleted)
	assert.Equal(t, 100, rec.Progress)
	require.NotNil(t, rec.CompletedAt)
}

func TestStreakEvaluatorIdempotentAfterCompletion(t *testing.T) {
	db := newTestDB(t)
	evaluator := &streakEvaluator{ledger: ledgerStore{db: db}, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaStreak, 3, models.ActivityReflectionStreak)

	first, err := evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 3, LongestStreak: 3})
	require.NoError(t, err)
	require.True(t, first.IsCompleted)

	second, err := evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 3, LongestStreak: 3})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.False(t, second.JustCompleted)
	assert.Equal(t, first.Progress, second.Progress)
	assert.Equal(t, first.Metadata, second.Metadata)
	require.NotNil(t, second.CompletedAt)
	assert.WithinDuration(t, *first.CompletedAt, *second.CompletedAt, time.Second)
}

func TestStreakEvaluatorProgressIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	evaluator := &streakEvaluator{ledger: ledgerStore{db: db}, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaStreak, 10, models.ActivityReflectionStreak)

	rec, err := evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 5, LongestStreak: 5})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Progress)

	// Streak broke: metadata reflects the new streak but progress holds.
	rec, err = evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 2, LongestStreak: 5})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Progress)
	require.NotNil(t, rec.Metadata.Streak)
	assert.Equal(t, 2, rec.Metadata.Streak.Streak)
	assert.Equal(t, 5, rec.Metadata.Streak.LongestStreak)
}

func TestMilestoneEvaluatorReDerivesReflectionCount(t *testing.T) {
	db := newTestDB(t)
	reflections := NewReflectionService(db, zap.NewNop())
	evaluator := &milestoneEvaluator{ledger: ledgerStore{db: db}, source: reflections, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaMilestone, 10, models.ActivityReflectionCount)

	for i := 0; i < 10; i++ {
		_, err := reflections.Create(testUserID, "calm", "entry", time.Now().UTC().AddDate(0, 0, -i))
		require.NoError(t, err)
	}

	// No prior record: completion on the very next evaluation, no increments.
	rec, err := evaluator.Evaluate(testUserID, a, Signal{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.IsCompleted)
	assert.True(t, rec.JustCompleted)
	assert.Equal(t, 100, rec.Progress)

	again, err := evaluator.Evaluate(testUserID, a, Signal{})
	require.NoError(t, err)
	assert.False(t, again.JustCompleted)
}

func TestMilestoneEvaluatorPartialProgress(t *testing.T) {
	db := newTestDB(t)
	reflections := NewReflectionService(db, zap.NewNop())
	evaluator := &milestoneEvaluator{ledger: ledgerStore{db: db}, source: reflections, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaMilestone, 20, models.ActivityReflectionCount)

	for i := 0; i < 10; i++ {
		_, err := reflections.Create(testUserID, "calm", "entry", time.Now().UTC().AddDate(0, 0, -i))
		require.NoError(t, err)
	}

	rec, err := evaluator.Evaluate(testUserID, a, Signal{})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Progress)
	assert.False(t, rec.IsCompleted)
	require.NotNil(t, rec.Metadata.Count)
	assert.Equal(t, 10, rec.Metadata.Count.Count)
}

func TestMilestoneEvaluatorLongestStreakTarget(t *testing.T) {
	db := newTestDB(t)
	reflections := NewReflectionService(db, zap.NewNop())
	evaluator := &milestoneEvaluator{ledger: ledgerStore{db: db}, source: reflections, log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaMilestone, 14, models.ActivityReflectionStreak)

	rec, err := evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 3, LongestStreak: 7})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Progress)

	rec, err = evaluator.Evaluate(testUserID, a, Signal{CurrentStreak: 14, LongestStreak: 14})
	require.NoError(t, err)
	assert.True(t, rec.IsCompleted)
}

func TestComboEvaluatorIsNoOp(t *testing.T) {
	db := newTestDB(t)
	evaluator := &comboEvaluator{log: zap.NewNop()}
	a := createAchievement(t, db, models.CriteriaCombo, 1, "")

	rec, err := evaluator.Evaluate(testUserID, a, Signal{})
	assert.NoError(t, err)
	assert.Nil(t, rec)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievementProgress{}).Count(&count).Error)
	assert.Zero(t, count, "combo criteria must not persist anything")
}

func TestCompletedRecordCannotBeDemoted(t *testing.T) {
	db := newTestDB(t)
	ledger := ledgerStore{db: db}
	a := createAchievement(t, db, models.CriteriaCount, 1, models.ActivityReflectionCreated)

	completed, err := ledger.complete(testUserID, a.ID, models.ProgressMetadata{Count: &models.CountMetadata{Count: 1}})
	require.NoError(t, err)
	require.True(t, completed.IsCompleted)

	// A late low-progress write targets the pair directly; the upsert guard
	// must leave the completed record untouched.
	rec, err := ledger.saveProgress(testUserID, a.ID, 10, models.ProgressMetadata{Count: &models.CountMetadata{Count: 0}})
	require.NoError(t, err)
	assert.True(t, rec.IsCompleted)
	assert.Equal(t, 100, rec.Progress)
	assert.Equal(t, 1, rec.Metadata.Count.Count)
}

func TestCompleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ledger := ledgerStore{db: db}
	a := createAchievement(t, db, models.CriteriaStreak, 3, models.ActivityReflectionStreak)
	meta := models.ProgressMetadata{Streak: &models.StreakMetadata{Streak: 3, LongestStreak: 3}}

	first, err := ledger.complete(testUserID, a.ID, meta)
	require.NoError(t, err)
	assert.True(t, first.JustCompleted)

	second, err := ledger.complete(testUserID, a.ID, meta)
	require.NoError(t, err)
	assert.False(t, second.JustCompleted)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
}
