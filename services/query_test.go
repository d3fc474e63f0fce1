package services

import (
	"testing"
	"time"
	"wellspace/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCompletion(t *testing.T, db *gorm.DB, userID, achievementID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserAchievementProgress{
		UserID:        userID,
		AchievementID: achievementID,
		Progress:      100,
		IsCompleted:   true,
		CompletedAt:   &at,
	}).Error)
}

func TestGetUserAchievementsCoversFullCatalog(t *testing.T) {
	db := newTestDB(t)
	query := NewAchievementQueryService(db)
	ledger := ledgerStore{db: db}

	started := createAchievement(t, db, models.CriteriaCount, 5, models.ActivityReflectionCreated)
	untouched := createAchievement(t, db, models.CriteriaStreak, 7, models.ActivityReflectionStreak)
	hidden := createAchievement(t, db, models.CriteriaStreak, 30, models.ActivityReflectionStreak)
	require.NoError(t, db.Model(&models.Achievement{}).
		Where("id = ?", hidden.ID).Update("is_hidden", true).Error)

	_, err := ledger.saveProgress(testUserID, started.ID, 40,
		models.ProgressMetadata{Count: &models.CountMetadata{Count: 2}})
	require.NoError(t, err)
	// Progress on the hidden achievement exists but must not surface.
	_, err = ledger.saveProgress(testUserID, hidden.ID, 10,
		models.ProgressMetadata{Streak: &models.StreakMetadata{Streak: 3, LongestStreak: 3}})
	require.NoError(t, err)

	out, err := query.GetUserAchievements(testUserID)
	require.NoError(t, err)
	require.Len(t, out, 2, "hidden achievements stay out of the listing")

	byID := make(map[uint]ProgressWithDefinition, len(out))
	for _, item := range out {
		byID[item.Achievement.ID] = item
	}

	assert.Equal(t, 40, byID[started.ID].Progress)
	assert.False(t, byID[started.ID].IsCompleted)

	// Never-touched achievements appear as synthesized zero-progress entries.
	assert.Equal(t, 0, byID[untouched.ID].Progress)
	assert.False(t, byID[untouched.ID].IsCompleted)
	assert.Nil(t, byID[untouched.ID].CompletedAt)
}

func TestGetCompletedAchievementsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	query := NewAchievementQueryService(db)

	older := createAchievement(t, db, models.CriteriaCount, 1, models.ActivityReflectionCreated)
	newer := createAchievement(t, db, models.CriteriaCount, 2, models.ActivityReflectionCreated)
	inProgress := createAchievement(t, db, models.CriteriaCount, 9, models.ActivityReflectionCreated)

	seedCompletion(t, db, testUserID, older.ID, time.Now().UTC().Add(-48*time.Hour))
	seedCompletion(t, db, testUserID, newer.ID, time.Now().UTC().Add(-1*time.Hour))
	require.NoError(t, db.Create(&models.UserAchievementProgress{
		UserID: testUserID, AchievementID: inProgress.ID, Progress: 33,
	}).Error)

	completed, err := query.GetCompletedAchievements(testUserID)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, newer.ID, completed[0].AchievementID)
	assert.Equal(t, older.ID, completed[1].AchievementID)
	assert.Equal(t, newer.Title, completed[0].Achievement.Title, "definition is preloaded")
}

func TestGetRecentlyCompletedAchievementsHonorsLimit(t *testing.T) {
	db := newTestDB(t)
	query := NewAchievementQueryService(db)

	ids := make([]uint, 0, 7)
	for i := 0; i < 7; i++ {
		a := createAchievement(t, db, models.CriteriaCount, i+1, models.ActivityReflectionCreated)
		seedCompletion(t, db, testUserID, a.ID, time.Now().UTC().Add(-time.Duration(i)*time.Hour))
		ids = append(ids, a.ID)
	}

	recent, err := query.GetRecentlyCompletedAchievements(testUserID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[0], recent[0].AchievementID, "most recent completion comes first")

	// Zero and negative limits fall back to the default.
	recent, err = query.GetRecentlyCompletedAchievements(testUserID, 0)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentLimit)
}

func TestGetCompletedAchievementsEmptyLedger(t *testing.T) {
	db := newTestDB(t)
	query := NewAchievementQueryService(db)

	createAchievement(t, db, models.CriteriaCount, 1, models.ActivityReflectionCreated)

	completed, err := query.GetCompletedAchievements(testUserID)
	require.NoError(t, err)
	assert.Empty(t, completed)
}
