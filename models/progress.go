// models/progress.go - User Achievement Ledger
package models

import "time"

// StreakMetadata is the streak evaluator's scratch state.
type StreakMetadata struct {
	Streak        int `json:"streak"`
	LongestStreak int `json:"longest_streak"`
}

// CountMetadata is the count evaluator's scratch state.
type CountMetadata struct {
	Count int `json:"count"`
}

// ProgressMetadata holds evaluator-private state keyed by criteria kind.
// Only the slot owned by the achievement's evaluator is ever set.
type ProgressMetadata struct {
	Streak *StreakMetadata `json:"streak,omitempty"`
	Count  *CountMetadata  `json:"count,omitempty"`
}

// UserAchievementProgress is one ledger record per (user, achievement) pair.
// A record moves NotStarted (absent) -> InProgress -> Completed; completion
// is terminal and freezes progress at 100.
type UserAchievementProgress struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint             `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Progress      int              `gorm:"not null;default:0" json:"progress"`
	IsCompleted   bool             `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	Metadata      ProgressMetadata `gorm:"serializer:json" json:"metadata"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	// JustCompleted is set on records that crossed the threshold during the
	// current evaluation. Never persisted.
	JustCompleted bool `gorm:"-" json:"-"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (UserAchievementProgress) TableName() string {
	return "user_achievement_progress"
}
