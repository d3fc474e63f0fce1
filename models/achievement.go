// models/achievement.go
package models

import "time"

// CriteriaKind selects which evaluator advances an achievement.
type CriteriaKind string

const (
	CriteriaStreak    CriteriaKind = "streak"
	CriteriaCount     CriteriaKind = "count"
	CriteriaMilestone CriteriaKind = "milestone"
	CriteriaCombo     CriteriaKind = "combo"
)

// Activity types that criteria can target.
const (
	ActivityReflectionCreated = "reflection_created"
	ActivityReflectionStreak  = "reflection_streak"
	ActivityReflectionCount   = "reflection_count"
)

// Achievement categories
const (
	CategoryConsistency = "Consistency"
	CategoryMindfulness = "Mindfulness"
	CategoryExercise    = "Exercise"
	CategoryReflection  = "Reflection"
	CategorySocial      = "Social"
	CategoryGeneral     = "General"
)

// Categories lists every valid achievement category.
var Categories = []string{
	CategoryConsistency,
	CategoryMindfulness,
	CategoryExercise,
	CategoryReflection,
	CategorySocial,
	CategoryGeneral,
}

// Criteria describes how an achievement is earned. Target ties the
// achievement to an activity type; achievements without a target are never
// advanced automatically.
type Criteria struct {
	Kind      CriteriaKind `gorm:"column:kind;not null;size:20" json:"kind"`
	Threshold int          `gorm:"column:threshold;not null;default:1" json:"threshold"`
	Target    string       `gorm:"column:target;size:50;index" json:"target,omitempty"`
	Frequency string       `gorm:"column:frequency;size:20" json:"frequency,omitempty"` // daily, weekly, monthly
	Duration  int          `gorm:"column:duration;default:0" json:"duration,omitempty"`
}

// Achievement is a catalog definition, immutable outside admin edits.
// Hidden achievements still accrue progress; they are only excluded from
// non-admin listings and lookups.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:100" json:"title"`
	Description string    `gorm:"not null;type:text" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	Category    string    `gorm:"not null;index;size:30" json:"category"`
	IsHidden    bool      `gorm:"default:false" json:"is_hidden"`
	Criteria    Criteria  `gorm:"embedded;embeddedPrefix:criteria_" json:"criteria"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}
