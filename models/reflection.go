// models/reflection.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reflection is a dated, mood-tagged text entry. The achievement engine only
// reads dates in aggregate to derive streak signals; it never mutates these.
type Reflection struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_reflections_user_date" json:"user_id"`
	Mood      string    `gorm:"size:30" json:"mood"`
	Content   string    `gorm:"type:text" json:"content"`
	Date      time.Time `gorm:"not null;index:idx_reflections_user_date" json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Reflection) TableName() string {
	return "reflections"
}

func (r *Reflection) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
