package models

import (
	"time"

	"github.com/google/uuid"
)

// Relapse records a break-habit timer reset and how long the streak ran.
type Relapse struct {
	BaseUUIDModel
	HabitID       uuid.UUID `gorm:"type:uuid;not null;index"       json:"habitId"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"       json:"userId"`
	StreakSeconds int64     `gorm:"type:bigint;not null"           json:"streakSeconds"`
	Reason        string    `gorm:"type:text"                      json:"reason,omitempty"`
	Notes         string    `gorm:"type:text"                      json:"notes,omitempty"`
	OccurredAt    time.Time `gorm:"type:timestamptz;not null"      json:"occurredAt"`

	Habit *Habit `gorm:"foreignKey:HabitID;constraint:OnDelete:CASCADE" json:"-"`
}
