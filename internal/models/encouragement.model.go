package models

import "github.com/google/uuid"

type Encouragement struct {
	BaseUUIDModel
	HabitID     uuid.UUID `gorm:"type:uuid;not null;index" json:"habitId"`
	SenderEmail string    `gorm:"type:text;not null"       json:"senderEmail"`
	Message     string    `gorm:"type:text;not null"       json:"message"`
	Emoji       *string   `gorm:"type:text"                json:"emoji,omitempty"`

	Habit *Habit `gorm:"foreignKey:HabitID;constraint:OnDelete:CASCADE" json:"-"`
}
