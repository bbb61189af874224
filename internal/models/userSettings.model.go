package models

import (
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
)

const DefaultTimezone = "UTC"

type UserSettings struct {
	BaseUUIDModel
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"  json:"userId"`
	AutoFailEnabled    bool      `gorm:"type:bool;default:false"         json:"autoFailEnabled"`
	Timezone           string    `gorm:"type:text;not null;default:UTC"  json:"timezone"`
	EmailNotifications bool      `gorm:"type:bool;default:true"          json:"emailNotifications"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Location falls back to UTC for empty or unknown zones.
func (s *UserSettings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func DefaultUserSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:             userID,
		AutoFailEnabled:    false,
		Timezone:           DefaultTimezone,
		EmailNotifications: true,
	}
}
