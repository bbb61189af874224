package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	BaseUUIDModel
	Email        string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:text;not null"             json:"-"`
	DisplayName  string     `gorm:"type:text"                      json:"displayName"`
	IsActive     bool       `gorm:"type:bool;default:true"         json:"isActive"`
	LastLoginAt  *time.Time `gorm:"type:timestamptz"               json:"lastLoginAt,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.DisplayName == "" {
		u.DisplayName = strings.Split(u.Email, "@")[0]
	}
	return u.BaseUUIDModel.BeforeCreate(tx)
}

// NormalizeEmail lowercases and trims an address. Partnerships are keyed by
// email so every lookup goes through here.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserProfile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		LastLoginAt: u.LastLoginAt,
	}
}
