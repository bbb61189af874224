package models

import (
	"time"

	"github.com/google/uuid"
)

type PartnershipStatus string

const (
	PartnershipPending PartnershipStatus = "pending"
	PartnershipActive  PartnershipStatus = "active"
	PartnershipPaused  PartnershipStatus = "paused"
	PartnershipEnded   PartnershipStatus = "ended"
)

type PartnerRole string

const (
	PartnerRoleSupporter PartnerRole = "supporter"
	PartnerRoleViewer    PartnerRole = "viewer"
)

func (r PartnerRole) Valid() bool {
	return r == PartnerRoleSupporter || r == PartnerRoleViewer
}

// Partnership lets the owner's shared habits be seen by whoever signs in
// with PartnerEmail. It is one directional.
type Partnership struct {
	BaseUUIDModel
	OwnerID      uuid.UUID         `gorm:"type:uuid;not null;index"                  json:"ownerId"`
	PartnerEmail string            `gorm:"type:text;not null;index"                  json:"partnerEmail"`
	Status       PartnershipStatus `gorm:"type:text;not null;default:pending"        json:"status"`
	Role         PartnerRole       `gorm:"type:text;not null;default:supporter"      json:"role"`
	ShowStreaks  bool              `gorm:"type:bool;default:true"                    json:"showStreaks"`
	ShowLogs     bool              `gorm:"type:bool;default:true"                    json:"showLogs"`
	ShowNotes    bool              `gorm:"type:bool;default:false"                   json:"showNotes"`
	AcceptedAt   *time.Time        `gorm:"type:timestamptz"                          json:"acceptedAt,omitempty"`
	EndedAt      *time.Time        `gorm:"type:timestamptz"                          json:"endedAt,omitempty"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
}

func (p *Partnership) IsActive() bool {
	return p.Status == PartnershipActive
}

// CanTransition reports whether the partnership may move to next.
func (p *Partnership) CanTransition(next PartnershipStatus) bool {
	switch p.Status {
	case PartnershipPending:
		return next == PartnershipActive || next == PartnershipEnded
	case PartnershipActive:
		return next == PartnershipPaused || next == PartnershipEnded
	case PartnershipPaused:
		return next == PartnershipActive || next == PartnershipEnded
	default:
		return false
	}
}
