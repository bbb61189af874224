package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LogStatus string

const (
	LogStatusCompleted LogStatus = "completed"
	LogStatusFailed    LogStatus = "failed"
	LogStatusSkipped   LogStatus = "skipped"
	LogStatusPartial   LogStatus = "partial"
)

func (s LogStatus) Valid() bool {
	switch s {
	case LogStatusCompleted, LogStatusFailed, LogStatusSkipped, LogStatusPartial:
		return true
	}
	return false
}

const AutoFailReason = "auto"

// HabitLog is one outcome per habit per day. Date is a YYYY-MM-DD key in the
// owner's timezone.
type HabitLog struct {
	BaseUUIDModel
	HabitID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_habit_logs_habit_date,priority:1" json:"habitId"`
	Date    string           `gorm:"type:varchar(10);not null;uniqueIndex:idx_habit_logs_habit_date,priority:2" json:"date"`
	Status  LogStatus        `gorm:"type:text;not null"                                                   json:"status"`
	Value   *decimal.Decimal `gorm:"type:numeric(12,2)"                                                   json:"value,omitempty"`
	Reason  string           `gorm:"type:text"                                                            json:"reason,omitempty"`
	Notes   string           `gorm:"type:text"                                                            json:"notes,omitempty"`
	Mood    *string          `gorm:"type:text"                                                            json:"mood,omitempty"`

	Habit *Habit `gorm:"foreignKey:HabitID;constraint:OnDelete:CASCADE" json:"-"`
}
