package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type HabitType string

const (
	HabitTypeBuild HabitType = "build"
	HabitTypeBreak HabitType = "break"
)

func (t HabitType) Valid() bool {
	return t == HabitTypeBuild || t == HabitTypeBreak
}

type FrequencyType string

const (
	FrequencyDaily  FrequencyType = "daily"
	FrequencyWeekly FrequencyType = "weekly"
	FrequencyCustom FrequencyType = "custom"
)

// HabitFrequency describes when a build habit is due. Days uses Go weekday
// numbering (0 = Sunday).
type HabitFrequency struct {
	Type         FrequencyType `json:"type"`
	Days         []int         `json:"days,omitempty"`
	TimesPerWeek int           `json:"timesPerWeek,omitempty"`
}

func (f HabitFrequency) IsScheduledOn(day time.Weekday) bool {
	switch f.Type {
	case FrequencyDaily, "":
		return true
	case FrequencyWeekly, FrequencyCustom:
		return slices.Contains(f.Days, int(day))
	default:
		return false
	}
}

type Habit struct {
	BaseUUIDModel
	UserID      uuid.UUID                           `gorm:"type:uuid;not null;index"          json:"userId"`
	Title       string                              `gorm:"type:text;not null"                json:"title"`
	Description string                              `gorm:"type:text"                         json:"description"`
	Type        HabitType                           `gorm:"type:text;not null;default:build"  json:"type"`
	Frequency   datatypes.JSONType[HabitFrequency]  `gorm:"type:jsonb;not null"               json:"frequency"`
	TargetValue *decimal.Decimal                    `gorm:"type:numeric(12,2)"                json:"targetValue,omitempty"`
	TargetUnit  string                              `gorm:"type:text"                         json:"targetUnit,omitempty"`
	StartDate   string                              `gorm:"type:varchar(10);not null"         json:"startDate"`
	EndDate     *string                             `gorm:"type:varchar(10)"                  json:"endDate,omitempty"`
	IsShared    bool                                `gorm:"type:bool;default:false;index"     json:"isShared"`

	LastResetAt      *time.Time `gorm:"type:timestamptz"        json:"lastResetAt,omitempty"`
	MaxStreakSeconds int64      `gorm:"type:bigint;default:0"   json:"maxStreakSeconds"`
	GoalSeconds      *int64     `gorm:"type:bigint"             json:"goalSeconds,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (h *Habit) IsBreak() bool {
	return h.Type == HabitTypeBreak
}

// ActiveOn reports whether dateKey (YYYY-MM-DD) falls inside the habit's
// start and end dates. Keys compare lexically.
func (h *Habit) ActiveOn(dateKey string) bool {
	if dateKey < h.StartDate {
		return false
	}
	if h.EndDate != nil && *h.EndDate != "" && dateKey > *h.EndDate {
		return false
	}
	return true
}

// TimerStart is the instant the break timer counts from.
func (h *Habit) TimerStart(loc *time.Location) time.Time {
	if h.LastResetAt != nil {
		return *h.LastResetAt
	}
	start, err := time.ParseInLocation(time.DateOnly, h.StartDate, loc)
	if err != nil {
		return h.CreatedAt
	}
	return start
}
