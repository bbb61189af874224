package seed

import (
	"time"

	"cronify/config"
	"cronify/internal/logger"
	. "cronify/internal/models"
	"cronify/internal/services"
	"cronify/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	seedPassword = "cronify-demo"
	seedDays     = 21
)

func int64Ptr(v int64) *int64 {
	return &v
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	hash, err := services.NewAuthService(config, nil).HashPassword(seedPassword)
	if err != nil {
		return log.Err("failed to hash seed password", err)
	}

	owner := User{Email: "demo@cronify.dev", DisplayName: "Demo", PasswordHash: hash, IsActive: true}
	partner := User{Email: "partner@cronify.dev", DisplayName: "Partner", PasswordHash: hash, IsActive: true}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, user := range []*User{&owner, &partner} {
			if err := tx.Where("email = ?", user.Email).FirstOrCreate(user).Error; err != nil {
				return log.Err("failed to seed user", err, "email", user.Email)
			}

			settings := DefaultUserSettings(user.ID)
			settings.Timezone = "America/New_York"
			settings.AutoFailEnabled = user == &owner
			if err := tx.Where("user_id = ?", user.ID).FirstOrCreate(&settings).Error; err != nil {
				return log.Err("failed to seed settings", err, "email", user.Email)
			}
		}

		loc, _ := time.LoadLocation("America/New_York")
		now := time.Now()
		today := utils.TodayKey(now, loc)
		start := utils.AddDays(today, -(seedDays - 1))

		target := decimal.NewFromInt(10)
		meditate := Habit{
			UserID:      owner.ID,
			Title:       "Meditar",
			Description: "Diez minutos cada mañana",
			Type:        HabitTypeBuild,
			Frequency:   datatypes.NewJSONType(HabitFrequency{Type: FrequencyDaily}),
			TargetValue: &target,
			TargetUnit:  "min",
			StartDate:   start,
			IsShared:    true,
		}
		gym := Habit{
			UserID:    owner.ID,
			Title:     "Gimnasio",
			Type:      HabitTypeBuild,
			Frequency: datatypes.NewJSONType(HabitFrequency{Type: FrequencyWeekly, Days: []int{1, 3, 5}}),
			StartDate: start,
		}
		lastReset := now.Add(-3*24*time.Hour - 5*time.Hour)
		smoking := Habit{
			UserID:           owner.ID,
			Title:            "Dejar de fumar",
			Type:             HabitTypeBreak,
			Frequency:        datatypes.NewJSONType(HabitFrequency{Type: FrequencyDaily}),
			StartDate:        start,
			IsShared:         true,
			LastResetAt:      &lastReset,
			MaxStreakSeconds: 9 * 24 * 3600,
			GoalSeconds:      int64Ptr(30 * 24 * 3600),
		}

		for _, habit := range []*Habit{&meditate, &gym, &smoking} {
			if err := tx.Where("user_id = ? AND title = ?", habit.UserID, habit.Title).
				FirstOrCreate(habit).Error; err != nil {
				return log.Err("failed to seed habit", err, "title", habit.Title)
			}
		}

		logs := make([]HabitLog, 0, seedDays)
		for i := range seedDays {
			date := utils.AddDays(start, i)
			if date == today {
				break
			}
			status := LogStatusCompleted
			switch {
			case i%7 == 3:
				status = LogStatusFailed
			case i%9 == 5:
				status = LogStatusSkipped
			}
			logs = append(logs, HabitLog{HabitID: meditate.ID, Date: date, Status: status})

			if day, err := utils.ParseDateKey(date); err == nil &&
				gym.Frequency.Data().IsScheduledOn(day.Weekday()) && i%2 == 0 {
				logs = append(logs, HabitLog{HabitID: gym.ID, Date: date, Status: LogStatusCompleted})
			}
		}
		if err := tx.Where("habit_id IN ?", []any{meditate.ID, gym.ID}).Delete(&HabitLog{}).Error; err != nil {
			return log.Err("failed to clear seed logs", err)
		}
		if err := tx.Create(&logs).Error; err != nil {
			return log.Err("failed to seed logs", err)
		}

		relapse := Relapse{
			HabitID:       smoking.ID,
			UserID:        owner.ID,
			StreakSeconds: 9 * 24 * 3600,
			Reason:        "estrés",
			OccurredAt:    lastReset,
		}
		if err := tx.Where("habit_id = ?", smoking.ID).FirstOrCreate(&relapse).Error; err != nil {
			return log.Err("failed to seed relapse", err)
		}

		accepted := now.Add(-7 * 24 * time.Hour)
		partnership := Partnership{
			OwnerID:      owner.ID,
			PartnerEmail: partner.Email,
			Status:       PartnershipActive,
			Role:         PartnerRoleSupporter,
			ShowStreaks:  true,
			ShowLogs:     true,
			AcceptedAt:   &accepted,
		}
		if err := tx.Where("owner_id = ? AND partner_email = ?", owner.ID, partner.Email).
			FirstOrCreate(&partnership).Error; err != nil {
			return log.Err("failed to seed partnership", err)
		}

		encouragement := Encouragement{HabitID: meditate.ID, SenderEmail: partner.Email, Message: "¡Sigue así!"}
		if err := tx.Where("habit_id = ? AND sender_email = ?", meditate.ID, partner.Email).
			FirstOrCreate(&encouragement).Error; err != nil {
			return log.Err("failed to seed encouragement", err)
		}

		log.Info("Seeded development data", "users", 2, "habits", 3, "logs", len(logs))
		return nil
	})
}
