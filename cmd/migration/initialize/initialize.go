package initialize

import (
	"cronify/config"
	"cronify/internal/logger"
	. "cronify/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := backfillUserSettings(db, log); err != nil {
		return log.Err("failed to backfill user settings", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// backfillUserSettings gives every user without a settings row the defaults.
func backfillUserSettings(db *gorm.DB, log logger.Logger) error {
	log = log.Function("backfillUserSettings")

	var userIDs []uuid.UUID
	if err := db.Model(&User{}).
		Where("id NOT IN (?)", db.Model(&UserSettings{}).Select("user_id")).
		Pluck("id", &userIDs).Error; err != nil {
		return log.Err("failed to find users without settings", err)
	}

	if len(userIDs) == 0 {
		log.Debug("All users have settings")
		return nil
	}

	settings := make([]UserSettings, 0, len(userIDs))
	for _, id := range userIDs {
		settings = append(settings, DefaultUserSettings(id))
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&settings).Error; err != nil {
		return log.Err("failed to create default settings", err)
	}

	log.Info("Backfilled user settings", "count", len(settings))
	return nil
}
