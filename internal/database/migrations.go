package database

import (
	"cronify/internal/logger"
	"cronify/internal/models"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.UserSettings{},
		&models.Habit{},
		&models.HabitLog{},
		&models.Relapse{},
		&models.Partnership{},
		&models.Encouragement{},
	}
}

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range Models() {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates the composite and partial indexes GORM tags cannot
// express.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_habits_user_created ON habits(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_habit_logs_date ON habit_logs(date)",
		"CREATE INDEX IF NOT EXISTS idx_relapses_habit_occurred ON relapses(habit_id, occurred_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_partnerships_partner_status ON partnerships(partner_email, status)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_partnerships_open_pair ON partnerships(owner_id, partner_email) WHERE status <> 'ended'",
		"CREATE INDEX IF NOT EXISTS idx_encouragements_habit_created ON encouragements(habit_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_user_settings_auto_fail ON user_settings(user_id) WHERE auto_fail_enabled",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
