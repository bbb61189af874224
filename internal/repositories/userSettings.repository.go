package repositories

import (
	"context"
	"time"

	"cronify/internal/constants"
	"cronify/internal/database"
	"cronify/internal/logger"
	. "cronify/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserSettingsRepository interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*UserSettings, error)
	Update(ctx context.Context, tx *gorm.DB, settings *UserSettings) error
	ListAutoFailEnabled(ctx context.Context, tx *gorm.DB) ([]UserSettings, error)
}

type userSettingsRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserSettingsRepository(cache database.CacheClient) UserSettingsRepository {
	return &userSettingsRepository{
		cache: cache,
		log:   logger.New("userSettingsRepository"),
	}
}

// GetOrCreate returns the user's settings, inserting the defaults on first
// read. Concurrent first reads converge on the same row.
func (r *userSettingsRepository) GetOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) (*UserSettings, error) {
	log := r.log.Function("GetOrCreate")

	var cached UserSettings
	found, err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(constants.UserSettingsCachePrefix).
		Get(&cached)
	if err != nil {
		log.Debug("settings cache unavailable", "userID", userID, "error", err)
	}
	if found {
		return &cached, nil
	}

	defaults := DefaultUserSettings(userID)
	if err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&defaults).Error; err != nil {
		return nil, log.Err("failed to create default settings", err, "userID", userID)
	}

	settings, err := gorm.G[UserSettings](tx).Where("user_id = ?", userID).First(ctx)
	if err != nil {
		return nil, dbError(log, err, "settings not found", "userID", userID)
	}

	r.addToCache(ctx, &settings)
	return &settings, nil
}

func (r *userSettingsRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	settings *UserSettings,
) error {
	log := r.log.Function("Update")

	err := tx.WithContext(ctx).
		Model(&UserSettings{}).
		Where("user_id = ?", settings.UserID).
		Updates(map[string]any{
			"auto_fail_enabled":   settings.AutoFailEnabled,
			"timezone":            settings.Timezone,
			"email_notifications": settings.EmailNotifications,
		}).Error
	if err != nil {
		return log.Err("failed to update settings", err, "userID", settings.UserID)
	}

	if err := database.NewCacheBuilder(r.cache, settings.UserID).
		WithContext(ctx).
		WithHash(constants.UserSettingsCachePrefix).
		Delete(); err != nil {
		log.Debug("failed to clear settings cache", "userID", settings.UserID, "error", err)
	}

	return nil
}

func (r *userSettingsRepository) ListAutoFailEnabled(
	ctx context.Context,
	tx *gorm.DB,
) ([]UserSettings, error) {
	log := r.log.Function("ListAutoFailEnabled")

	settings, err := gorm.G[UserSettings](tx).Where("auto_fail_enabled = ?", true).Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list auto-fail settings", err)
	}

	return settings, nil
}

func (r *userSettingsRepository) addToCache(ctx context.Context, settings *UserSettings) {
	if err := database.NewCacheBuilder(r.cache, settings.UserID).
		WithContext(ctx).
		WithHash(constants.UserSettingsCachePrefix).
		WithStruct(settings).
		WithTTL(constants.SettingsCacheExpiry).
		Set(); err != nil {
		r.log.Function("addToCache").Debug("failed to cache settings", "userID", settings.UserID, "error", err)
	}
}

// LocationFor returns the user's configured zone, or UTC when the settings
// cannot be loaded.
func LocationFor(
	ctx context.Context,
	repo UserSettingsRepository,
	tx *gorm.DB,
	userID uuid.UUID,
) *time.Location {
	settings, err := repo.GetOrCreate(ctx, tx, userID)
	if err != nil {
		return time.UTC
	}
	return settings.Location()
}
