package repositories

import (
	"errors"

	"cronify/internal/database"
	"cronify/internal/logger"
	"cronify/internal/types"

	"gorm.io/gorm"
)

type Repository struct {
	User          UserRepository
	UserSettings  UserSettingsRepository
	Habit         HabitRepository
	HabitLog      HabitLogRepository
	Partnership   PartnershipRepository
	Encouragement EncouragementRepository
	Relapse       RelapseRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:          NewUserRepository(db.Cache.User),
		UserSettings:  NewUserSettingsRepository(db.Cache.User),
		Habit:         NewHabitRepository(db.Cache.Habit),
		HabitLog:      NewHabitLogRepository(db.Cache.Habit),
		Partnership:   NewPartnershipRepository(),
		Encouragement: NewEncouragementRepository(),
		Relapse:       NewRelapseRepository(),
	}
}

// dbError maps gorm sentinels onto the shared error types so handlers can pick
// a status code.
func dbError(log logger.Logger, err error, msg string, args ...any) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return log.ErrorWithType(types.ErrNotFound, msg, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return log.ErrorWithType(types.ErrConflict, msg, args...)
	default:
		return log.Err(msg, err, args...)
	}
}
