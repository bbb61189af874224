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
)

type HabitRepository interface {
	Create(ctx context.Context, tx *gorm.DB, habit *Habit) error
	GetByID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) (*Habit, error)
	GetUserHabit(ctx context.Context, tx *gorm.DB, userID, habitID uuid.UUID) (*Habit, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]Habit, error)
	ListShared(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]Habit, error)
	ListBuildHabitsForUsers(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]Habit, error)
	Update(ctx context.Context, tx *gorm.DB, habit *Habit) error
	UpdateTimer(
		ctx context.Context,
		tx *gorm.DB,
		habit *Habit,
		lastResetAt time.Time,
		maxStreakSeconds int64,
	) error
	Delete(ctx context.Context, tx *gorm.DB, userID, habitID uuid.UUID) error
	ClearUserHabitsCache(ctx context.Context, userID uuid.UUID)
}

type habitRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewHabitRepository(cache database.CacheClient) HabitRepository {
	return &habitRepository{
		cache: cache,
		log:   logger.New("habitRepository"),
	}
}

func (r *habitRepository) Create(ctx context.Context, tx *gorm.DB, habit *Habit) error {
	log := r.log.Function("Create")

	if err := gorm.G[Habit](tx).Create(ctx, habit); err != nil {
		return dbError(log, err, "failed to create habit", "userID", habit.UserID)
	}

	r.clearUserHabitsCache(ctx, habit.UserID)
	return nil
}

func (r *habitRepository) GetByID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) (*Habit, error) {
	log := r.log.Function("GetByID")

	habit, err := gorm.G[Habit](tx).Where("id = ?", habitID).First(ctx)
	if err != nil {
		return nil, dbError(log, err, "habit not found", "habitID", habitID)
	}

	return &habit, nil
}

func (r *habitRepository) GetUserHabit(
	ctx context.Context,
	tx *gorm.DB,
	userID, habitID uuid.UUID,
) (*Habit, error) {
	log := r.log.Function("GetUserHabit")

	habit, err := gorm.G[Habit](tx).
		Where("id = ? AND user_id = ?", habitID, userID).
		First(ctx)
	if err != nil {
		return nil, dbError(log, err, "habit not found", "habitID", habitID, "userID", userID)
	}

	return &habit, nil
}

func (r *habitRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]Habit, error) {
	log := r.log.Function("ListByUser")

	var cached []Habit
	found, err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(constants.HabitListCachePrefix).
		Get(&cached)
	if err != nil {
		log.Debug("habit cache unavailable", "userID", userID, "error", err)
	}
	if found {
		return cached, nil
	}

	habits, err := gorm.G[Habit](tx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list habits", err, "userID", userID)
	}

	if err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(constants.HabitListCachePrefix).
		WithStruct(habits).
		WithTTL(constants.HabitCacheExpiry).
		Set(); err != nil {
		log.Debug("failed to cache habits", "userID", userID, "error", err)
	}

	return habits, nil
}

func (r *habitRepository) ListShared(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
) ([]Habit, error) {
	log := r.log.Function("ListShared")

	habits, err := gorm.G[Habit](tx).
		Where("user_id = ? AND is_shared = ?", ownerID, true).
		Order("created_at ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list shared habits", err, "ownerID", ownerID)
	}

	return habits, nil
}

func (r *habitRepository) ListBuildHabitsForUsers(
	ctx context.Context,
	tx *gorm.DB,
	userIDs []uuid.UUID,
) ([]Habit, error) {
	log := r.log.Function("ListBuildHabitsForUsers")

	if len(userIDs) == 0 {
		return nil, nil
	}

	habits, err := gorm.G[Habit](tx).
		Where("user_id IN ? AND type = ?", userIDs, HabitTypeBuild).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list build habits", err, "userCount", len(userIDs))
	}

	return habits, nil
}

func (r *habitRepository) Update(ctx context.Context, tx *gorm.DB, habit *Habit) error {
	log := r.log.Function("Update")

	err := tx.WithContext(ctx).
		Model(&Habit{}).
		Where("id = ? AND user_id = ?", habit.ID, habit.UserID).
		Updates(map[string]any{
			"title":        habit.Title,
			"description":  habit.Description,
			"frequency":    habit.Frequency,
			"target_value": habit.TargetValue,
			"target_unit":  habit.TargetUnit,
			"start_date":   habit.StartDate,
			"end_date":     habit.EndDate,
			"is_shared":    habit.IsShared,
			"goal_seconds": habit.GoalSeconds,
		}).Error
	if err != nil {
		return log.Err("failed to update habit", err, "habitID", habit.ID)
	}

	r.clearUserHabitsCache(ctx, habit.UserID)
	return nil
}

// UpdateTimer runs inside the reset transaction and leaves the habit list
// cache alone. Callers clear it with ClearUserHabitsCache after commit.
func (r *habitRepository) UpdateTimer(
	ctx context.Context,
	tx *gorm.DB,
	habit *Habit,
	lastResetAt time.Time,
	maxStreakSeconds int64,
) error {
	log := r.log.Function("UpdateTimer")

	err := tx.WithContext(ctx).
		Model(&Habit{}).
		Where("id = ?", habit.ID).
		Updates(map[string]any{
			"last_reset_at":      lastResetAt,
			"max_streak_seconds": maxStreakSeconds,
		}).Error
	if err != nil {
		return log.Err("failed to update habit timer", err, "habitID", habit.ID)
	}

	return nil
}

// Delete removes the habit row. Logs, relapses and encouragements go with it
// through ON DELETE CASCADE.
func (r *habitRepository) Delete(ctx context.Context, tx *gorm.DB, userID, habitID uuid.UUID) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).
		Unscoped().
		Where("id = ? AND user_id = ?", habitID, userID).
		Delete(&Habit{})
	if result.Error != nil {
		return log.Err("failed to delete habit", result.Error, "habitID", habitID)
	}
	if result.RowsAffected == 0 {
		return dbError(log, gorm.ErrRecordNotFound, "habit not found", "habitID", habitID)
	}

	r.clearUserHabitsCache(ctx, userID)
	if err := database.NewCacheBuilder(r.cache, habitID).
		WithContext(ctx).
		WithHash(constants.HabitLogsCachePrefix).
		Delete(); err != nil {
		log.Debug("failed to clear habit logs cache", "habitID", habitID, "error", err)
	}

	return nil
}

func (r *habitRepository) ClearUserHabitsCache(ctx context.Context, userID uuid.UUID) {
	r.clearUserHabitsCache(ctx, userID)
}

func (r *habitRepository) clearUserHabitsCache(ctx context.Context, userID uuid.UUID) {
	if err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(constants.HabitListCachePrefix).
		Delete(); err != nil {
		r.log.Function("clearUserHabitsCache").
			Debug("failed to clear habits cache", "userID", userID, "error", err)
	}
}
