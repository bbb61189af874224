package repositories

import (
	"context"

	"cronify/internal/constants"
	"cronify/internal/database"
	"cronify/internal/logger"
	. "cronify/internal/models"
	"cronify/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HabitLogRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, log *HabitLog) (*HabitLog, error)
	CreateIfMissing(ctx context.Context, tx *gorm.DB, log *HabitLog) (bool, error)
	ListByHabit(ctx context.Context, tx *gorm.DB, habitID uuid.UUID, dates types.DateRange) ([]HabitLog, error)
	GetByDate(ctx context.Context, tx *gorm.DB, habitID uuid.UUID, date string) (*HabitLog, error)
	Delete(ctx context.Context, tx *gorm.DB, habitID uuid.UUID, date string) error
	LoggedHabitIDs(ctx context.Context, tx *gorm.DB, habitIDs []uuid.UUID, date string) (map[uuid.UUID]bool, error)
}

type habitLogRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewHabitLogRepository(cache database.CacheClient) HabitLogRepository {
	return &habitLogRepository{
		cache: cache,
		log:   logger.New("habitLogRepository"),
	}
}

// Upsert writes the log for (habit, date). A second write for the same day
// replaces the first.
func (r *habitLogRepository) Upsert(
	ctx context.Context,
	tx *gorm.DB,
	habitLog *HabitLog,
) (*HabitLog, error) {
	log := r.log.Function("Upsert")

	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "habit_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns(
				[]string{"status", "value", "reason", "notes", "mood", "updated_at"},
			),
		}).
		Create(habitLog).Error
	if err != nil {
		return nil, log.Err("failed to upsert habit log", err, "habitID", habitLog.HabitID, "date", habitLog.Date)
	}

	r.clearHabitLogsCache(ctx, habitLog.HabitID)

	return r.GetByDate(ctx, tx, habitLog.HabitID, habitLog.Date)
}

// CreateIfMissing inserts the log unless the day already has one. It reports
// whether a row was written.
func (r *habitLogRepository) CreateIfMissing(
	ctx context.Context,
	tx *gorm.DB,
	habitLog *HabitLog,
) (bool, error) {
	log := r.log.Function("CreateIfMissing")

	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(habitLog)
	if result.Error != nil {
		return false, log.Err("failed to insert habit log", result.Error, "habitID", habitLog.HabitID)
	}

	if result.RowsAffected > 0 {
		r.clearHabitLogsCache(ctx, habitLog.HabitID)
	}
	return result.RowsAffected > 0, nil
}

// ListByHabit returns logs in date order. The unfiltered list is cached per
// habit.
func (r *habitLogRepository) ListByHabit(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
	dates types.DateRange,
) ([]HabitLog, error) {
	log := r.log.Function("ListByHabit")
	unfiltered := dates.From == "" && dates.To == ""

	if unfiltered {
		var cached []HabitLog
		found, err := database.NewCacheBuilder(r.cache, habitID).
			WithContext(ctx).
			WithHash(constants.HabitLogsCachePrefix).
			Get(&cached)
		if err != nil {
			log.Debug("habit logs cache unavailable", "habitID", habitID, "error", err)
		}
		if found {
			return cached, nil
		}
	}

	query := gorm.G[HabitLog](tx).Where("habit_id = ?", habitID)
	if dates.From != "" {
		query = query.Where("date >= ?", dates.From)
	}
	if dates.To != "" {
		query = query.Where("date <= ?", dates.To)
	}

	logs, err := query.Order("date ASC").Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list habit logs", err, "habitID", habitID)
	}

	if unfiltered {
		if err := database.NewCacheBuilder(r.cache, habitID).
			WithContext(ctx).
			WithHash(constants.HabitLogsCachePrefix).
			WithStruct(logs).
			WithTTL(constants.HabitLogsExpiry).
			Set(); err != nil {
			log.Debug("failed to cache habit logs", "habitID", habitID, "error", err)
		}
	}

	return logs, nil
}

func (r *habitLogRepository) GetByDate(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
	date string,
) (*HabitLog, error) {
	log := r.log.Function("GetByDate")

	habitLog, err := gorm.G[HabitLog](tx).
		Where("habit_id = ? AND date = ?", habitID, date).
		First(ctx)
	if err != nil {
		return nil, dbError(log, err, "habit log not found", "habitID", habitID, "date", date)
	}

	return &habitLog, nil
}

func (r *habitLogRepository) Delete(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
	date string,
) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).
		Unscoped().
		Where("habit_id = ? AND date = ?", habitID, date).
		Delete(&HabitLog{})
	if result.Error != nil {
		return log.Err("failed to delete habit log", result.Error, "habitID", habitID, "date", date)
	}
	if result.RowsAffected == 0 {
		return dbError(log, gorm.ErrRecordNotFound, "habit log not found", "habitID", habitID, "date", date)
	}

	r.clearHabitLogsCache(ctx, habitID)
	return nil
}

func (r *habitLogRepository) LoggedHabitIDs(
	ctx context.Context,
	tx *gorm.DB,
	habitIDs []uuid.UUID,
	date string,
) (map[uuid.UUID]bool, error) {
	log := r.log.Function("LoggedHabitIDs")

	logged := make(map[uuid.UUID]bool, len(habitIDs))
	if len(habitIDs) == 0 {
		return logged, nil
	}

	logs, err := gorm.G[HabitLog](tx).
		Select("habit_id").
		Where("habit_id IN ? AND date = ?", habitIDs, date).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to load logged habits", err, "date", date)
	}

	for _, l := range logs {
		logged[l.HabitID] = true
	}
	return logged, nil
}

func (r *habitLogRepository) clearHabitLogsCache(ctx context.Context, habitID uuid.UUID) {
	if err := database.NewCacheBuilder(r.cache, habitID).
		WithContext(ctx).
		WithHash(constants.HabitLogsCachePrefix).
		Delete(); err != nil {
		r.log.Function("clearHabitLogsCache").
			Debug("failed to clear habit logs cache", "habitID", habitID, "error", err)
	}
}
