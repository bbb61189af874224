package repositories

import (
	"context"

	"cronify/internal/logger"
	. "cronify/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EncouragementRepository interface {
	Create(ctx context.Context, tx *gorm.DB, encouragement *Encouragement) error
	ListByHabit(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) ([]Encouragement, error)
}

type encouragementRepository struct {
	log logger.Logger
}

func NewEncouragementRepository() EncouragementRepository {
	return &encouragementRepository{
		log: logger.New("encouragementRepository"),
	}
}

func (r *encouragementRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	encouragement *Encouragement,
) error {
	log := r.log.Function("Create")

	if err := gorm.G[Encouragement](tx).Create(ctx, encouragement); err != nil {
		return dbError(log, err, "failed to create encouragement", "habitID", encouragement.HabitID)
	}

	return nil
}

func (r *encouragementRepository) ListByHabit(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
) ([]Encouragement, error) {
	log := r.log.Function("ListByHabit")

	encouragements, err := gorm.G[Encouragement](tx).
		Where("habit_id = ?", habitID).
		Order("created_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list encouragements", err, "habitID", habitID)
	}

	return encouragements, nil
}
