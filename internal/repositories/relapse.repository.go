package repositories

import (
	"context"

	"cronify/internal/logger"
	. "cronify/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RelapseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, relapse *Relapse) error
	ListByHabit(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) ([]Relapse, error)
}

type relapseRepository struct {
	log logger.Logger
}

func NewRelapseRepository() RelapseRepository {
	return &relapseRepository{
		log: logger.New("relapseRepository"),
	}
}

func (r *relapseRepository) Create(ctx context.Context, tx *gorm.DB, relapse *Relapse) error {
	log := r.log.Function("Create")

	if err := gorm.G[Relapse](tx).Create(ctx, relapse); err != nil {
		return dbError(log, err, "failed to record relapse", "habitID", relapse.HabitID)
	}

	return nil
}

func (r *relapseRepository) ListByHabit(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
) ([]Relapse, error) {
	log := r.log.Function("ListByHabit")

	relapses, err := gorm.G[Relapse](tx).
		Where("habit_id = ?", habitID).
		Order("occurred_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list relapses", err, "habitID", habitID)
	}

	return relapses, nil
}
