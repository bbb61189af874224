package repositories

import (
	"context"

	"cronify/internal/logger"
	. "cronify/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnershipRepository interface {
	Create(ctx context.Context, tx *gorm.DB, partnership *Partnership) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Partnership, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]Partnership, error)
	ListByPartnerEmail(ctx context.Context, tx *gorm.DB, email string) ([]Partnership, error)
	FindOpen(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, email string) (*Partnership, error)
	FindActive(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, email string) (*Partnership, error)
	Update(ctx context.Context, tx *gorm.DB, partnership *Partnership) error
}

type partnershipRepository struct {
	log logger.Logger
}

func NewPartnershipRepository() PartnershipRepository {
	return &partnershipRepository{
		log: logger.New("partnershipRepository"),
	}
}

func (r *partnershipRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	partnership *Partnership,
) error {
	log := r.log.Function("Create")

	partnership.PartnerEmail = NormalizeEmail(partnership.PartnerEmail)
	if err := gorm.G[Partnership](tx).Create(ctx, partnership); err != nil {
		return dbError(log, err, "failed to create partnership", "ownerID", partnership.OwnerID)
	}

	return nil
}

func (r *partnershipRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Partnership, error) {
	log := r.log.Function("GetByID")

	partnership, err := gorm.G[Partnership](tx).
		Scopes(withOwner).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, dbError(log, err, "partnership not found", "partnershipID", id)
	}

	return &partnership, nil
}

func (r *partnershipRepository) ListByOwner(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
) ([]Partnership, error) {
	log := r.log.Function("ListByOwner")

	partnerships, err := gorm.G[Partnership](tx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list partnerships", err, "ownerID", ownerID)
	}

	return partnerships, nil
}

func (r *partnershipRepository) ListByPartnerEmail(
	ctx context.Context,
	tx *gorm.DB,
	email string,
) ([]Partnership, error) {
	log := r.log.Function("ListByPartnerEmail")

	partnerships, err := gorm.G[Partnership](tx).
		Scopes(withOwner).
		Where("partner_email = ?", NormalizeEmail(email)).
		Order("created_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list partner invitations", err)
	}

	return partnerships, nil
}

// FindOpen returns the owner's partnership with email that has not ended.
func (r *partnershipRepository) FindOpen(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
	email string,
) (*Partnership, error) {
	log := r.log.Function("FindOpen")

	partnership, err := gorm.G[Partnership](tx).
		Where("owner_id = ? AND partner_email = ? AND status <> ?", ownerID, NormalizeEmail(email), PartnershipEnded).
		First(ctx)
	if err != nil {
		return nil, dbError(log, err, "open partnership not found", "ownerID", ownerID)
	}

	return &partnership, nil
}

func (r *partnershipRepository) FindActive(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
	email string,
) (*Partnership, error) {
	log := r.log.Function("FindActive")

	partnership, err := gorm.G[Partnership](tx).
		Where("owner_id = ? AND partner_email = ? AND status = ?", ownerID, NormalizeEmail(email), PartnershipActive).
		First(ctx)
	if err != nil {
		return nil, dbError(log, err, "active partnership not found", "ownerID", ownerID)
	}

	return &partnership, nil
}

func (r *partnershipRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	partnership *Partnership,
) error {
	log := r.log.Function("Update")

	err := tx.WithContext(ctx).
		Model(&Partnership{}).
		Where("id = ?", partnership.ID).
		Updates(map[string]any{
			"status":       partnership.Status,
			"role":         partnership.Role,
			"show_streaks": partnership.ShowStreaks,
			"show_logs":    partnership.ShowLogs,
			"show_notes":   partnership.ShowNotes,
			"accepted_at":  partnership.AcceptedAt,
			"ended_at":     partnership.EndedAt,
		}).Error
	if err != nil {
		return log.Err("failed to update partnership", err, "partnershipID", partnership.ID)
	}

	return nil
}

func withOwner(db *gorm.Statement) {
	db.Preload("Owner")
}
