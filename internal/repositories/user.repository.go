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

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	Update(ctx context.Context, tx *gorm.DB, user *User) error
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error
	ClearUserCache(ctx context.Context, userID uuid.UUID)
}

type userRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(cache database.CacheClient) UserRepository {
	return &userRepository{
		cache: cache,
		log:   logger.New("userRepository"),
	}
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Create")

	if err := gorm.G[User](tx).Create(ctx, user); err != nil {
		return dbError(log, err, "failed to create user", "email", user.Email)
	}

	r.addUserToCache(ctx, user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var cached User
	found, err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(constants.UserCachePrefix).
		Get(&cached)
	if err != nil {
		log.Debug("user cache unavailable", "userID", id, "error", err)
	}
	if found {
		return &cached, nil
	}

	user, err := gorm.G[User](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, dbError(log, err, "user not found", "userID", id)
	}

	r.addUserToCache(ctx, &user)
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error) {
	log := r.log.Function("GetByEmail")

	user, err := gorm.G[User](tx).Where("email = ?", NormalizeEmail(email)).First(ctx)
	if err != nil {
		return nil, dbError(log, err, "user not found", "email", email)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Update")

	err := tx.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"display_name": user.DisplayName,
			"is_active":    user.IsActive,
		}).Error
	if err != nil {
		return dbError(log, err, "failed to update user", "userID", user.ID)
	}

	r.ClearUserCache(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdateLastLogin(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	at time.Time,
) error {
	log := r.log.Function("UpdateLastLogin")

	if _, err := gorm.G[User](tx).Where("id = ?", userID).Update(ctx, "last_login_at", at); err != nil {
		return log.Err("failed to update last login", err, "userID", userID)
	}

	r.ClearUserCache(ctx, userID)
	return nil
}

func (r *userRepository) ClearUserCache(ctx context.Context, userID uuid.UUID) {
	if err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(constants.UserCachePrefix).
		Delete(); err != nil {
		r.log.Function("ClearUserCache").Debug("failed to clear user cache", "userID", userID, "error", err)
	}
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) {
	if err := database.NewCacheBuilder(r.cache, user.ID).
		WithContext(ctx).
		WithHash(constants.UserCachePrefix).
		WithStruct(user).
		WithTTL(constants.UserCacheExpiry).
		Set(); err != nil {
		r.log.Function("addUserToCache").Debug("failed to cache user", "userID", user.ID, "error", err)
	}
}
