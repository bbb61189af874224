package userController

import (
	"context"
	"fmt"
	"time"

	"cronify/internal/database"
	"cronify/internal/logger"
	. "cronify/internal/models"
	"cronify/internal/repositories"
	"cronify/internal/types"
	"cronify/internal/utils"

	"gorm.io/gorm"
)

const maxDisplayNameLength = 80

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
}

// UpdateSettingsRequest is a partial update. Nil fields are left alone.
type UpdateSettingsRequest struct {
	AutoFailEnabled    *bool   `json:"autoFailEnabled"`
	Timezone           *string `json:"timezone"`
	EmailNotifications *bool   `json:"emailNotifications"`
}

type MeResponse struct {
	User     UserProfile  `json:"user"`
	Settings UserSettings `json:"settings"`
}

type UserController struct {
	userRepo     repositories.UserRepository
	settingsRepo repositories.UserSettingsRepository
	db           *gorm.DB
	log          logger.Logger
}

type UserControllerInterface interface {
	GetMe(ctx context.Context, user *User) (*MeResponse, error)
	UpdateProfile(ctx context.Context, user *User, req UpdateProfileRequest) (*UserProfile, error)
	GetSettings(ctx context.Context, user *User) (*UserSettings, error)
	UpdateSettings(ctx context.Context, user *User, req UpdateSettingsRequest) (*UserSettings, error)
}

func New(
	repos repositories.Repository,
	db database.DB,
) UserControllerInterface {
	return &UserController{
		userRepo:     repos.User,
		settingsRepo: repos.UserSettings,
		db:           db.SQL,
		log:          logger.New("userController"),
	}
}

func (uc *UserController) GetMe(ctx context.Context, user *User) (*MeResponse, error) {
	settings, err := uc.GetSettings(ctx, user)
	if err != nil {
		return nil, err
	}

	return &MeResponse{User: user.ToProfile(), Settings: *settings}, nil
}

func (uc *UserController) UpdateProfile(
	ctx context.Context,
	user *User,
	req UpdateProfileRequest,
) (*UserProfile, error) {
	log := uc.log.TraceFromContext(ctx).Function("UpdateProfile")

	if req.DisplayName != nil {
		name := utils.SanitizeText(*req.DisplayName, maxDisplayNameLength)
		if name == "" {
			return nil, log.ErrorWithType(types.ErrValidation, "display name cannot be empty")
		}
		user.DisplayName = name
	}

	if err := uc.userRepo.Update(ctx, uc.db, user); err != nil {
		return nil, err
	}

	profile := user.ToProfile()
	return &profile, nil
}

func (uc *UserController) GetSettings(ctx context.Context, user *User) (*UserSettings, error) {
	return uc.settingsRepo.GetOrCreate(ctx, uc.db, user.ID)
}

func (uc *UserController) UpdateSettings(
	ctx context.Context,
	user *User,
	req UpdateSettingsRequest,
) (*UserSettings, error) {
	log := uc.log.TraceFromContext(ctx).Function("UpdateSettings")

	settings, err := uc.settingsRepo.GetOrCreate(ctx, uc.db, user.ID)
	if err != nil {
		return nil, err
	}
	updated := *settings

	if req.Timezone != nil {
		zone, err := validateTimezone(*req.Timezone)
		if err != nil {
			return nil, err
		}
		updated.Timezone = zone
	}
	if req.AutoFailEnabled != nil {
		updated.AutoFailEnabled = *req.AutoFailEnabled
	}
	if req.EmailNotifications != nil {
		updated.EmailNotifications = *req.EmailNotifications
	}

	if err := uc.settingsRepo.Update(ctx, uc.db, &updated); err != nil {
		return nil, err
	}

	log.Info("Settings updated",
		"userID", user.ID,
		"timezone", updated.Timezone,
		"autoFailEnabled", updated.AutoFailEnabled)
	return &updated, nil
}

// validateTimezone accepts IANA names only. "Local" depends on the server
// and is rejected.
func validateTimezone(zone string) (string, error) {
	if zone == "" || zone == "Local" {
		return "", fmt.Errorf("%w: invalid timezone %q", types.ErrValidation, zone)
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return "", fmt.Errorf("%w: invalid timezone %q", types.ErrValidation, zone)
	}
	return zone, nil
}
