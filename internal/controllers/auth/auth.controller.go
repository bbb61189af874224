package authController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cronify/internal/database"
	"cronify/internal/logger"
	"cronify/internal/models"
	"cronify/internal/repositories"
	"cronify/internal/services"
	"cronify/internal/types"
	"cronify/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxDisplayNameLength = 80

// Authenticator is the part of the auth service the controller needs.
type Authenticator interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
	IssueToken(ctx context.Context, userID uuid.UUID) (*services.IssuedToken, error)
	RevokeSession(ctx context.Context, claims *services.Claims) error
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User      models.UserProfile `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

type AuthController struct {
	auth         Authenticator
	transaction  services.Transactor
	userRepo     repositories.UserRepository
	settingsRepo repositories.UserSettingsRepository
	db           *gorm.DB
	now          func() time.Time
	log          logger.Logger
}

type AuthControllerInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, claims *services.Claims) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

func New(
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		auth:         services.Auth,
		transaction:  services.Transaction,
		userRepo:     repos.User,
		settingsRepo: repos.UserSettings,
		db:           db.SQL,
		now:          time.Now,
		log:          logger.New("authController"),
	}
}

func (ac *AuthController) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	log := ac.log.TraceFromContext(ctx).Function("Register")

	email, err := utils.ParseEmail(req.Email)
	if err != nil {
		return nil, err
	}

	hash, err := ac.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  utils.SanitizeText(req.DisplayName, maxDisplayNameLength),
		IsActive:     true,
	}

	err = ac.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		existing, err := ac.userRepo.GetByEmail(ctx, tx, email)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return err
		}
		if existing != nil {
			return log.ErrorWithType(types.ErrConflict, "email already registered", "email", email)
		}

		if err := ac.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}

		_, err = ac.settingsRepo.GetOrCreate(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("User registered", "userID", user.ID)
	return ac.issue(ctx, user)
}

func (ac *AuthController) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	log := ac.log.TraceFromContext(ctx).Function("Login")

	invalid := func() error {
		return log.ErrorWithType(types.ErrUnauthorized, "invalid email or password")
	}

	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid()
	}

	user, err := ac.userRepo.GetByEmail(ctx, ac.db, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, invalid()
		}
		return nil, err
	}

	if !user.IsActive || !ac.auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, invalid()
	}

	now := ac.now()
	if err := ac.userRepo.UpdateLastLogin(ctx, ac.db, user.ID, now); err != nil {
		log.Warn("failed to record last login", "userID", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	return ac.issue(ctx, user)
}

func (ac *AuthController) Logout(ctx context.Context, claims *services.Claims) error {
	if claims == nil {
		return fmt.Errorf("%w: no active session", types.ErrUnauthorized)
	}
	return ac.auth.RevokeSession(ctx, claims)
}

func (ac *AuthController) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return ac.auth.RevokeAllSessions(ctx, userID)
}

func (ac *AuthController) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := ac.auth.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:      user.ToProfile(),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
