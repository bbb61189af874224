package authController

import (
	"context"
	"errors"
	"testing"
	"time"

	"cronify/internal/logger"
	"cronify/internal/mocks"
	"cronify/internal/models"
	"cronify/internal/services"
	"cronify/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	issued  []uuid.UUID
	revoked []*services.Claims
}

func (s *stubAuthenticator) HashPassword(password string) (string, error) {
	if err := services.ValidatePassword(password); err != nil {
		return "", err
	}
	return "hashed:" + password, nil
}

func (s *stubAuthenticator) CheckPassword(hash, password string) bool {
	return hash == "hashed:"+password
}

func (s *stubAuthenticator) IssueToken(_ context.Context, userID uuid.UUID) (*services.IssuedToken, error) {
	s.issued = append(s.issued, userID)
	return &services.IssuedToken{Token: "token-" + userID.String(), SessionID: "sid", ExpiresAt: time.Unix(100, 0)}, nil
}

func (s *stubAuthenticator) RevokeSession(_ context.Context, claims *services.Claims) error {
	s.revoked = append(s.revoked, claims)
	return nil
}

func (s *stubAuthenticator) RevokeAllSessions(context.Context, uuid.UUID) error {
	return nil
}

type fixture struct {
	controller *AuthController
	auth       *stubAuthenticator
	users      *mocks.UserRepository
	settings   *mocks.UserSettingsRepository
}

func newFixture() *fixture {
	f := &fixture{
		auth:     &stubAuthenticator{},
		users:    &mocks.UserRepository{},
		settings: &mocks.UserSettingsRepository{},
	}
	f.controller = &AuthController{
		auth:         f.auth,
		transaction:  &mocks.Transactor{},
		userRepo:     f.users,
		settingsRepo: f.settings,
		now:          func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) },
		log:          logger.New("authController"),
	}
	return f
}

func TestRegister(t *testing.T) {
	t.Run("creates user and default settings", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByEmail", mock.Anything, mock.Anything, "ana@example.com").Return(nil, types.ErrNotFound)
		f.users.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "ana@example.com" && u.PasswordHash == "hashed:s3cret-pass" && u.DisplayName == "Ana"
		})).Run(func(args mock.Arguments) {
			args.Get(2).(*models.User).ID = uuid.New()
		}).Return(nil)
		f.settings.On("GetOrCreate", mock.Anything, mock.Anything, mock.Anything).Return(&models.UserSettings{}, nil)

		result, err := f.controller.Register(context.Background(), RegisterRequest{
			Email:       "  Ana@Example.com ",
			Password:    "s3cret-pass",
			DisplayName: " Ana ",
		})
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", result.User.Email)
		assert.Equal(t, "token-"+result.User.ID, result.Token)
		require.Len(t, f.auth.issued, 1)
		f.users.AssertExpectations(t)
		f.settings.AssertExpectations(t)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByEmail", mock.Anything, mock.Anything, "ana@example.com").Return(&models.User{}, nil)

		_, err := f.controller.Register(context.Background(), RegisterRequest{Email: "ana@example.com", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, types.ErrConflict)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.auth.issued)
	})

	validation := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "missing email", req: RegisterRequest{Password: "s3cret-pass"}},
		{name: "malformed email", req: RegisterRequest{Email: "not-an-email", Password: "s3cret-pass"}},
		{name: "display name form", req: RegisterRequest{Email: "Ana <ana@example.com>", Password: "s3cret-pass"}},
		{name: "short password", req: RegisterRequest{Email: "ana@example.com", Password: "short"}},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.controller.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	userID := uuid.New()
	active := &models.User{Email: "ana@example.com", PasswordHash: "hashed:s3cret-pass", IsActive: true}
	active.ID = userID

	t.Run("valid credentials issue a token", func(t *testing.T) {
		f := newFixture()
		user := *active
		f.users.On("GetByEmail", mock.Anything, mock.Anything, "ana@example.com").Return(&user, nil)
		f.users.On("UpdateLastLogin", mock.Anything, mock.Anything, userID, mock.Anything).Return(nil)

		result, err := f.controller.Login(context.Background(), LoginRequest{Email: "ANA@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, "token-"+userID.String(), result.Token)
		require.NotNil(t, result.User.LastLoginAt)
	})

	t.Run("last login failure is not fatal", func(t *testing.T) {
		f := newFixture()
		user := *active
		f.users.On("GetByEmail", mock.Anything, mock.Anything, "ana@example.com").Return(&user, nil)
		f.users.On("UpdateLastLogin", mock.Anything, mock.Anything, userID, mock.Anything).Return(errors.New("timeout"))

		result, err := f.controller.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Nil(t, result.User.LastLoginAt)
	})

	failures := []struct {
		name  string
		user  *models.User
		err   error
		req   LoginRequest
		check error
	}{
		{
			name:  "wrong password",
			user:  active,
			req:   LoginRequest{Email: "ana@example.com", Password: "nope-nope"},
			check: types.ErrUnauthorized,
		},
		{
			name:  "unknown email",
			err:   types.ErrNotFound,
			req:   LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"},
			check: types.ErrUnauthorized,
		},
		{
			name:  "inactive user",
			user:  &models.User{Email: "ana@example.com", PasswordHash: "hashed:s3cret-pass", IsActive: false},
			req:   LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"},
			check: types.ErrUnauthorized,
		},
		{
			name:  "empty credentials",
			req:   LoginRequest{},
			check: types.ErrUnauthorized,
		},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.users.On("GetByEmail", mock.Anything, mock.Anything, mock.Anything).Return(tt.user, tt.err)

			_, err := f.controller.Login(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.check)
			assert.Empty(t, f.auth.issued)
		})
	}

	t.Run("storage errors pass through", func(t *testing.T) {
		f := newFixture()
		boom := errors.New("db down")
		f.users.On("GetByEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

		_, err := f.controller.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture()

	assert.ErrorIs(t, f.controller.Logout(context.Background(), nil), types.ErrUnauthorized)

	claims := &services.Claims{UserID: uuid.New(), SessionID: "sid"}
	require.NoError(t, f.controller.Logout(context.Background(), claims))
	assert.Equal(t, []*services.Claims{claims}, f.auth.revoked)
}
