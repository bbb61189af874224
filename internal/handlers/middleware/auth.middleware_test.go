package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cronify/internal/logger"
	"cronify/internal/mocks"
	"cronify/internal/models"
	"cronify/internal/services"
	"cronify/internal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	tokens map[string]*services.Claims
}

func (s stubValidator) ValidateToken(_ context.Context, token string) (*services.Claims, error) {
	claims, ok := s.tokens[token]
	if !ok {
		return nil, types.ErrUnauthorized
	}
	return claims, nil
}

func setupAuthApp(t *testing.T) (*fiber.App, *models.User, *models.User) {
	t.Helper()

	active := &models.User{Email: "active@example.com", IsActive: true}
	active.ID = uuid.New()
	disabled := &models.User{Email: "disabled@example.com"}
	disabled.ID = uuid.New()
	orphan := uuid.New()

	users := &mocks.UserRepository{}
	users.On("GetByID", mock.Anything, mock.Anything, active.ID).Return(active, nil)
	users.On("GetByID", mock.Anything, mock.Anything, disabled.ID).Return(disabled, nil)
	users.On("GetByID", mock.Anything, mock.Anything, orphan).Return(nil, errors.New("record not found"))

	m := &Middleware{
		userRepo: users,
		auth: stubValidator{tokens: map[string]*services.Claims{
			"good":     {UserID: active.ID, SessionID: "s1"},
			"disabled": {UserID: disabled.ID, SessionID: "s2"},
			"orphan":   {UserID: orphan, SessionID: "s3"},
		}},
		log: logger.New("middleware"),
	}

	app := fiber.New()
	app.Get("/me", m.RequireAuth(), func(c *fiber.Ctx) error {
		user := GetUser(c)
		claims := GetClaims(c)
		require.NotNil(t, user)
		require.NotNil(t, claims)
		ctxUser, _ := c.UserContext().Value(UserKey).(*models.User)
		return c.JSON(fiber.Map{
			"email":     user.Email,
			"sessionId": claims.SessionID,
			"ctxMatch":  ctxUser == user,
		})
	})
	return app, active, disabled
}

func TestRequireAuth(t *testing.T) {
	app, _, _ := setupAuthApp(t)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantMsg    string
	}{
		{name: "bearer token", header: "Bearer good", wantStatus: fiber.StatusOK},
		{name: "lowercase scheme", header: "bearer good", wantStatus: fiber.StatusOK},
		{name: "session cookie", cookie: "good", wantStatus: fiber.StatusOK},
		{name: "no credentials", wantStatus: fiber.StatusUnauthorized, wantMsg: "Authentication required"},
		{name: "wrong scheme", header: "Basic good", wantStatus: fiber.StatusUnauthorized, wantMsg: "Authentication required"},
		{name: "empty bearer", header: "Bearer   ", wantStatus: fiber.StatusUnauthorized, wantMsg: "Authentication required"},
		{name: "unknown token", header: "Bearer nope", wantStatus: fiber.StatusUnauthorized, wantMsg: "Invalid or expired session"},
		{name: "missing user", header: "Bearer orphan", wantStatus: fiber.StatusUnauthorized, wantMsg: "User not found"},
		{name: "disabled user", header: "Bearer disabled", wantStatus: fiber.StatusUnauthorized, wantMsg: "Account disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.wantStatus == fiber.StatusOK {
				assert.Equal(t, "active@example.com", body["email"])
				assert.Equal(t, "s1", body["sessionId"])
				assert.Equal(t, true, body["ctxMatch"])
				return
			}
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestGetUser_Unauthenticated(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, GetUser(c))
		assert.Nil(t, GetClaims(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
