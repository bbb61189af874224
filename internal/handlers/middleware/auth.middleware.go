package middleware

import (
	"context"
	"strings"

	"cronify/internal/constants"
	"cronify/internal/models"
	"cronify/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthContextKey string

const (
	UserKey        AuthContextKey = "user"
	UserKeyFiber                  = constants.UserLocalsKey
	ClaimsKeyFiber                = constants.ClaimsLocalsKey

	// SessionCookie carries the token for browser clients.
	SessionCookie = constants.SessionCookieName
)

// RequireAuth accepts a bearer token or the session cookie, validates it
// against the session store and loads the active user.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := m.log.TraceFromContext(c.UserContext()).Function("RequireAuth")

		token, ok := extractToken(c)
		if !ok {
			log.Info("missing credentials")
			return unauthorized(c, "Authentication required")
		}

		claims, err := m.auth.ValidateToken(c.UserContext(), token)
		if err != nil {
			log.Info("token validation failed", "error", err.Error())
			return unauthorized(c, "Invalid or expired session")
		}

		user, err := m.userRepo.GetByID(c.UserContext(), m.DB.SQL, claims.UserID)
		if err != nil {
			log.Info("user not found for token", "userID", claims.UserID, "error", err.Error())
			return unauthorized(c, "User not found")
		}
		if !user.IsActive {
			log.Info("inactive user rejected", "userID", user.ID)
			return unauthorized(c, "Account disabled")
		}

		c.Locals(UserKeyFiber, user)
		c.Locals(ClaimsKeyFiber, claims)

		ctx := context.WithValue(c.UserContext(), UserKey, user)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}

	token := c.Cookies(SessionCookie)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func GetClaims(c *fiber.Ctx) *services.Claims {
	claims, ok := c.Locals(ClaimsKeyFiber).(*services.Claims)
	if !ok {
		return nil
	}
	return claims
}
