package handlers

import (
	"time"

	"cronify/internal/app"
	authController "cronify/internal/controllers/auth"
	"cronify/internal/handlers/middleware"
	"cronify/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
	secureCookie   bool
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		secureCookie:   app.Config.Environment != "development",
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	auth.Post("/register", h.register)
	auth.Post("/login", h.login)

	protected := auth.Group("/", h.middleware.RequireAuth())
	protected.Post("/logout", h.logout)
	protected.Post("/logout-all", h.logoutAll)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("register")

	var req authController.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.authController.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, log, err, "Failed to register")
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return respond(c, fiber.StatusCreated, result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("login")

	var req authController.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.authController.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, log, err, "Failed to log in")
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return respond(c, fiber.StatusOK, result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("logout")

	if err := h.authController.Logout(c.UserContext(), middleware.GetClaims(c)); err != nil {
		return respondError(c, log, err, "Failed to log out")
	}

	h.clearSessionCookie(c)
	return respondMessage(c, fiber.StatusOK, "Logged out")
}

func (h *AuthHandler) logoutAll(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("logoutAll")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	if err := h.authController.LogoutAll(c.UserContext(), user.ID); err != nil {
		return respondError(c, log, err, "Failed to log out")
	}

	h.clearSessionCookie(c)
	return respondMessage(c, fiber.StatusOK, "Logged out of all sessions")
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
