package handlers

import (
	"cronify/internal/app"
	userController "cronify/internal/controllers/users"
	"cronify/internal/handlers/middleware"
	"cronify/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	userController userController.UserControllerInterface
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		userController: app.Controllers.User,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users", h.middleware.RequireAuth())

	users.Get("/me", h.getMe)
	users.Patch("/me", h.updateProfile)
	users.Get("/me/settings", h.getSettings)
	users.Patch("/me/settings", h.updateSettings)
}

func (h *UserHandler) getMe(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getMe")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	me, err := h.userController.GetMe(c.UserContext(), user)
	if err != nil {
		return respondError(c, log, err, "Failed to load user")
	}
	return respond(c, fiber.StatusOK, me)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateProfile")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req userController.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	profile, err := h.userController.UpdateProfile(c.UserContext(), user, req)
	if err != nil {
		return respondError(c, log, err, "Failed to update profile")
	}
	return respond(c, fiber.StatusOK, profile)
}

func (h *UserHandler) getSettings(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getSettings")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	settings, err := h.userController.GetSettings(c.UserContext(), user)
	if err != nil {
		return respondError(c, log, err, "Failed to load settings")
	}
	return respond(c, fiber.StatusOK, settings)
}

func (h *UserHandler) updateSettings(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateSettings")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req userController.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	settings, err := h.userController.UpdateSettings(c.UserContext(), user, req)
	if err != nil {
		return respondError(c, log, err, "Failed to update settings")
	}
	return respond(c, fiber.StatusOK, settings)
}
