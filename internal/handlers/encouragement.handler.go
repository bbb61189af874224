package handlers

import (
	"cronify/internal/app"
	encouragementController "cronify/internal/controllers/encouragements"
	"cronify/internal/handlers/middleware"
	"cronify/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type EncouragementHandler struct {
	Handler
	encouragementController encouragementController.EncouragementControllerInterface
}

func NewEncouragementHandler(app app.App, router fiber.Router) *EncouragementHandler {
	log := logger.New("handlers").File("encouragement_handler")
	return &EncouragementHandler{
		encouragementController: app.Controllers.Encouragement,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *EncouragementHandler) Register() {
	encouragements := h.router.Group("/:id/encouragements")

	encouragements.Get("", h.listEncouragements)
	encouragements.Post("", h.sendEncouragement)
}

func (h *EncouragementHandler) listEncouragements(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listEncouragements")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	encouragements, err := h.encouragementController.List(c.UserContext(), user, habitID)
	if err != nil {
		return respondError(c, log, err, "Failed to list encouragements")
	}
	return respond(c, fiber.StatusOK, encouragements)
}

func (h *EncouragementHandler) sendEncouragement(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("sendEncouragement")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	var req encouragementController.SendRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	encouragement, err := h.encouragementController.Send(c.UserContext(), user, habitID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to send encouragement")
	}
	return respond(c, fiber.StatusCreated, encouragement)
}
