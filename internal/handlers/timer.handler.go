package handlers

import (
	"cronify/internal/app"
	timerController "cronify/internal/controllers/timer"
	"cronify/internal/handlers/middleware"
	"cronify/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type TimerHandler struct {
	Handler
	timerController timerController.TimerControllerInterface
}

func NewTimerHandler(app app.App, router fiber.Router) *TimerHandler {
	log := logger.New("handlers").File("timer_handler")
	return &TimerHandler{
		timerController: app.Controllers.Timer,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *TimerHandler) Register() {
	habits := h.router.Group("/:id")

	habits.Get("/timer", h.getTimer)
	habits.Post("/timer/reset", h.resetTimer)
	habits.Get("/relapses", h.listRelapses)
}

func (h *TimerHandler) getTimer(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getTimer")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	snapshot, err := h.timerController.Get(c.UserContext(), user, habitID)
	if err != nil {
		return respondError(c, log, err, "Failed to load timer")
	}
	return respond(c, fiber.StatusOK, snapshot)
}

func (h *TimerHandler) resetTimer(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("resetTimer")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	var req timerController.ResetTimerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Warn("Invalid request body", "error", err)
			return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	result, err := h.timerController.Reset(c.UserContext(), user, habitID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to reset timer")
	}
	return respond(c, fiber.StatusOK, result)
}

func (h *TimerHandler) listRelapses(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listRelapses")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	relapses, err := h.timerController.ListRelapses(c.UserContext(), user, habitID)
	if err != nil {
		return respondError(c, log, err, "Failed to list relapses")
	}
	return respond(c, fiber.StatusOK, relapses)
}
