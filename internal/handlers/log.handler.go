package handlers

import (
	"cronify/internal/app"
	logController "cronify/internal/controllers/logs"
	"cronify/internal/handlers/middleware"
	"cronify/internal/logger"
	"cronify/internal/types"

	"github.com/gofiber/fiber/v2"
)

type LogHandler struct {
	Handler
	logController logController.LogControllerInterface
}

func NewLogHandler(app app.App, router fiber.Router) *LogHandler {
	log := logger.New("handlers").File("log_handler")
	return &LogHandler{
		logController: app.Controllers.Log,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *LogHandler) Register() {
	logs := h.router.Group("/:id/logs")

	logs.Get("", h.listLogs)
	logs.Put("", h.upsertLog)
	logs.Delete("/:date", h.deleteLog)
}

func (h *LogHandler) listLogs(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listLogs")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	var dates types.DateRange
	if err := c.QueryParser(&dates); err != nil {
		log.Warn("Invalid query", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid query")
	}

	logs, err := h.logController.List(c.UserContext(), user, habitID, dates)
	if err != nil {
		return respondError(c, log, err, "Failed to list logs")
	}
	return respond(c, fiber.StatusOK, logs)
}

func (h *LogHandler) upsertLog(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("upsertLog")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	var req logController.UpsertLogRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	saved, err := h.logController.Upsert(c.UserContext(), user, habitID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to save log")
	}
	return respond(c, fiber.StatusOK, saved)
}

func (h *LogHandler) deleteLog(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("deleteLog")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	if err := h.logController.Delete(c.UserContext(), user, habitID, c.Params("date")); err != nil {
		return respondError(c, log, err, "Failed to delete log")
	}
	return respondMessage(c, fiber.StatusOK, "Log deleted")
}
