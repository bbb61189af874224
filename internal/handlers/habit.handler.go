package handlers

import (
	"bytes"
	"fmt"

	"cronify/internal/app"
	habitController "cronify/internal/controllers/habits"
	"cronify/internal/handlers/middleware"
	"cronify/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type HabitHandler struct {
	Handler
	habitController habitController.HabitControllerInterface
}

func NewHabitHandler(app app.App, router fiber.Router) *HabitHandler {
	log := logger.New("handlers").File("habit_handler")
	return &HabitHandler{
		habitController: app.Controllers.Habit,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

// Register expects router to be the authenticated /habits group.
func (h *HabitHandler) Register() {
	habits := h.router

	habits.Get("", h.listHabits)
	habits.Post("", h.createHabit)
	habits.Get("/:id", h.getHabit)
	habits.Patch("/:id", h.updateHabit)
	habits.Delete("/:id", h.deleteHabit)
	habits.Get("/:id/stats", h.getStats)
	habits.Get("/:id/calendar", h.getCalendar)
	habits.Get("/:id/week", h.getWeek)
	habits.Get("/:id/report.pdf", h.getReport)
}

func (h *HabitHandler) listHabits(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listHabits")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habits, err := h.habitController.List(c.UserContext(), user)
	if err != nil {
		return respondError(c, log, err, "Failed to list habits")
	}
	return respond(c, fiber.StatusOK, habits)
}

func (h *HabitHandler) createHabit(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("createHabit")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req habitController.HabitRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	habit, err := h.habitController.Create(c.UserContext(), user, req)
	if err != nil {
		return respondError(c, log, err, "Failed to create habit")
	}
	return respond(c, fiber.StatusCreated, habit)
}

func (h *HabitHandler) getHabit(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getHabit")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	habit, err := h.habitController.Get(c.UserContext(), user, habitID)
	if err != nil {
		return respondError(c, log, err, "Failed to load habit")
	}
	return respond(c, fiber.StatusOK, habit)
}

func (h *HabitHandler) updateHabit(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateHabit")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	var req habitController.HabitRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	habit, err := h.habitController.Update(c.UserContext(), user, habitID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to update habit")
	}
	return respond(c, fiber.StatusOK, habit)
}

func (h *HabitHandler) deleteHabit(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("deleteHabit")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	if err := h.habitController.Delete(c.UserContext(), user, habitID); err != nil {
		return respondError(c, log, err, "Failed to delete habit")
	}
	return respondMessage(c, fiber.StatusOK, "Habit deleted")
}

func (h *HabitHandler) getStats(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getStats")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	stats, err := h.habitController.Stats(c.UserContext(), user, habitID)
	if err != nil {
		return respondError(c, log, err, "Failed to load habit stats")
	}
	return respond(c, fiber.StatusOK, stats)
}

func (h *HabitHandler) getCalendar(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getCalendar")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	year, err := optionalQueryInt(c, log, "year")
	if err != nil {
		return respondError(c, log, err, "Invalid year")
	}
	month, err := optionalQueryInt(c, log, "month")
	if err != nil {
		return respondError(c, log, err, "Invalid month")
	}

	calendar, err := h.habitController.Calendar(c.UserContext(), user, habitID, year, month)
	if err != nil {
		return respondError(c, log, err, "Failed to load calendar")
	}
	return respond(c, fiber.StatusOK, calendar)
}

func (h *HabitHandler) getWeek(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getWeek")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	week, err := h.habitController.Week(c.UserContext(), user, habitID)
	if err != nil {
		return respondError(c, log, err, "Failed to load week")
	}
	return respond(c, fiber.StatusOK, week)
}

func (h *HabitHandler) getReport(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getReport")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	habitID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid habit id")
	}

	var buf bytes.Buffer
	if err := h.habitController.Report(c.UserContext(), user, habitID, &buf); err != nil {
		return respondError(c, log, err, "Failed to render report")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="habit-%s.pdf"`, habitID))
	return c.Send(buf.Bytes())
}
