package handlers

import (
	"cronify/internal/app"
	partnershipController "cronify/internal/controllers/partnerships"
	"cronify/internal/handlers/middleware"
	"cronify/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type PartnershipHandler struct {
	Handler
	partnershipController partnershipController.PartnershipControllerInterface
}

func NewPartnershipHandler(app app.App, router fiber.Router) *PartnershipHandler {
	log := logger.New("handlers").File("partnership_handler")
	return &PartnershipHandler{
		partnershipController: app.Controllers.Partnership,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PartnershipHandler) Register() {
	partnerships := h.router.Group("/partnerships", h.middleware.RequireAuth())

	partnerships.Get("", h.listOwned)
	partnerships.Post("", h.invite)
	partnerships.Get("/invitations", h.listInvitations)
	partnerships.Get("/shared", h.listSharedHabits)
	partnerships.Post("/:id/respond", h.respond)
	partnerships.Patch("/:id/status", h.updateStatus)
	partnerships.Patch("/:id/settings", h.updateSettings)
}

func (h *PartnershipHandler) listOwned(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listOwned")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	partnerships, err := h.partnershipController.ListOwned(c.UserContext(), user)
	if err != nil {
		return respondError(c, log, err, "Failed to list partnerships")
	}
	return respond(c, fiber.StatusOK, partnerships)
}

func (h *PartnershipHandler) invite(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("invite")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req partnershipController.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	partnership, err := h.partnershipController.Invite(c.UserContext(), user, req)
	if err != nil {
		return respondError(c, log, err, "Failed to invite partner")
	}
	return respond(c, fiber.StatusCreated, partnership)
}

func (h *PartnershipHandler) listInvitations(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listInvitations")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	invitations, err := h.partnershipController.ListInvitations(c.UserContext(), user)
	if err != nil {
		return respondError(c, log, err, "Failed to list invitations")
	}
	return respond(c, fiber.StatusOK, invitations)
}

func (h *PartnershipHandler) listSharedHabits(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listSharedHabits")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	shared, err := h.partnershipController.ListSharedHabits(c.UserContext(), user)
	if err != nil {
		return respondError(c, log, err, "Failed to list shared habits")
	}
	return respond(c, fiber.StatusOK, shared)
}

func (h *PartnershipHandler) respond(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("respond")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	partnershipID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid partnership id")
	}

	var req partnershipController.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	partnership, err := h.partnershipController.Respond(c.UserContext(), user, partnershipID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to answer invitation")
	}
	return respond(c, fiber.StatusOK, partnership)
}

func (h *PartnershipHandler) updateStatus(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateStatus")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	partnershipID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid partnership id")
	}

	var req partnershipController.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	partnership, err := h.partnershipController.UpdateStatus(c.UserContext(), user, partnershipID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to update partnership")
	}
	return respond(c, fiber.StatusOK, partnership)
}

func (h *PartnershipHandler) updateSettings(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("updateSettings")

	user := middleware.GetUser(c)
	if user == nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Authentication required")
	}

	partnershipID, ok := parseID(c, "id")
	if !ok {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid partnership id")
	}

	var req partnershipController.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return respondMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	partnership, err := h.partnershipController.UpdateSettings(c.UserContext(), user, partnershipID, req)
	if err != nil {
		return respondError(c, log, err, "Failed to update partnership settings")
	}
	return respond(c, fiber.StatusOK, partnership)
}
