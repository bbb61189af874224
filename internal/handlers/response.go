package handlers

import (
	"errors"
	"strconv"
	"strings"

	"cronify/internal/logger"
	"cronify/internal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": status < fiber.StatusBadRequest,
		"message": message,
	})
}

// respondError maps sentinel errors to status codes. Client errors carry the
// error text; anything else is logged and answered with fallback.
func respondError(c *fiber.Ctx, log logger.Logger, err error, fallback string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Er(fallback, err)
		return respondMessage(c, status, fallback)
	}
	return respondMessage(c, status, clientMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, types.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, types.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, types.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// clientMessage strips the "sentinel: " prefix added by wrapping.
func clientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		types.ErrValidation,
		types.ErrUnauthorized,
		types.ErrForbidden,
		types.ErrNotFound,
		types.ErrConflict,
	} {
		if trimmed, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return trimmed
		}
	}
	return msg
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	return id, err == nil
}

// optionalQueryInt reads an integer query param. Absent means 0; anything
// that is not a number is a validation error.
func optionalQueryInt(c *fiber.Ctx, log logger.Logger, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, log.ErrorWithType(types.ErrValidation, key+" must be a number", key, raw)
	}
	return value, nil
}
