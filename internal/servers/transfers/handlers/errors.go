package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps a transfer error to its HTTP status. Domain rejections are
// client errors; storage failures are 503 so the client may retry, nothing was
// committed.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, models.ErrAccountNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrDuplicateKey):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrConcurrencyConflict),
		errors.Is(err, models.ErrStorageUnavailable),
		errors.Is(err, models.ErrCommitFailed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal error"
	}

	return c.Status(status).JSON(ErrorResponse{Error: models.ErrorKind(err), Message: message})
}

func badRequest(c *fiber.Ctx, kind, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: kind, Message: message})
}
