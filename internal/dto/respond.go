package dto

import (
	"errors"

	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/gofiber/fiber/v2"
)

// Fail writes an ErrorResponse with the given status.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: true, Message: message})
}

// Invalid writes a 400 carrying the field of a validation error.
func Invalid(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: verr.Message, Field: verr.Field})
	}
	return Fail(c, fiber.StatusBadRequest, err.Error())
}
