package apps

import (
	"errors"
	"log/slog"

	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
)

// CurrentActor resolves the caller with their stored role, or admin when
// the configuration lists them.
func CurrentActor(c *fiber.Ctx, deps *Deps) (identity.Actor, error) {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return identity.Actor{}, identity.ErrUnknownActor
	}
	return identity.LoadActor(c.UserContext(), deps.DB, userID, deps.Admins)
}

// WriteError maps the errors shared by every feature to a response.
// Anything unrecognised is logged and answered with fallback as a 500.
func WriteError(c *fiber.Ctx, err error, fallback string) error {
	var rejection *services.Rejection
	switch {
	case validation.IsValidation(err):
		return dto.Invalid(c, err)
	case errors.As(err, &rejection):
		return dto.Fail(c, fiber.StatusBadRequest, rejection.Message)
	case errors.Is(err, ErrInvalidID):
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid id")
	case errors.Is(err, ErrNotFound):
		return dto.Fail(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, identity.ErrUnknownActor):
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, identity.ErrForbidden):
		return dto.Fail(c, fiber.StatusForbidden, "You are not allowed to do this")
	case errors.Is(err, storage.ErrUnsupportedType):
		return dto.Fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrTooLarge):
		return dto.Fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}

	slog.Error(fallback, "action", c.Route().Path, "request_id", requestID(c), "error", err)
	return dto.Fail(c, fiber.StatusInternalServerError, fallback)
}

// ParamID parses the :id route parameter.
func ParamID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
