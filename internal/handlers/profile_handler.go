package handlers

import (
	"errors"
	"log/slog"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.profileService.Get(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Failed to load profile")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.profileService.Update(c.UserContext(), userID, &req)
	if err != nil {
		return h.fail(c, err, "Failed to update profile")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *ProfileHandler) UploadPhoto(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "photo file is required")
	}
	photo := apps.NewPhoto(fh)

	f, err := fh.Open()
	if err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid upload")
	}
	defer f.Close()

	url, err := h.profileService.UploadPhoto(c.UserContext(), userID, f, photo.Size, photo.ContentType)
	if err != nil {
		return h.fail(c, err, "Failed to upload photo")
	}
	return c.JSON(dto.PhotoResponse{PhotoURL: url})
}

func (h *ProfileHandler) UpdateLocation(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.LocationRequest
	if err := c.BodyParser(&req); err != nil || req.Lat == nil || req.Lng == nil {
		return dto.Fail(c, fiber.StatusBadRequest, "lat and lng are required")
	}

	updated, err := h.profileService.UpdateLocation(c.UserContext(), userID, geo.Point{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		return h.fail(c, err, "Failed to store location")
	}
	return c.JSON(dto.LocationResponse{Updated: updated})
}

func (h *ProfileHandler) Settings(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	settings, err := h.profileService.Settings(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Failed to load settings")
	}
	return c.JSON(settings)
}

func (h *ProfileHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	settings, err := h.profileService.UpdateSettings(c.UserContext(), userID, &req)
	if err != nil {
		return h.fail(c, err, "Failed to save settings")
	}
	return c.JSON(settings)
}

func (h *ProfileHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case validation.IsValidation(err):
		return dto.Invalid(c, err)
	case errors.Is(err, services.ErrUserNotFound):
		return dto.Fail(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, storage.ErrUnsupportedType):
		return dto.Fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrTooLarge):
		return dto.Fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}
	slog.Error(fallback, "action", c.Route().Path, "error", err)
	return dto.Fail(c, fiber.StatusInternalServerError, fallback)
}
