package markers

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MarkerHandler struct {
	service *MarkerService
}

func NewMarkerHandler(service *MarkerService) *MarkerHandler {
	return &MarkerHandler{service: service}
}

func (h *MarkerHandler) List(c *fiber.Ctx) error {
	markers, err := h.service.List(c.UserContext(), c.QueryInt("limit", DefaultLimit))
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch markers")
	}
	return c.JSON(MarkerListResponse{Markers: markers})
}

func (h *MarkerHandler) Create(c *fiber.Ctx) error {
	var req CreateMarkerRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var createdBy *uuid.UUID
	if id, err := identity.GetUserID(c); err == nil {
		createdBy = &id
	}

	marker, err := h.service.Create(c.UserContext(), createdBy, req)
	if err != nil {
		return apps.WriteError(c, err, "Failed to create marker")
	}
	return c.Status(fiber.StatusCreated).JSON(marker)
}

func (h *MarkerHandler) Delete(c *fiber.Ctx) error {
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete marker")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return apps.WriteError(c, err, "Failed to delete marker")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
