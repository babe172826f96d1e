package reports

import (
	"errors"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service *ReportService
	deps    *apps.Deps
}

func NewReportHandler(service *ReportService, deps *apps.Deps) *ReportHandler {
	return &ReportHandler{service: service, deps: deps}
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	filter := ListFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", 0),
	}
	if c.QueryBool("mine", false) {
		userID, err := identity.GetUserID(c)
		if err != nil {
			return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		filter.Owner = &userID
	}

	reports, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch reports")
	}
	return c.JSON(ReportListResponse{Reports: reports, Total: len(reports)})
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch report")
	}
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch report")
	}

	detail, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch report")
	}
	return c.JSON(detail)
}

// Create accepts JSON or a multipart form with an optional "photo" file.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to create report")
	}

	var req CreateReportRequest
	var photo *apps.Photo
	if apps.IsMultipart(c) {
		req = CreateReportRequest{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			Lat:         apps.FormFloat(c, "lat"),
			Lng:         apps.FormFloat(c, "lng"),
		}
		if photo, err = apps.FormPhoto(c, "photo"); err != nil {
			return dto.Fail(c, fiber.StatusBadRequest, "Invalid multipart form")
		}
	} else if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	report, outcome, err := h.service.Create(c.UserContext(), actor, req, photo)
	if err != nil {
		return apps.WriteError(c, err, "Failed to create report")
	}
	return c.Status(fiber.StatusCreated).JSON(ReportResponse{Report: report, Notification: outcome})
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to update status")
	}
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to update status")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	report, outcome, err := h.service.UpdateStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return dto.Fail(c, fiber.StatusConflict, err.Error())
		}
		return apps.WriteError(c, err, "Failed to update status")
	}
	return c.JSON(ReportResponse{Report: report, Notification: outcome})
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete report")
	}
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete report")
	}

	outcome, err := h.service.Delete(c.UserContext(), actor, id)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete report")
	}
	return c.JSON(DeleteReportResponse{Message: "Signalement supprimé", Notification: outcome})
}

func (h *ReportHandler) SetVisibility(c *fiber.Ctx) error {
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to update visibility")
	}

	var req VisibilityRequest
	if err := c.BodyParser(&req); err != nil || req.Visible == nil {
		return dto.Fail(c, fiber.StatusBadRequest, "visible is required")
	}

	report, err := h.service.SetVisibility(c.UserContext(), id, *req.Visible)
	if err != nil {
		return apps.WriteError(c, err, "Failed to update visibility")
	}
	return c.JSON(ReportResponse{Report: report})
}
