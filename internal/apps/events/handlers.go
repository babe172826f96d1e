package events

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	service *EventService
	deps    *apps.Deps
}

func NewEventHandler(service *EventService, deps *apps.Deps) *EventHandler {
	return &EventHandler{service: service, deps: deps}
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	events, err := h.service.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch events")
	}
	return c.JSON(EventListResponse{Events: events, Total: len(events)})
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch event")
	}
	event, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch event")
	}
	return c.JSON(EventResponse{Event: event})
}

// Create accepts JSON or a multipart form with an optional "photo" file.
func (h *EventHandler) Create(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to create event")
	}

	var req CreateEventRequest
	var photo *apps.Photo
	if apps.IsMultipart(c) {
		req = CreateEventRequest{
			Title:   c.FormValue("title"),
			Content: c.FormValue("content"),
			Date:    c.FormValue("date"),
			Lat:     apps.FormFloat(c, "lat"),
			Lng:     apps.FormFloat(c, "lng"),
		}
		if photo, err = apps.FormPhoto(c, "photo"); err != nil {
			return dto.Fail(c, fiber.StatusBadRequest, "Invalid multipart form")
		}
	} else if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	event, outcome, err := h.service.Create(c.UserContext(), actor, req, photo)
	if err != nil {
		return apps.WriteError(c, err, "Failed to create event")
	}
	return c.Status(fiber.StatusCreated).JSON(EventResponse{Event: event, Notification: outcome})
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete event")
	}
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete event")
	}

	outcome, err := h.service.Delete(c.UserContext(), actor, id)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete event")
	}
	return c.JSON(DeleteEventResponse{Message: "Événement supprimé", Notification: outcome})
}
