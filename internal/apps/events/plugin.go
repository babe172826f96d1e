package events

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type EventsPlugin struct{}

func New() *EventsPlugin {
	return &EventsPlugin{}
}

func (p *EventsPlugin) ID() string { return "events" }

func (p *EventsPlugin) Models() []interface{} {
	return []interface{}{&Event{}}
}

func (p *EventsPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewEventHandler(NewEventService(deps), deps)

	router.Get("/events", handler.List)
	router.Post("/events", handler.Create)
	router.Get("/events/:id", handler.Get)
	router.Delete("/events/:id", handler.Delete)
}
