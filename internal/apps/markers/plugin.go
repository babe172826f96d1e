package markers

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type MarkersPlugin struct{}

func New() *MarkersPlugin {
	return &MarkersPlugin{}
}

func (p *MarkersPlugin) ID() string { return "markers" }

func (p *MarkersPlugin) Models() []interface{} {
	return []interface{}{&Marker{}}
}

func (p *MarkersPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewMarkerHandler(NewMarkerService(deps.DB, deps.Area))

	router.Get("/markers", handler.List)
}

func (p *MarkersPlugin) RegisterAdminRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewMarkerHandler(NewMarkerService(deps.DB, deps.Area))

	router.Post("/markers", handler.Create)
	router.Delete("/markers/:id", handler.Delete)
}
