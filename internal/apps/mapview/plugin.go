package mapview

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type MapPlugin struct{}

func New() *MapPlugin {
	return &MapPlugin{}
}

func (p *MapPlugin) ID() string { return "map" }

// Models is empty: the layers belong to their own features.
func (p *MapPlugin) Models() []interface{} {
	return nil
}

func (p *MapPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	svc := NewMapService(deps)

	router.Get("/map", func(c *fiber.Ctx) error {
		overview, err := svc.Overview(c.UserContext(), c.Query("status"))
		if err != nil {
			return apps.WriteError(c, err, "Failed to load map")
		}
		return c.JSON(overview)
	})
}
