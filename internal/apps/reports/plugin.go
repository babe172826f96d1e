package reports

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type ReportsPlugin struct{}

func New() *ReportsPlugin {
	return &ReportsPlugin{}
}

func (p *ReportsPlugin) ID() string { return "reports" }

func (p *ReportsPlugin) Models() []interface{} {
	return []interface{}{
		&Report{},
		&ReportStatusHistory{},
	}
}

func (p *ReportsPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewReportHandler(NewReportService(deps), deps)

	router.Get("/reports", handler.List)
	router.Post("/reports", handler.Create)
	router.Get("/reports/:id", handler.Get)
	router.Put("/reports/:id/status", handler.UpdateStatus)
	router.Delete("/reports/:id", handler.Delete)
}

func (p *ReportsPlugin) RegisterAdminRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewReportHandler(NewReportService(deps), deps)

	router.Put("/reports/:id/visibility", handler.SetVisibility)
}
