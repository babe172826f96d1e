package handlers

import (
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/database"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/realtime"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db   *gorm.DB
	area geo.Area
	hub  *realtime.Hub
}

// NewHealthHandler accepts a nil hub when realtime is disabled.
func NewHealthHandler(db *gorm.DB, area geo.Area, hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{db: db, area: area, hub: hub}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	subscribers := 0
	if h.hub != nil {
		subscribers = h.hub.Len()
	}

	return c.JSON(dto.HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		Area:        h.area.Name,
		Subscribers: subscribers,
	})
}
