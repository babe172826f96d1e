package apps

import (
	"context"

	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/Bdsolutionconsulting/linkhood/internal/retry"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier emails a resident about their own content.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, msg notify.Message) notify.Outcome
}

// Deps is what every feature receives when it mounts its routes.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Area     geo.Area
	Store    storage.Store
	Notifier Notifier
	Filter   *services.ContentFilter
	Retry    retry.Policy
	Admins   identity.AdminList
}

// MaxUpload is the configured photo size limit in bytes.
func (d *Deps) MaxUpload() int64 {
	if d.Config == nil {
		return 0
	}
	return int64(d.Config.MaxUploadBytes)
}

// Plugin defines the interface every feature must implement.
type Plugin interface {
	// ID returns the unique feature identifier, used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts feature routes on the given Fiber group.
	// The group is already prefixed with /api and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, deps *Deps)
}

// AdminPlugin extends Plugin with admin-specific route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has both JWT and Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, deps *Deps)
}
