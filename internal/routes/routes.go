package routes

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/handlers"
	"github.com/Bdsolutionconsulting/linkhood/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Handlers groups the core endpoints. Realtime and Storage are optional.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Health    *handlers.HealthHandler
	Legal     *handlers.LegalHandler
	Help      *handlers.HelpHandler
	Config    *handlers.SiteConfigHandler
	Session   *handlers.SessionHandler
	Functions *handlers.FunctionsHandler
	Realtime  *handlers.RealtimeHandler
	Storage   *handlers.StorageHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers, deps *apps.Deps, plugins []apps.Plugin) {
	// Objects of the in-memory store, served outside the rate-limited API
	if h.Storage != nil {
		app.Get("/storage/:bucket/*", h.Storage.Get)
	}

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(middleware.RateLimit(60))

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.Config.GetConfig)
	api.Get("/help", h.Help.Get)
	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/terms", h.Legal.TermsOfService)
	api.Get("/session/bootstrap", middleware.OptionalJWT(cfg), h.Session.Bootstrap)

	// Change notices carry no row content, anonymous subscribers are fine
	if h.Realtime != nil {
		api.Get("/realtime", h.Realtime.Upgrade, h.Realtime.Stream())
	}

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(10))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/confirm", h.Auth.Confirm)
	auth.Post("/resend-confirmation", h.Auth.ResendConfirmation)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	auth.Delete("/account", middleware.JWTProtected(cfg), h.Auth.DeleteAccount)
	auth.Get("/me", middleware.JWTProtected(cfg), h.Auth.Me)

	// Everything registered below requires a valid access token
	protected := api.Group("", middleware.JWTProtected(cfg))

	protected.Get("/me", h.Profile.Get)
	protected.Put("/me", h.Profile.Update)
	protected.Post("/me/photo", h.Profile.UploadPhoto)
	protected.Put("/me/location", h.Profile.UpdateLocation)
	protected.Get("/me/settings", h.Profile.Settings)
	protected.Put("/me/settings", h.Profile.UpdateSettings)

	protected.Post("/functions/send-report-email", h.Functions.SendReportEmail)

	admin := protected.Group("/admin", middleware.AdminRequired(deps.DB, cfg))
	admin.Put("/config/:key", h.Config.SetConfigKey)
	admin.Delete("/config/:key", h.Config.DeleteConfigKey)

	for _, p := range plugins {
		p.RegisterRoutes(protected, deps)
		// If the plugin also implements AdminPlugin, register admin routes
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, deps)
		}
	}
}
