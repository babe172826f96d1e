package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/reports"
	"github.com/Bdsolutionconsulting/linkhood/internal/bootstrap"
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/database"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/handlers"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/logging"
	"github.com/Bdsolutionconsulting/linkhood/internal/middleware"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/Bdsolutionconsulting/linkhood/internal/realtime"
	"github.com/Bdsolutionconsulting/linkhood/internal/retry"
	"github.com/Bdsolutionconsulting/linkhood/internal/routes"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	area, err := geo.LoadArea(cfg.AreaConfigPath)
	if err != nil {
		slog.Error("failed to load area", "path", cfg.AreaConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("area loaded", "resource", area.Name)

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	plugins := bootstrap.Plugins()
	if err := bootstrap.Migrate(ctx, database.DB, plugins); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, cfg.LogLevel),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	store, memStore, err := bootstrap.Store(ctx, cfg)
	if err != nil {
		slog.Error("object storage setup failed", "error", err)
		os.Exit(1)
	}

	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, emails will be skipped")
	}
	mailer := notify.NewResendClient(cfg.ResendAPIKey, cfg.ResendAPIURL, cfg.EmailFrom, cfg.EmailTimeout)
	dispatcher := notify.NewDispatcher(database.DB, mailer, cfg.PublicAppURL)
	admins := identity.ParseAdminList(cfg.AdminEmails, cfg.AdminUserIDs)

	fetchRetry := retry.Policy{Attempts: cfg.FetchRetryAttempts, Delay: cfg.FetchRetryDelay}

	// Realtime change notifications
	var hub *realtime.Hub
	if cfg.RealtimeEnabled {
		hub = realtime.NewHub(cfg.RealtimeDebounce)
		go realtime.NewListener(cfg.URL(), hub, fetchRetry).Run(ctx)
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg, dispatcher)
	profileService := services.NewProfileService(database.DB, store, int64(cfg.MaxUploadBytes))

	deps := &apps.Deps{
		DB:       database.DB,
		Config:   cfg,
		Area:     area,
		Store:    store,
		Notifier: dispatcher,
		Filter:   services.NewContentFilter(cfg.ContentFilterEnabled),
		Retry:    fetchRetry,
		Admins:   admins,
	}

	// Handlers
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Profile:   handlers.NewProfileHandler(profileService),
		Health:    handlers.NewHealthHandler(database.DB, area, hub),
		Legal:     handlers.NewLegalHandler(cfg.SupportEmail),
		Help:      handlers.NewHelpHandler(cfg.SupportEmail),
		Config:    handlers.NewSiteConfigHandler(database.DB),
		Session:   handlers.NewSessionHandler(profileService),
		Functions: handlers.NewFunctionsHandler(database.DB, dispatcher, admins),
	}
	if hub != nil {
		h.Realtime = handlers.NewRealtimeHandler(hub)
	}
	if memStore != nil {
		h.Storage = handlers.NewStorageHandler(memStore)
	}

	// Seed default site config values
	slog.Info("seeding site config defaults")
	if err := h.Config.SeedDefaults(ctx, cfg.SupportEmail, reports.Categories); err != nil {
		slog.Error("site config seed failed", "error", err)
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadBytes + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, h, deps, plugins)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	if hub != nil {
		hub.Close()
	}
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
