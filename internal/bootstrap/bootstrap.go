// Package bootstrap assembles the pieces shared by the server and the
// admin CLI: the feature list, schema migration and object storage.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/events"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/forum"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/mapview"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/markers"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/reports"
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/database"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"gorm.io/gorm"
)

// Plugins returns every feature mounted by the server.
func Plugins() []apps.Plugin {
	return []apps.Plugin{
		reports.New(),
		events.New(),
		forum.New(),
		markers.New(),
		mapview.New(),
	}
}

// MigrateModels creates or updates the tables of the shared models and of
// every plugin.
func MigrateModels(db *gorm.DB, plugins []apps.Plugin) error {
	if err := database.MigrateShared(db); err != nil {
		return fmt.Errorf("shared migration failed: %w", err)
	}
	for _, p := range plugins {
		models := p.Models()
		if len(models) == 0 {
			continue
		}
		if err := database.MigrateModels(db, models); err != nil {
			return fmt.Errorf("plugin %s migration failed: %w", p.ID(), err)
		}
		slog.Info("plugin migrated", "resource", p.ID(), "models", len(models))
	}
	return nil
}

// Migrate runs MigrateModels and then the SQL migrations, which need the
// tables to exist.
func Migrate(ctx context.Context, db *gorm.DB, plugins []apps.Plugin) error {
	if err := MigrateModels(db, plugins); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return database.RunMigrations(ctx, sqlDB)
}

// Store returns the S3 store when an endpoint is configured. Otherwise it
// returns an in-memory store, also handed back so its objects can be served.
func Store(ctx context.Context, cfg *config.Config) (storage.Store, *storage.MemoryStore, error) {
	if cfg.S3Endpoint == "" {
		slog.Warn("S3_ENDPOINT not set, uploads are kept in memory")
		mem := storage.NewMemoryStore(cfg.StoragePublicURL)
		return mem, mem, nil
	}

	s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.StoragePublicURL,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s3Store.EnsureBuckets(ctx); err != nil {
		return nil, nil, err
	}
	return s3Store, nil, nil
}
