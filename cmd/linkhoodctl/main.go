// Command linkhoodctl runs operator tasks against the Linkhood database:
// migrations, role changes and the admin-managed map markers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/bootstrap"
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/database"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env carries what commands need. Tests swap openDB and migrate.
type env struct {
	cfg     *config.Config
	openDB  func(cfg *config.Config) (*gorm.DB, error)
	migrate func(ctx context.Context, db *gorm.DB, plugins []apps.Plugin) error
}

func defaultEnv() *env {
	return &env{
		cfg: config.Load(),
		openDB: func(cfg *config.Config) (*gorm.DB, error) {
			if err := database.Connect(cfg); err != nil {
				return nil, err
			}
			return database.DB, nil
		},
		migrate: bootstrap.Migrate,
	}
}

func (e *env) area() (geo.Area, error) {
	return geo.LoadArea(e.cfg.AreaConfigPath)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "linkhoodctl",
		Short:         "Operate a Linkhood deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(e),
		newPromoteCmd(e),
		newMarkerCmd(e),
		newAreasCmd(e),
	)
	return root
}

func main() {
	e := defaultEnv()
	logging.Setup(e.cfg.LogLevel)

	if err := newRootCmd(e).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
