package main

import (
	"fmt"

	"github.com/Bdsolutionconsulting/linkhood/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table, trigger and function",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := e.openDB(e.cfg)
			if err != nil {
				return err
			}
			plugins := bootstrap.Plugins()
			if err := e.migrate(cmd.Context(), db, plugins); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated shared models and %d plugins\n", len(plugins))
			return nil
		},
	}
}
