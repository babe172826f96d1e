package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAreasCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Inspect the neighborhood area",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active area as YAML",
		Long: `Print the area loaded from AREA_CONFIG_PATH, or the built-in
default when the variable is empty. The output is a valid area file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			area, err := e.area()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(area); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return cmd
}
