package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var roles = []string{models.RoleUser, models.RoleAdmin, models.RoleSuperAdmin}

func newPromoteCmd(e *env) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change the role of a user",
		Long: `Change the role of the user registered with --email.

Roles: user, admin, super_admin. Use --role user to demote.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return errors.New("--email is required")
			}
			if !validRole(role) {
				return fmt.Errorf("unknown role %q, expected one of %s", role, strings.Join(roles, ", "))
			}

			db, err := e.openDB(e.cfg)
			if err != nil {
				return err
			}

			res := db.WithContext(cmd.Context()).Model(&models.User{}).Where("email = ?", email).Update("role", role)
			if res.Error != nil {
				return fmt.Errorf("update role: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("no user registered with %s: %w", email, gorm.ErrRecordNotFound)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user")
	cmd.Flags().StringVar(&role, "role", models.RoleAdmin, "role to grant")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func validRole(role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
