package middleware

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRequired lets a request through when any of these hold:
// 1. the X-Admin-Token header matches the configured token
// 2. the caller's email or id is in the configured admin lists
// 3. the caller's stored role is admin or super_admin
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	admins := identity.ParseAdminList(cfg.AdminEmails, cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			if c.Get("X-Admin-Token") == cfg.AdminToken {
				return c.Next()
			}
		}

		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if admins.Contains(userID, identity.GetEmail(c)) {
			return c.Next()
		}

		if hasAdminRole(db, userID) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func hasAdminRole(db *gorm.DB, userID uuid.UUID) bool {
	var user models.User
	if err := db.Select("id", "role").First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	return user.IsAdmin()
}
