package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnknownActor = errors.New("user not found")
	ErrForbidden    = errors.New("forbidden")
)

// Actor is the caller of a mutating operation. Role is read from the
// database, raised to admin when the account is in the configured admin
// list; a role claim in the token is never trusted.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string
}

func LoadActor(ctx context.Context, db *gorm.DB, userID uuid.UUID, admins AdminList) (Actor, error) {
	var user models.User
	if err := db.WithContext(ctx).Select("id", "email", "role").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, ErrUnknownActor
		}
		return Actor{}, fmt.Errorf("load actor: %w", err)
	}
	actor := Actor{ID: user.ID, Email: user.Email, Role: user.Role}
	if !actor.IsAdmin() && admins.Contains(user.ID, user.Email) {
		actor.Role = models.RoleAdmin
	}
	return actor, nil
}

func (a Actor) IsAdmin() bool {
	return models.IsAdminRole(a.Role)
}

// CanModify is true for admins and for the owner of the resource.
func (a Actor) CanModify(ownerID uuid.UUID) bool {
	return a.IsAdmin() || (a.ID != uuid.Nil && a.ID == ownerID)
}

// Authorize returns ErrForbidden unless CanModify holds.
func (a Actor) Authorize(ownerID uuid.UUID) error {
	if !a.CanModify(ownerID) {
		return ErrForbidden
	}
	return nil
}
