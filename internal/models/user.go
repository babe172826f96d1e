package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AnonymousName is shown for authors without a name or whose account is gone.
const AnonymousName = "Anonyme"

// User is the resident profile and the login identity in one row.
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string         `gorm:"not null" json:"-"`
	Name             string         `gorm:"size:50" json:"name"`
	Role             string         `gorm:"size:20;not null;default:'user'" json:"role"`
	Phone            string         `gorm:"size:20" json:"phone,omitempty"`
	PhotoURL         string         `gorm:"type:text" json:"photo_url,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	LastLat          *float64       `json:"-"`
	LastLng          *float64       `json:"-"`
	LastLocatedAt    *time.Time     `json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return IsAdminRole(u.Role)
}

// DisplayName falls back to AnonymousName for unnamed or unloaded users.
func (u *User) DisplayName() string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return AnonymousName
	}
	return u.Name
}

// IsAdminRole reports whether role may moderate any content.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// DefaultNameFromEmail is the local part of the address.
func DefaultNameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
