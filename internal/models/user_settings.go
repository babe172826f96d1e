package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MapStyleStreets = "streets-v2"
	MapStyleBasic   = "basic-v2"
	MapStylePastel  = "pastel"
)

var MapStyles = []string{MapStyleStreets, MapStyleBasic, MapStylePastel}

// UserSettings are per-resident preferences. A missing row means defaults.
type UserSettings struct {
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	NotificationsEnabled bool      `gorm:"not null" json:"notifications_enabled"`
	MapStyle             string    `gorm:"size:20;not null" json:"map_style"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func DefaultSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:               userID,
		NotificationsEnabled: true,
		MapStyle:             MapStyleStreets,
	}
}
