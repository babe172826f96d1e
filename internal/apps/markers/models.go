package markers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Marker is a fixed point of interest placed by an admin.
type Marker struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:50;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Lat         float64        `gorm:"not null" json:"lat"`
	Lng         float64        `gorm:"not null" json:"lng"`
	Category    string         `gorm:"size:30;index" json:"category"`
	CreatedBy   *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Marker) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// --- DTOs ---

type CreateMarkerRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

type MarkerListResponse struct {
	Markers []Marker `json:"markers"`
}
