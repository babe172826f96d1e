package events

import (
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DateLayout is how event dates travel over the wire.
const DateLayout = "2006-01-02"

type Event struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string         `gorm:"size:50;not null" json:"title"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Date       datatypes.Date `gorm:"not null;index" json:"date"`
	Location   string         `gorm:"size:64;not null" json:"location"`
	Lat        float64        `gorm:"not null" json:"lat"`
	Lng        float64        `gorm:"not null" json:"lng"`
	PhotoURL   string         `gorm:"type:text" json:"photo_url,omitempty"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *models.User   `gorm:"foreignKey:UserID" json:"-"`
	AuthorName string         `gorm:"-" json:"author_name"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Day returns the event date formatted with DateLayout.
func (e *Event) Day() string {
	return time.Time(e.Date).Format(DateLayout)
}

// --- DTOs ---

type CreateEventRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Date    string   `json:"date"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type EventResponse struct {
	Event        *Event         `json:"event"`
	Notification notify.Outcome `json:"notification,omitempty"`
}

type EventListResponse struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}

type DeleteEventResponse struct {
	Message      string         `json:"message"`
	Notification notify.Outcome `json:"notification"`
}
