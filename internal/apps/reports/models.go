package reports

import (
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusReported   = "signalé"
	StatusInProgress = "en cours"
	StatusResolved   = "résolu"
)

var Statuses = []string{StatusReported, StatusInProgress, StatusResolved}

var Categories = []string{"Propreté", "Sécurité", "Autre"}

type Report struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:50;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Category    string         `gorm:"size:30;not null;index" json:"category"`
	Lat         float64        `gorm:"not null" json:"lat"`
	Lng         float64        `gorm:"not null" json:"lng"`
	PhotoURL    string         `gorm:"type:text" json:"photo_url,omitempty"`
	Status      string         `gorm:"size:20;not null;default:'signalé';index" json:"status"`
	Visible     bool           `gorm:"not null;default:true" json:"visible"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *models.User   `gorm:"foreignKey:UserID" json:"-"`
	AuthorName  string         `gorm:"-" json:"author_name"`
	ResolvedBy  *uuid.UUID     `gorm:"type:uuid" json:"resolved_by"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusReported
	}
	return nil
}

func (r *Report) setAuthor() {
	r.AuthorName = r.User.DisplayName()
}

// ReportStatusHistory is append-only: rows are inserted with a status
// change and never touched again.
type ReportStatusHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	OldStatus string    `gorm:"size:20;not null" json:"old_status"`
	NewStatus string    `gorm:"size:20;not null" json:"new_status"`
	ChangedBy uuid.UUID `gorm:"type:uuid;not null" json:"changed_by"`
	ChangedAt time.Time `gorm:"not null;index" json:"changed_at"`
	Comment   string    `gorm:"type:text" json:"comment"`
}

func (ReportStatusHistory) TableName() string {
	return "report_status_history"
}

func (h *ReportStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// --- DTOs ---

type CreateReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type VisibilityRequest struct {
	Visible *bool `json:"visible"`
}

// ListFilter narrows a report listing. Empty fields match everything.
// Owner lists one resident's reports, hidden ones included.
type ListFilter struct {
	Status   string
	Category string
	Owner    *uuid.UUID
	Limit    int
}

type ReportDetail struct {
	Report  *Report               `json:"report"`
	History []ReportStatusHistory `json:"history"`
}

type ReportResponse struct {
	Report       *Report        `json:"report"`
	Notification notify.Outcome `json:"notification,omitempty"`
}

type ReportListResponse struct {
	Reports []Report `json:"reports"`
	Total   int      `json:"total"`
}

type DeleteReportResponse struct {
	Message      string         `json:"message"`
	Notification notify.Outcome `json:"notification"`
}
