package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/Bdsolutionconsulting/linkhood/internal/retry"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrStatusConflict = errors.New("report status changed concurrently, reload and retry")

const maxListLimit = 200

type ReportService struct {
	db        *gorm.DB
	area      geo.Area
	store     storage.Store
	notifier  apps.Notifier
	retry     retry.Policy
	maxUpload int64
	now       func() time.Time
}

func NewReportService(deps *apps.Deps) *ReportService {
	return &ReportService{
		db:        deps.DB,
		area:      deps.Area,
		store:     deps.Store,
		notifier:  deps.Notifier,
		retry:     deps.Retry,
		maxUpload: deps.MaxUpload(),
		now:       time.Now,
	}
}

// List returns visible reports, or the owner's reports when f.Owner is
// set, newest first, with their author names.
// The read is retried with the configured fixed delay.
func (s *ReportService) List(ctx context.Context, f ListFilter) ([]Report, error) {
	if f.Status != "" {
		if err := validation.OneOf("status", f.Status, Statuses); err != nil {
			return nil, err
		}
	}
	if f.Category != "" {
		if err := validation.OneOf("category", f.Category, Categories); err != nil {
			return nil, err
		}
	}
	limit := f.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	var reports []Report
	err := s.retry.Do(ctx, "list_reports", func(ctx context.Context) error {
		q := s.db.WithContext(ctx).Scopes(identity.WithAuthor)
		if f.Owner != nil {
			q = q.Scopes(identity.OwnedBy(*f.Owner))
		} else {
			q = q.Where("visible = ?", true)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		reports = nil
		return q.Order("created_at DESC").Limit(limit).Find(&reports).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	for i := range reports {
		reports[i].setAuthor()
	}
	return reports, nil
}

// Get returns a report with its history, newest change first. Hidden
// reports are only shown to admins and their owner.
func (s *ReportService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ReportDetail, error) {
	var report Report
	if err := s.db.WithContext(ctx).Scopes(identity.WithAuthor).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apps.ErrNotFound
		}
		return nil, err
	}
	if !report.Visible && !actor.CanModify(report.UserID) {
		return nil, apps.ErrNotFound
	}
	report.setAuthor()

	history := []ReportStatusHistory{}
	if err := s.db.WithContext(ctx).
		Where("report_id = ?", id).
		Order("changed_at DESC").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return &ReportDetail{Report: &report, History: history}, nil
}

// Create stores a new report for actor and emails them a confirmation.
func (s *ReportService) Create(ctx context.Context, actor identity.Actor, req CreateReportRequest, photo *apps.Photo) (*Report, notify.Outcome, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validate(req); err != nil {
		return nil, "", err
	}

	report := &Report{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Status:      StatusReported,
		Visible:     true,
		UserID:      actor.ID,
	}

	if photo != nil {
		url, err := apps.SavePhoto(ctx, s.store, storage.BucketReportPhotos, storage.ContentKey(photo.Filename), photo, s.maxUpload)
		if err != nil {
			return nil, "", err
		}
		report.PhotoURL = url
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create report: %w", err)
	}

	outcome := s.notifier.Notify(ctx, actor.ID, notify.Message{
		Type:     notify.KindNewReport,
		ReportID: report.ID.String(),
		Title:    report.Title,
	})
	return report, outcome, nil
}

func (s *ReportService) validate(req CreateReportRequest) error {
	if err := validation.Required("title", "Le titre", req.Title, validation.TitleMaxLength); err != nil {
		return err
	}
	if err := validation.Required("description", "La description", req.Description, validation.DescriptionMaxLength); err != nil {
		return err
	}
	if err := validation.OneOf("category", req.Category, Categories); err != nil {
		return err
	}
	if req.Lat == nil || req.Lng == nil {
		return validation.Location("location")
	}
	if err := s.area.CheckCreation(geo.Point{Lat: *req.Lat, Lng: *req.Lng}); err != nil {
		return validation.Location("location")
	}
	return nil
}

// UpdateStatus moves a report to status on behalf of an admin. The report
// row and its history entry are written together; setting the current
// status again changes nothing and sends no email.
func (s *ReportService) UpdateStatus(ctx context.Context, actor identity.Actor, id uuid.UUID, status string) (*Report, notify.Outcome, error) {
	if !actor.IsAdmin() {
		return nil, "", identity.ErrForbidden
	}
	if err := validation.OneOf("status", status, Statuses); err != nil {
		return nil, "", err
	}

	var report Report
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apps.ErrNotFound
			}
			return err
		}
		if report.Status == status {
			return nil
		}

		old := report.Status
		now := s.now()
		var resolvedBy *uuid.UUID
		if status == StatusResolved {
			by := actor.ID
			resolvedBy = &by
		}

		res := tx.Model(&Report{}).
			Where("id = ? AND status = ?", id, old).
			Updates(map[string]interface{}{
				"status":      status,
				"resolved_by": resolvedBy,
				"updated_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		entry := ReportStatusHistory{
			ReportID:  id,
			OldStatus: old,
			NewStatus: status,
			ChangedBy: actor.ID,
			ChangedAt: now,
			Comment:   fmt.Sprintf("Statut changé de %s à %s par un administrateur", old, status),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		report.Status = status
		report.ResolvedBy = resolvedBy
		report.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if !changed {
		return &report, "", nil
	}

	outcome := s.notifier.Notify(ctx, report.UserID, notify.Message{
		Type:     notify.KindStatusUpdate,
		ReportID: report.ID.String(),
		Title:    report.Title,
		Status:   status,
	})
	return &report, outcome, nil
}

// Delete soft-deletes a report owned by actor, or any report for an admin.
func (s *ReportService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) (notify.Outcome, error) {
	var report Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apps.ErrNotFound
		}
		return "", err
	}
	if err := actor.Authorize(report.UserID); err != nil {
		return "", err
	}

	res := s.db.WithContext(ctx).Delete(&Report{}, "id = ?", id)
	if res.Error != nil {
		return "", fmt.Errorf("failed to delete report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", apps.ErrNotFound
	}

	return s.notifier.Notify(ctx, report.UserID, notify.Message{
		Type:     notify.KindReportDeleted,
		ReportID: report.ID.String(),
		Title:    report.Title,
	}), nil
}

// SetVisibility hides or shows a report on the map and in listings.
func (s *ReportService) SetVisibility(ctx context.Context, id uuid.UUID, visible bool) (*Report, error) {
	var report Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apps.ErrNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&report).Update("visible", visible).Error; err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}
	report.Visible = visible
	return &report, nil
}
