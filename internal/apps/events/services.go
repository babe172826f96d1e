package events

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
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventService struct {
	db        *gorm.DB
	area      geo.Area
	store     storage.Store
	notifier  apps.Notifier
	maxUpload int64
	now       func() time.Time
}

func NewEventService(deps *apps.Deps) *EventService {
	return &EventService{
		db:        deps.DB,
		area:      deps.Area,
		store:     deps.Store,
		notifier:  deps.Notifier,
		maxUpload: deps.MaxUpload(),
		now:       time.Now,
	}
}

// List returns events by date, soonest first. A non-positive limit
// returns all of them.
func (s *EventService) List(ctx context.Context, limit int) ([]Event, error) {
	q := s.db.WithContext(ctx).Scopes(identity.WithAuthor).Order("date ASC").Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var events []Event
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for i := range events {
		events[i].AuthorName = events[i].User.DisplayName()
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	if err := s.db.WithContext(ctx).Scopes(identity.WithAuthor).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apps.ErrNotFound
		}
		return nil, err
	}
	event.AuthorName = event.User.DisplayName()
	return &event, nil
}

// Create stores an event for actor and emails them a confirmation.
func (s *EventService) Create(ctx context.Context, actor identity.Actor, req CreateEventRequest, photo *apps.Photo) (*Event, notify.Outcome, error) {
	date, err := s.validate(req)
	if err != nil {
		return nil, "", err
	}

	p := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	event := &Event{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Date:     datatypes.Date(date),
		Location: geo.FormatLocation(p),
		Lat:      p.Lat,
		Lng:      p.Lng,
		UserID:   actor.ID,
	}

	if photo != nil {
		url, err := apps.SavePhoto(ctx, s.store, storage.BucketEventPhotos, storage.ContentKey(photo.Filename), photo, s.maxUpload)
		if err != nil {
			return nil, "", err
		}
		event.PhotoURL = url
	}

	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create event: %w", err)
	}

	outcome := s.notifier.Notify(ctx, actor.ID, notify.Message{
		Type:    notify.KindNewEvent,
		EventID: event.ID.String(),
		Title:   event.Title,
	})
	return event, outcome, nil
}

func (s *EventService) validate(req CreateEventRequest) (time.Time, error) {
	if err := validation.Required("title", "Le titre", req.Title, validation.TitleMaxLength); err != nil {
		return time.Time{}, err
	}
	if err := validation.Required("content", "Le contenu", req.Content, validation.DescriptionMaxLength); err != nil {
		return time.Time{}, err
	}

	now := s.now()
	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(req.Date), now.Location())
		if err != nil {
			return time.Time{}, &validation.Error{Field: "date", Message: "La date doit être au format AAAA-MM-JJ."}
		}
		date = d
	}
	if err := validation.NotInPast("date", date, now); err != nil {
		return time.Time{}, err
	}

	if req.Lat == nil || req.Lng == nil {
		return time.Time{}, validation.Location("location")
	}
	if err := s.area.CheckCreation(geo.Point{Lat: *req.Lat, Lng: *req.Lng}); err != nil {
		return time.Time{}, validation.Location("location")
	}
	return date, nil
}

// Delete soft-deletes an event owned by actor, or any event for an admin.
func (s *EventService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) (notify.Outcome, error) {
	var event Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apps.ErrNotFound
		}
		return "", err
	}
	if err := actor.Authorize(event.UserID); err != nil {
		return "", err
	}

	res := s.db.WithContext(ctx).Delete(&Event{}, "id = ?", id)
	if res.Error != nil {
		return "", fmt.Errorf("failed to delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", apps.ErrNotFound
	}

	return s.notifier.Notify(ctx, event.UserID, notify.Message{
		Type:    notify.KindEventDeleted,
		EventID: event.ID.String(),
		Title:   event.Title,
	}), nil
}
