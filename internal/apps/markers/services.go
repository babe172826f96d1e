package markers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultLimit caps marker listings.
const DefaultLimit = 50

type MarkerService struct {
	db   *gorm.DB
	area geo.Area
}

func NewMarkerService(db *gorm.DB, area geo.Area) *MarkerService {
	return &MarkerService{db: db, area: area}
}

// List returns up to limit markers, oldest first. A non-positive limit
// means DefaultLimit.
func (s *MarkerService) List(ctx context.Context, limit int) ([]Marker, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	markers := []Marker{}
	if err := s.db.WithContext(ctx).Order("created_at ASC").Limit(limit).Find(&markers).Error; err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	return markers, nil
}

// Create places a marker anywhere inside the navigation bounds. createdBy
// is nil when the marker comes from the admin token or the CLI.
func (s *MarkerService) Create(ctx context.Context, createdBy *uuid.UUID, req CreateMarkerRequest) (*Marker, error) {
	if err := validation.Required("title", "Le titre", req.Title, validation.TitleMaxLength); err != nil {
		return nil, err
	}
	if req.Lat == nil || req.Lng == nil {
		return nil, validation.Location("location")
	}
	p := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	if !s.area.Navigation.Contains(p) {
		return nil, validation.Location("location")
	}

	marker := &Marker{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Lat:         p.Lat,
		Lng:         p.Lng,
		CreatedBy:   createdBy,
	}
	if err := s.db.WithContext(ctx).Create(marker).Error; err != nil {
		return nil, fmt.Errorf("failed to create marker: %w", err)
	}
	return marker, nil
}

func (s *MarkerService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Marker{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete marker: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apps.ErrNotFound
	}
	return nil
}

// Get is used by the CLI to echo what it changed.
func (s *MarkerService) Get(ctx context.Context, id uuid.UUID) (*Marker, error) {
	var marker Marker
	if err := s.db.WithContext(ctx).First(&marker, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apps.ErrNotFound
		}
		return nil, err
	}
	return &marker, nil
}
