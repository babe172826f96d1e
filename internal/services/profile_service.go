package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileService struct {
	db        *gorm.DB
	store     storage.Store
	maxUpload int64
	now       func() time.Time
}

func NewProfileService(db *gorm.DB, store storage.Store, maxUpload int64) *ProfileService {
	return &ProfileService{db: db, store: store, maxUpload: maxUpload, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update applies the fields present in req. The phone is stored in its
// formatted form; an empty phone clears it.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		phone, err := validation.NormalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		updates["phone"] = phone
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Get(ctx, userID)
}

// UploadPhoto replaces the profile picture and returns a cache-busted URL
// so clients drop the previous image.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID uuid.UUID, body io.Reader, size int64, contentType string) (string, error) {
	if err := storage.CheckUpload(contentType, size, s.maxUpload); err != nil {
		return "", err
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	key := storage.ProfilePictureKey(userID.String())
	publicURL, err := s.store.Upload(ctx, storage.BucketProfilePictures, key, body, size, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	if oldKey, ok := storage.KeyFromURL(user.PhotoURL, storage.BucketProfilePictures); ok && oldKey != key {
		if err := s.store.Remove(ctx, storage.BucketProfilePictures, oldKey); err != nil {
			slog.Warn("previous profile picture not removed", "user_id", userID.String(), "error", err)
		}
	}

	busted := storage.CacheBusted(publicURL, s.now())
	if err := s.db.WithContext(ctx).Model(user).Update("photo_url", busted).Error; err != nil {
		return "", fmt.Errorf("failed to save photo url: %w", err)
	}
	return busted, nil
}

// UpdateLocation stores the last known position only after a move of at
// least geo.MinMovementMeters.
func (s *ProfileService) UpdateLocation(ctx context.Context, userID uuid.UUID, p geo.Point) (bool, error) {
	if !p.Valid() {
		return false, validation.Location("location")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	var prev *geo.Point
	if user.LastLat != nil && user.LastLng != nil {
		prev = &geo.Point{Lat: *user.LastLat, Lng: *user.LastLng}
	}
	if !geo.MovedEnough(prev, p) {
		return false, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"last_lat":        p.Lat,
		"last_lng":        p.Lng,
		"last_located_at": s.now(),
	}).Error; err != nil {
		return false, fmt.Errorf("failed to store location: %w", err)
	}
	return true, nil
}

// Settings returns stored preferences or the defaults.
func (s *ProfileService) Settings(ctx context.Context, userID uuid.UUID) (models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.WithContext(ctx).First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(userID), nil
	}
	if err != nil {
		return models.UserSettings{}, err
	}
	return settings, nil
}

func (s *ProfileService) UpdateSettings(ctx context.Context, userID uuid.UUID, req *dto.UpdateSettingsRequest) (models.UserSettings, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return models.UserSettings{}, err
	}

	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.MapStyle != nil {
		if err := validation.OneOf("map_style", *req.MapStyle, models.MapStyles); err != nil {
			return models.UserSettings{}, err
		}
		settings.MapStyle = *req.MapStyle
	}
	settings.UpdatedAt = s.now()

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"notifications_enabled", "map_style", "updated_at"}),
	}).Create(&settings).Error
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
