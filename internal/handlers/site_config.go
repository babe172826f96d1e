package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidConfigValue = errors.New("value does not match its type")

var configTypes = map[string]bool{"string": true, "bool": true, "int": true, "json": true}

type SiteConfigHandler struct {
	db *gorm.DB
}

func NewSiteConfigHandler(db *gorm.DB) *SiteConfigHandler {
	return &SiteConfigHandler{db: db}
}

// GetConfig returns every key with its value decoded according to its type.
func (h *SiteConfigHandler) GetConfig(c *fiber.Ctx) error {
	result, err := h.Values(c.UserContext())
	if err != nil {
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to fetch configuration")
	}
	return c.JSON(result)
}

// SetConfigKey sets or updates a config key (admin only)
func (h *SiteConfigHandler) SetConfigKey(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return dto.Fail(c, fiber.StatusBadRequest, "Key parameter is required")
	}

	var payload struct {
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if payload.Type == "" {
		payload.Type = "string"
	}
	if !configTypes[payload.Type] {
		return dto.Fail(c, fiber.StatusBadRequest, "type must be one of string, bool, int, json")
	}
	if _, err := decodeConfigValue(payload.Type, payload.Value); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, err.Error())
	}

	entry := models.SiteConfig{Key: key, Value: payload.Value, Type: payload.Type, UpdatedAt: time.Now()}
	err := h.db.WithContext(c.UserContext()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to save config")
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config updated successfully",
		"config": fiber.Map{
			"key":   entry.Key,
			"value": entry.Value,
			"type":  entry.Type,
		},
	})
}

// DeleteConfigKey deletes a config key (admin only)
func (h *SiteConfigHandler) DeleteConfigKey(c *fiber.Ctx) error {
	result := h.db.WithContext(c.UserContext()).Where("key = ?", c.Params("key")).Delete(&models.SiteConfig{})
	if result.Error != nil {
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to delete config")
	}
	if result.RowsAffected == 0 {
		return dto.Fail(c, fiber.StatusNotFound, "Config not found")
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config deleted successfully",
	})
}

// SeedDefaults creates the default keys that do not exist yet. Existing
// values are left alone.
func (h *SiteConfigHandler) SeedDefaults(ctx context.Context, supportEmail string, reportCategories []string) error {
	styles, err := json.Marshal(models.MapStyles)
	if err != nil {
		return err
	}
	categories, err := json.Marshal(reportCategories)
	if err != nil {
		return err
	}

	defaults := []models.SiteConfig{
		{Key: "map_styles", Value: string(styles), Type: "json"},
		{Key: "report_categories", Value: string(categories), Type: "json"},
		{Key: "support_email", Value: supportEmail, Type: "string"},
		{Key: "maintenance_mode", Value: "false", Type: "bool"},
	}
	for _, d := range defaults {
		entry := d
		if err := h.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// Values returns the decoded configuration map.
func (h *SiteConfigHandler) Values(ctx context.Context) (map[string]interface{}, error) {
	var configs []models.SiteConfig
	if err := h.db.WithContext(ctx).Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(configs))
	for _, cfg := range configs {
		value, err := decodeConfigValue(cfg.Type, cfg.Value)
		if err != nil {
			value = cfg.Value
		}
		result[cfg.Key] = value
	}
	return result, nil
}

func decodeConfigValue(typ, raw string) (interface{}, error) {
	switch typ {
	case "bool":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, ErrInvalidConfigValue
		}
		return v, nil
	case "int":
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ErrInvalidConfigValue
		}
		return v, nil
	case "json":
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, ErrInvalidConfigValue
		}
		return v, nil
	}
	return raw, nil
}
