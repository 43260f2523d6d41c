package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SettingDashboardMatchLimit = "dashboard_match_limit"
	SettingIngestEnabled       = "ingest_enabled"

	DefaultDashboardMatchLimit = 50
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsService stores per-app moderation tuning (dashboard match limit,
// ingest kill switch) as typed key/value rows.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// All returns every setting for an app with values coerced to their
// declared type.
func (s *SettingsService) All(appID string) (map[string]interface{}, error) {
	var settings []models.ModerationSetting
	if err := s.db.Scopes(tenant.ForTenant(appID)).Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	result := make(map[string]interface{}, len(settings))
	for _, setting := range settings {
		result[setting.Key] = coerceSetting(setting.Value, setting.Type)
	}
	return result, nil
}

// GetInt returns an int setting, or fallback when the key is absent or not
// an int. Lookup failures fall back too: a missing tuning value must never
// fail a read request.
func (s *SettingsService) GetInt(appID, key string, fallback int) int {
	var setting models.ModerationSetting
	err := s.db.Scopes(tenant.ForTenant(appID)).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(setting.Value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// GetBool returns a bool setting, or fallback when absent or malformed.
func (s *SettingsService) GetBool(appID, key string, fallback bool) bool {
	var setting models.ModerationSetting
	err := s.db.Scopes(tenant.ForTenant(appID)).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return fallback
	}
	return b
}

// Set upserts a setting on the unique (app_id, key) pair.
func (s *SettingsService) Set(appID, key, value, settingType string) (*models.ModerationSetting, error) {
	if settingType == "" {
		settingType = "string"
	}

	setting := models.ModerationSetting{
		ID:    uuid.New(),
		AppID: appID,
		Key:   key,
		Value: value,
		Type:  settingType,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "app_id"}, {Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"type":       settingType,
			"updated_at": time.Now(),
		}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	return &setting, nil
}

func (s *SettingsService) Delete(appID, key string) error {
	result := s.db.Scopes(tenant.ForTenant(appID)).
		Where("key = ?", key).
		Delete(&models.ModerationSetting{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}

// SeedDefaults creates missing default settings for every registered app.
// Existing values are left alone.
func (s *SettingsService) SeedDefaults(appIDs []string) error {
	defaults := []models.ModerationSetting{
		{Key: SettingDashboardMatchLimit, Value: strconv.Itoa(DefaultDashboardMatchLimit), Type: "int"},
		{Key: SettingIngestEnabled, Value: "true", Type: "bool"},
	}

	for _, appID := range appIDs {
		for _, def := range defaults {
			setting := models.ModerationSetting{
				ID:    uuid.New(),
				AppID: appID,
				Key:   def.Key,
				Value: def.Value,
				Type:  def.Type,
			}
			err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error
			if err != nil {
				return fmt.Errorf("failed to seed setting %s for %s: %w", def.Key, appID, err)
			}
		}
	}
	return nil
}

func coerceSetting(value, settingType string) interface{} {
	switch settingType {
	case "bool":
		b, _ := strconv.ParseBool(value)
		return b
	case "int":
		n, _ := strconv.Atoi(value)
		return n
	case "json":
		var parsed interface{}
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return value
		}
		return parsed
	default:
		return value
	}
}
