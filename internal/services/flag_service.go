package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	FlagKindHide    = "hide"
	FlagKindSilence = "silence"
)

var ErrInvalidFlagKind = errors.New("invalid flag type: must be hide or silence")

// FlagService owns moderator flag state per fingerprint value. A
// flagged_fingerprints row exists iff hidden OR silenced is true.
type FlagService struct {
	db      *gorm.DB
	metrics metrics.Provider
}

func NewFlagService(db *gorm.DB, provider metrics.Provider) *FlagService {
	return &FlagService{db: db, metrics: provider}
}

// flagColumn maps a flag kind to its column. Kinds are whitelisted here so
// the column name is never caller-controlled.
func flagColumn(kind string) (string, error) {
	switch kind {
	case FlagKindHide:
		return "hidden", nil
	case FlagKindSilence:
		return "silenced", nil
	default:
		return "", ErrInvalidFlagKind
	}
}

// flagRowLive reports whether a flag record should exist for this bit
// combination.
func flagRowLive(hidden, silenced bool) bool {
	return hidden || silenced
}

// SetFlag toggles one bit on the record for value. Enabling is a single
// insert-or-update on the unique (app_id, value) key, so two moderators
// toggling different bits concurrently both land, and a first-time-flag race
// degrades to an update instead of a duplicate-key failure. Disabling updates
// only the one column, then deletes the row if neither bit is left set.
func (s *FlagService) SetFlag(appID, value, kind string, enabled bool) error {
	column, err := flagColumn(kind)
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return ErrValueRequired
	}

	if enabled {
		flag := models.FlaggedFingerprint{
			ID:       uuid.New(),
			AppID:    appID,
			Value:    value,
			Hidden:   column == "hidden",
			Silenced: column == "silenced",
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "app_id"}, {Name: "value"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				column:       true,
				"updated_at": time.Now(),
			}),
		}).Create(&flag).Error
		if err != nil {
			return fmt.Errorf("failed to set %s flag: %w", kind, err)
		}
	} else {
		err := s.db.Model(&models.FlaggedFingerprint{}).
			Scopes(tenant.ForTenant(appID)).
			Where("value = ?", value).
			Update(column, false).Error
		if err != nil {
			return fmt.Errorf("failed to clear %s flag: %w", kind, err)
		}

		// Row exists iff a bit is set; drop it once both are clear.
		err = s.db.Scopes(tenant.ForTenant(appID)).
			Where("value = ? AND NOT hidden AND NOT silenced", value).
			Delete(&models.FlaggedFingerprint{}).Error
		if err != nil {
			return fmt.Errorf("failed to prune flag record: %w", err)
		}
	}

	s.metrics.IncFlagToggles(kind)
	return nil
}

func (s *FlagService) IsHidden(appID, value string) (bool, error) {
	return s.hasBit(appID, value, "hidden")
}

func (s *FlagService) IsSilenced(appID, value string) (bool, error) {
	return s.hasBit(appID, value, "silenced")
}

func (s *FlagService) hasBit(appID, value, column string) (bool, error) {
	var count int64
	err := s.db.Model(&models.FlaggedFingerprint{}).
		Scopes(tenant.ForTenant(appID)).
		Where("value = ?", value).
		Where(column).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check flag: %w", err)
	}
	return count > 0, nil
}

// HiddenValues returns all values with the hidden bit set.
func (s *FlagService) HiddenValues(appID string) ([]string, error) {
	return s.valuesWhere(appID, "hidden")
}

// SilencedValues returns all values with the silenced bit set.
func (s *FlagService) SilencedValues(appID string) ([]string, error) {
	return s.valuesWhere(appID, "silenced")
}

// FlaggedValues returns all flagged values regardless of which bit is set.
// The row-exists-iff-flagged invariant makes this the whole table for the app.
func (s *FlagService) FlaggedValues(appID string) ([]string, error) {
	return s.valuesWhere(appID, "")
}

func (s *FlagService) valuesWhere(appID, column string) ([]string, error) {
	query := s.db.Model(&models.FlaggedFingerprint{}).Scopes(tenant.ForTenant(appID))
	if column != "" {
		query = query.Where(column)
	}

	var values []string
	if err := query.Pluck("value", &values).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch flagged values: %w", err)
	}
	return values, nil
}
