package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Codify-design/fingerprint-backend/internal/dto"
	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNameRequired  = errors.New("fingerprint name is required")
	ErrValueRequired = errors.New("fingerprint value is required")
)

// FingerprintService is the append-mostly log of fingerprint observations.
type FingerprintService struct {
	db      *gorm.DB
	metrics metrics.Provider
}

func NewFingerprintService(db *gorm.DB, provider metrics.Provider) *FingerprintService {
	return &FingerprintService{db: db, metrics: provider}
}

// Record upserts an observation. A repeat sighting of the same
// (user, name, value) refreshes data and updated_at only, so concurrent
// submissions of the same signal never error.
func (s *FingerprintService) Record(appID string, userID uuid.UUID, name, value string, data datatypes.JSON) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(value) == "" {
		return ErrValueRequired
	}
	if len(data) == 0 {
		data = datatypes.JSON([]byte("{}"))
	}

	observation := models.Fingerprint{
		ID:     uuid.New(),
		AppID:  appID,
		UserID: userID,
		Name:   name,
		Value:  value,
		Data:   data,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "app_id"}, {Name: "user_id"}, {Name: "name"}, {Name: "value"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"data":       data,
			"updated_at": time.Now(),
		}),
	}).Create(&observation).Error
	if err != nil {
		return fmt.Errorf("failed to record fingerprint: %w", err)
	}

	s.metrics.IncObservationsRecorded(appID)
	return nil
}

// ForUser returns a user's observations, newest updated_at first, skipping
// any value in excludeValues (moderator-hidden values stay out of the
// user's own report).
func (s *FingerprintService) ForUser(appID string, userID uuid.UUID, excludeValues []string) ([]models.Fingerprint, error) {
	query := s.db.Scopes(tenant.ForTenant(appID)).Where("user_id = ?", userID)
	if len(excludeValues) > 0 {
		query = query.Where("value NOT IN ?", excludeValues)
	}

	var fingerprints []models.Fingerprint
	if err := query.Order("updated_at DESC").Find(&fingerprints).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch fingerprints: %w", err)
	}
	return fingerprints, nil
}

// ValuesOwnedBy returns the distinct fingerprint values a user has produced.
func (s *FingerprintService) ValuesOwnedBy(appID string, userID uuid.UUID) ([]string, error) {
	var values []string
	err := s.db.Model(&models.Fingerprint{}).
		Scopes(tenant.ForTenant(appID)).
		Distinct("value").
		Where("user_id = ?", userID).
		Pluck("value", &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch owned values: %w", err)
	}
	return values, nil
}

// IngestBatch records a batch of server-submitted observations. Malformed
// events are skipped and logged rather than failing the whole batch; the
// accepted count is returned.
func (s *FingerprintService) IngestBatch(appID string, events []dto.IngestEvent) (int, error) {
	accepted := 0
	for _, event := range events {
		if event.UserID == uuid.Nil {
			slog.Warn("ingest event skipped: missing user_id", "app_id", appID, "name", event.Name)
			continue
		}
		if err := s.Record(appID, event.UserID, event.Name, event.Value, datatypes.JSON(event.Data)); err != nil {
			if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrValueRequired) {
				slog.Warn("ingest event skipped", "app_id", appID, "user_id", event.UserID, "error", err)
				continue
			}
			return accepted, err
		}
		accepted++
	}
	return accepted, nil
}
