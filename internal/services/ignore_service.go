package services

import (
	"errors"
	"fmt"

	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSelfIgnore = errors.New("cannot ignore yourself")

// IgnoreService owns the symmetric known-benign relation between user pairs.
// The relation is stored as two directional rows so ignoredBy stays a single
// indexed lookup.
type IgnoreService struct {
	db      *gorm.DB
	metrics metrics.Provider
}

func NewIgnoreService(db *gorm.DB, provider metrics.Provider) *IgnoreService {
	return &IgnoreService{db: db, metrics: provider}
}

// SetIgnore adds or removes the relation in both directions. Enabling inserts
// both rows in one multi-row statement with conflicts ignored, disabling
// deletes both in one statement, so repeated or concurrent calls converge to
// the same state.
func (s *IgnoreService) SetIgnore(appID string, userA, userB uuid.UUID, enabled bool) error {
	if userA == userB {
		return ErrSelfIgnore
	}

	var count int64
	err := s.db.Model(&models.User{}).
		Scopes(tenant.ForTenant(appID)).
		Where("id IN ?", []uuid.UUID{userA, userB}).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to resolve users: %w", err)
	}
	if count != 2 {
		return ErrUserNotFound
	}

	if enabled {
		rows := []models.IgnoredUser{
			{ID: uuid.New(), AppID: appID, UserID: userA, IgnoredUserID: userB},
			{ID: uuid.New(), AppID: appID, UserID: userB, IgnoredUserID: userA},
		}
		err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to create ignore pair: %w", err)
		}
	} else {
		err := s.db.Scopes(tenant.ForTenant(appID)).
			Where("(user_id = ? AND ignored_user_id = ?) OR (user_id = ? AND ignored_user_id = ?)",
				userA, userB, userB, userA).
			Delete(&models.IgnoredUser{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete ignore pair: %w", err)
		}
	}

	s.metrics.IncIgnoreToggles(appID)
	return nil
}

// IgnoredBy returns the ids a user has marked known-benign.
func (s *IgnoreService) IgnoredBy(appID string, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.IgnoredUser{}).
		Scopes(tenant.ForTenant(appID)).
		Where("user_id = ?", userID).
		Pluck("ignored_user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ignored users: %w", err)
	}
	return ids, nil
}
