package services

import (
	"errors"
	"fmt"

	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService resolves display users for the review surface. ByIDs exists so
// handlers can preload every user referenced by a report in one query.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) ByID(appID string, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Scopes(tenant.ForTenant(appID)).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *UserService) ByUsername(appID, username string) (*models.User, error) {
	var user models.User
	err := s.db.Scopes(tenant.ForTenant(appID)).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// ByIDs fetches all users in one query. Callers assembling reports must
// collect every referenced id first and call this once, never per match.
func (s *UserService) ByIDs(appID string, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	err := s.db.Scopes(tenant.ForTenant(appID)).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}
